// Package alias defines the immutable alias table used for fuzzy team
// name matching against scraped snapshot text.
package alias

// config collects construction choices before the table is built.
type config struct {
	useDefaults bool
	file        string
	extra       []Group
}

// Option applies a configuration option to the table under construction.
type Option func(*config)

// WithFile loads the alias table from a YAML file instead of the
// embedded defaults.
func WithFile(path string) Option {
	return func(c *config) {
		c.file = path
	}
}

// WithGroups appends extra groups to whatever table is loaded.
func WithGroups(groups ...Group) Option {
	return func(c *config) {
		c.extra = append(c.extra, groups...)
	}
}

// WithoutDefaults skips the embedded table; only file and explicit
// groups apply.
func WithoutDefaults() Option {
	return func(c *config) {
		c.useDefaults = false
	}
}
