package transform

// Option applies a configuration option to a transform run.
type Option func(*config)

type config struct {
	window int
	delta  bool
}

// WithWindow sets the trailing moving-average window in entries.
// Zero disables smoothing; negative values are treated as zero.
func WithWindow(entries int) Option {
	return func(c *config) {
		if entries > 0 {
			c.window = entries
		}
	}
}

// WithDelta rebases every entity's series to its first value in the
// table, producing a change-since-window-start column.
func WithDelta(on bool) Option {
	return func(c *config) {
		c.delta = on
	}
}
