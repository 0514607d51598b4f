// Package alias defines the immutable alias table used for fuzzy team
// name matching against scraped snapshot text.
package alias

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultsYAML []byte

// Group is one canonical team name plus its known alternate spellings.
type Group struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

// Matcher answers name-equivalence questions against the alias table.
// Implementations are immutable after construction; matching is a pure
// function of its two arguments.
type Matcher interface {
	// Match reports whether candidate and target name the same entity:
	// normalized equality, or membership in the same alias group.
	Match(candidate, target string) bool

	// Canonical resolves a name to its group's canonical spelling.
	Canonical(name string) (string, bool)

	// Variants returns the group members for a name (canonical first),
	// or nil when the name belongs to no group.
	Variants(name string) []string

	// Len returns the number of alias groups.
	Len() int
}

// table implements Matcher with a normalized-name lookup map.
type table struct {
	groups []Group
	byName map[string]*Group
}

// New builds a Matcher from the embedded defaults, a caller-supplied
// file, or explicit groups, depending on the options.
func New(opts ...Option) (Matcher, error) {
	cfg := &config{useDefaults: true}
	for _, opt := range opts {
		opt(cfg)
	}

	var groups []Group
	if cfg.useDefaults {
		defaults, err := parseYAML(defaultsYAML)
		if err != nil {
			return nil, fmt.Errorf("embedded alias table: %w", err)
		}
		groups = defaults
	}
	if cfg.file != "" {
		raw, err := os.ReadFile(cfg.file)
		if err != nil {
			return nil, fmt.Errorf("read alias file: %w", err)
		}
		fromFile, err := parseYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("alias file %s: %w", cfg.file, err)
		}
		// A file replaces the embedded table rather than merging with it,
		// so operators can see exactly what is in effect.
		groups = fromFile
	}
	groups = append(groups, cfg.extra...)

	t := &table{
		groups: groups,
		byName: make(map[string]*Group, len(groups)*3),
	}
	for i := range t.groups {
		g := &t.groups[i]
		t.register(g.Canonical, g)
		for _, a := range g.Aliases {
			t.register(a, g)
		}
	}
	return t, nil
}

// register maps a normalized name to its group; the first group to
// claim a name keeps it.
func (t *table) register(name string, g *Group) {
	key := Normalize(name)
	if key == "" {
		return
	}
	if _, taken := t.byName[key]; !taken {
		t.byName[key] = g
	}
}

func (t *table) Match(candidate, target string) bool {
	c, g := Normalize(candidate), Normalize(target)
	if c == "" || g == "" {
		return false
	}
	if c == g {
		return true
	}
	cg, okC := t.byName[c]
	tg, okT := t.byName[g]
	return okC && okT && cg == tg
}

func (t *table) Canonical(name string) (string, bool) {
	g, ok := t.byName[Normalize(name)]
	if !ok {
		return "", false
	}
	return g.Canonical, true
}

func (t *table) Variants(name string) []string {
	g, ok := t.byName[Normalize(name)]
	if !ok {
		return nil
	}
	out := make([]string, 0, 1+len(g.Aliases))
	out = append(out, g.Canonical)
	out = append(out, g.Aliases...)
	return out
}

func (t *table) Len() int { return len(t.groups) }

// yamlDoc is the on-disk shape of an alias table.
type yamlDoc struct {
	Groups []Group `yaml:"groups"`
}

func parseYAML(raw []byte) ([]Group, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Groups, nil
}

// foldMarks strips combining marks after NFD decomposition, so
// "Vålerenga" and "Valerenga" normalize to the same key.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC) //nolint:gochecknoglobals

// Normalize lowercases, folds diacritics, and collapses whitespace so
// scraped spellings and user input compare on equal footing.
func Normalize(name string) string {
	folded, _, err := transform.String(foldMarks, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.Fields(folded), " ")
}
