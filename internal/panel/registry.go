package panel

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyPanel is returned when a default model is requested from a panel
// with no entries.
var ErrEmptyPanel = errors.New("panel has no entries")

// Registry resolves aliases against a loaded panel. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	panel   *Panel
	aliases map[string]Entry
}

// NewRegistry indexes p by lowercase alias. When aliases collide the first
// entry in panel order wins.
func NewRegistry(p *Panel) *Registry {
	r := &Registry{
		panel:   p,
		aliases: make(map[string]Entry, len(p.Entries)),
	}
	for _, e := range p.Entries {
		key := strings.ToLower(e.Alias)
		if _, exists := r.aliases[key]; !exists {
			r.aliases[key] = e
		}
	}
	return r
}

// Panel returns the underlying panel.
func (r *Registry) Panel() *Panel {
	return r.panel
}

// Resolve turns a user token into a backend model id.
//
// The token may be an alias or a raw model id, optionally followed by
// ":<variant>". A known variant is stripped, the base resolved, and the
// variant's literal suffix re-appended. A colon suffix that is not a known
// variant leaves the whole token untouched. Unknown bases pass through.
func (r *Registry) Resolve(token string) string {
	suffix := ""
	if base, variant, found := strings.Cut(token, ":"); found {
		lit, ok := Variants[variant]
		if !ok {
			return token
		}
		token, suffix = base, lit
	}
	if e, ok := r.aliases[strings.ToLower(token)]; ok {
		return e.Model + suffix
	}
	return token + suffix
}

// Lookup returns the entry for an alias, matched case-insensitively.
func (r *Registry) Lookup(alias string) (Entry, bool) {
	e, ok := r.aliases[strings.ToLower(alias)]
	return e, ok
}

// ModelFor returns the model id declared for alias, or alias itself when it
// is not a panel member.
func (r *Registry) ModelFor(alias string) string {
	if e, ok := r.Lookup(alias); ok {
		return e.Model
	}
	return alias
}

// EnabledAliases lists enabled aliases in panel order.
func (r *Registry) EnabledAliases() []string {
	var out []string
	for _, e := range r.panel.Entries {
		if e.IsEnabled() {
			out = append(out, e.Alias)
		}
	}
	return out
}

// DefaultModel picks the model for requests that name none: the
// DefaultAlias entry, else the first enabled entry, else the first entry.
func (r *Registry) DefaultModel() (string, error) {
	if len(r.panel.Entries) == 0 {
		return "", ErrEmptyPanel
	}
	for _, e := range r.panel.Entries {
		if strings.EqualFold(e.Alias, DefaultAlias) {
			return e.Model, nil
		}
	}
	for _, e := range r.panel.Entries {
		if e.IsEnabled() {
			return e.Model, nil
		}
	}
	return r.panel.Entries[0].Model, nil
}

// AliasPair is one alias -> model mapping.
type AliasPair struct {
	Alias string
	Model string
}

// Aliases lists every panel alias (enabled or not) sorted by alias.
func (r *Registry) Aliases() []AliasPair {
	out := make([]AliasPair, 0, len(r.panel.Entries))
	for _, e := range r.panel.Entries {
		out = append(out, AliasPair{Alias: e.Alias, Model: e.Model})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
