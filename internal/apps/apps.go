// Package apps holds the per-application login policy table consulted by the
// request gate before any principal logic runs.
package apps

import (
	s "ssogate/pkg/string"
)

// Preset is the policy and presentation configuration for one application.
type Preset struct {
	Slug              string
	Name              string
	UserTitle         string
	RedirectURL       string
	GuestLoginEnabled bool
}

// Registry resolves app slugs from inbound paths to presets.
type Registry struct {
	presets map[string]Preset
}

// NewRegistry builds a registry from the given presets.
func NewRegistry(presets ...Preset) *Registry {
	m := make(map[string]Preset, len(presets))
	for _, p := range presets {
		m[p.Slug] = p
	}
	return &Registry{presets: m}
}

// Default returns the platform's stock application table.
// Guest login is deliberately enabled only for the administrator app, where
// accounts are issued and overseen by administrators.
func Default() *Registry {
	return NewRegistry(
		Preset{Slug: "overway", Name: "Overway", UserTitle: "User"},
		Preset{Slug: "administrator", Name: "SK Administrator", UserTitle: "Administrator", GuestLoginEnabled: true},
		Preset{Slug: "platform", Name: "SK Platform", UserTitle: "User"},
		Preset{Slug: "commander", Name: "SK Commander", UserTitle: "Operator"},
		Preset{Slug: "docs", Name: "SK Docs", UserTitle: "Reader"},
	)
}

// Lookup resolves a slug to its preset.
func (r *Registry) Lookup(slug string) (Preset, bool) {
	p, ok := r.presets[slug]
	return p, ok
}

// DisplayName formats an app slug for notification text ("SK " prefix plus
// capitalized slug). Unknown or empty slugs fall back to the platform name.
func DisplayName(slug string) string {
	if slug == "" {
		return "SK Platform"
	}
	return "SK " + s.Capitalize(slug)
}
