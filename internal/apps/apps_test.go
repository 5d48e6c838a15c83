package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistry(t *testing.T) {
	registry := Default()

	t.Run("known apps resolve", func(t *testing.T) {
		for _, slug := range []string{"overway", "administrator", "platform", "commander", "docs"} {
			_, ok := registry.Lookup(slug)
			assert.True(t, ok, slug)
		}
	})

	t.Run("unknown app does not resolve", func(t *testing.T) {
		_, ok := registry.Lookup("intruder")
		assert.False(t, ok)
	})

	t.Run("guest login enabled only for administrator", func(t *testing.T) {
		for slug, want := range map[string]bool{
			"overway":       false,
			"administrator": true,
			"platform":      false,
			"commander":     false,
			"docs":          false,
		} {
			preset, ok := registry.Lookup(slug)
			assert.True(t, ok, slug)
			assert.Equal(t, want, preset.GuestLoginEnabled, slug)
		}
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "SK Overway", DisplayName("overway"))
	assert.Equal(t, "SK Platform", DisplayName(""))
}
