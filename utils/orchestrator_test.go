package utils

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_ThemeSelection(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		theme  string
	}{
		{"cybersecurity keyword", "stealth cybersecurity startup", "cyber"},
		{"shield keyword", "a shield for your data", "cyber"},
		{"neural keyword", "neural interface lab", "neural"},
		{"intelligence keyword", "business intelligence tooling", "neural"},
		{"luxury keyword", "luxury watch brand", "luxury"},
		{"premium keyword", "premium coffee subscription", "luxury"},
		{"no keyword", "a bakery in portland", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := Synthesize(tt.prompt)
			assert.Equal(t, tt.theme, content.Theme)
		})
	}
}

func TestSynthesize_ContractHolds(t *testing.T) {
	prompts := []string{
		"stealth cybersecurity startup",
		"ai copilot for lawyers",
		"luxury travel agency",
		"a plain landing page",
		"",
	}

	for _, prompt := range prompts {
		content := Synthesize(prompt)

		assert.Contains(t, []string{"cyber", "luxury", "neural", "default"}, content.Theme)
		assert.NotEmpty(t, content.Headline)
		assert.NotEmpty(t, content.Subheadline)
		require.Len(t, content.Features, 3)
		for _, feature := range content.Features {
			assert.NotEmpty(t, feature.Title)
			assert.NotEmpty(t, feature.Description)
		}
	}
}

func TestSynthesize_DefaultEchoesPrompt(t *testing.T) {
	content := Synthesize("a bakery in portland")
	assert.Contains(t, content.Subheadline, "a bakery in portland")
}

func TestOrchestrator_NoProviderFallsBack(t *testing.T) {
	o := NewOrchestrator("", log.New(io.Discard, "", 0))

	content := o.Generate(context.Background(), "stealth cybersecurity startup")
	assert.Equal(t, "cyber", content.Theme)
	assert.Len(t, content.Features, 3)
}

func TestClamp(t *testing.T) {
	clamped := clamp(BrandContent{
		Theme:    "vaporwave",
		Headline: "Hello",
		Features: []BrandFeature{{Title: "only one", Description: "feature"}},
	}, "a bakery")

	assert.Equal(t, "default", clamped.Theme)
	assert.Equal(t, "Hello", clamped.Headline)
	assert.NotEmpty(t, clamped.Subheadline)
	assert.Len(t, clamped.Features, 3)
}
