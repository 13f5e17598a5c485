package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "web", 5, "web"},
		{"cut with ellipsis", "production", 7, "prod..."},
		{"tiny width", "production", 2, "pr"},
		{"zero width", "web", 0, ""},
		{"multibyte runes", "✂ ▸ folder", 5, "✂ ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abc", PadRight("abcdef", 3))
	assert.Equal(t, "▾ x ", PadRight("▾ x", 4))
}

func TestRenderTitle(t *testing.T) {
	assert.Contains(t, RenderTitle("Hosts", 20, true), "Hosts")
	assert.Contains(t, RenderTitle("Hosts", 20, false), "Hosts")
}

func TestRenderBorder(t *testing.T) {
	out := RenderBorder("content", 10, 3, true)
	assert.Contains(t, out, "content")
	assert.Contains(t, out, "╭")
}
