package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty string", "", false},
		{"plain text", "Slept in, then pancakes.", false},
		{"angle brackets but not HTML", "2 < 3 and <stdin> is fine", false},
		{"paragraph", "<p>Rain all day.</p>", true},
		{"break", "line one<br/>line two", true},
		{"underline", "<u>important</u>", true},
		{"heading", "<H2>Plans</H2>", true},
		{"list", "<ul><li>milk</li></ul>", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsHTML(tt.input))
		})
	}
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "just words", "just words"},
		{"paragraph", "<p>Walked the dog.</p>", "Walked the dog."},
		{"bold", "<p>A <strong>great</strong> day</p>", "A **great** day"},
		{"italic", "<p>An <em>odd</em> day</p>", "An *odd* day"},
		{"heading", "<h2>Goals</h2>", "## Goals"},
		{"two paragraphs", "<p>One</p><p>Two</p>", "One\n\nTwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToMarkdown(tt.input))
		})
	}
}
