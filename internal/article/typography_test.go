package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmartPunctuation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty string", in: "", want: ""},
		{name: "plain text unchanged", in: "just words", want: "just words"},
		{
			name: "double quotes",
			in:   `She said "hello" to me`,
			want: "She said “hello” to me",
		},
		{
			name: "quote at start of text",
			in:   `"Start" and end`,
			want: "“Start” and end",
		},
		{
			name: "apostrophe",
			in:   "it's Sam's fault",
			want: "it’s Sam’s fault",
		},
		{
			name: "single quotes",
			in:   "the 'best' idea",
			want: "the ‘best’ idea",
		},
		{name: "ellipsis", in: "wait...", want: "wait…"},
		{name: "em dash", in: "one---two", want: "one—two"},
		{name: "en dash", in: "pages 1--2", want: "pages 1–2"},
		{
			name: "quote after opening bracket",
			in:   `("quoted")`,
			want: "(“quoted”)",
		},
		{
			name: "mixed",
			in:   `"It's done..." -- really`,
			want: "“It’s done…” – really",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SmartPunctuation(tt.in))
		})
	}
}
