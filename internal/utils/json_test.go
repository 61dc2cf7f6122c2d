package utils

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"rankings": {"a.go": 5}}`,
			want:    `{"rankings": {"a.go": 5}}`,
		},
		{
			name:    "fenced with explanation",
			content: "Here are the rankings:\n```json\n{\"rankings\": {\"a.go\": 5}}\n```\nDone.",
			want:    `{"rankings": {"a.go": 5}}`,
		},
		{
			name:    "nested braces",
			content: `prefix {"a": {"b": {"c": 1}}} suffix {"ignored": true}`,
			want:    `{"a": {"b": {"c": 1}}}`,
		},
		{
			name:    "no json returns input",
			content: "no object here",
			want:    "no object here",
		},
		{
			name:    "unbalanced returns input",
			content: `{"a": 1`,
			want:    `{"a": 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.content); got != tt.want {
				t.Fatalf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripMarkdownFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "markdown fence",
			content: "```markdown\n# Title\n\nbody\n```",
			want:    "# Title\n\nbody",
		},
		{
			name:    "plain fence",
			content: "```\n# Title\n```",
			want:    "# Title",
		},
		{
			name:    "no fence",
			content: "# Title\n\nbody",
			want:    "# Title\n\nbody",
		},
		{
			name:    "surrounding whitespace",
			content: "\n\n  # Title  \n\n",
			want:    "# Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFence(tt.content); got != tt.want {
				t.Fatalf("StripMarkdownFence() = %q, want %q", got, tt.want)
			}
		})
	}
}
