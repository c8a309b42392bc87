// ABOUTME: Tests for the Markdown terminal renderer
// ABOUTME: Asserts plain-text layout with color off and styling with color on

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Plain(t *testing.T) {
	r := New(false)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "Hello **world** and *you*.", "Hello world and you."},
		{"soft break", "one\ntwo", "one two"},
		{"heading", "## Plan", "## Plan"},
		{"code span", "run `go test`", "run go test"},
		{"bullets", "- one\n- two", "• one\n• two"},
		{"ordered", "3. c\n4. d", "3. c\n4. d"},
		{"nested", "- a\n  - b", "• a\n  • b"},
		{"tasks", "- [x] done\n- [ ] todo", "• [x] done\n• [ ] todo"},
		{"quote", "> quoted\n> more", "│ quoted more"},
		{"fenced", "```go\nfmt.Println()\nreturn\n```", "    fmt.Println()\n    return"},
		{"link", "[site](https://x.io)", "site (https://x.io)"},
		{"autolink", "see https://x.io", "see https://x.io"},
		{"strike", "~~old~~ new", "old new"},
		{"rule", "a\n\n---\n\nb", "a\n\n" + strings.Repeat("─", 40) + "\n\nb"},
		{"table", "| A | B |\n|---|---|\n| 1 | 22 |", "A │ B\n──┼───\n1 │ 22"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.in))
		})
	}
}

func TestRender_BlocksSeparatedByBlankLine(t *testing.T) {
	got := New(false).Render("# Title\n\nBody text.\n\n- item")
	assert.Equal(t, "# Title\n\nBody text.\n\n• item", got)
}

func TestRender_Color(t *testing.T) {
	got := New(true).Render("**bold** and `code`")
	assert.Contains(t, got, "\x1b[")
	assert.Equal(t, "bold and code", plain(got))
}

func TestRender_TableWidthIgnoresEscapes(t *testing.T) {
	got := New(true).Render("| Name | N |\n|---|---|\n| **x** | 1 |")
	assert.Equal(t, "Name │ N\n─────┼──\nx    │ 1", plain(got))
}
