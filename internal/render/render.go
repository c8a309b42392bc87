// ABOUTME: Markdown to terminal text renderer built on the goldmark AST
// ABOUTME: Styles headings, emphasis, code, lists, quotes, links and tables with fatih/color

package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type styles struct {
	heading, strong, emph, code, link, dim, strike *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.FgCyan, color.Bold),
		strong:  color.New(color.Bold),
		emph:    color.New(color.Italic),
		code:    color.New(color.FgYellow),
		link:    color.New(color.FgBlue, color.Underline),
		dim:     color.New(color.FgHiBlack),
		strike:  color.New(color.CrossedOut),
	}
	for _, c := range []*color.Color{s.heading, s.strong, s.emph, s.code, s.link, s.dim, s.strike} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Renderer converts Markdown to terminal text. It is safe for concurrent use.
type Renderer struct {
	md    goldmark.Markdown
	style *styles
}

// New creates a Renderer. useColor controls ANSI styling.
func New(useColor bool) *Renderer {
	return &Renderer{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		style: newStyles(useColor),
	}
}

// Render returns src rendered for the terminal, without a trailing newline.
func (r *Renderer) Render(src string) string {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))
	w := &writer{source: source, style: r.style}
	return strings.TrimRight(w.children(doc, "\n\n"), "\n")
}

type writer struct {
	source []byte
	style  *styles
}

// children renders the block children of n joined by sep.
func (w *writer) children(n ast.Node, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := w.block(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (w *writer) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return w.inlines(n)

	case *ast.Heading:
		return w.style.heading.Sprint(strings.Repeat("#", n.Level) + " " + plain(w.inlines(n)))

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		body := strings.TrimRight(w.lines(n), "\n")
		return indent(w.style.code, body, "    ")

	case *ast.Blockquote:
		bar := w.style.dim.Sprint("│ ")
		return prefixLines(w.children(n, "\n\n"), bar, bar)

	case *ast.List:
		return w.list(n)

	case *ast.ThematicBreak:
		return w.style.dim.Sprint(strings.Repeat("─", 40))

	case *ast.HTMLBlock:
		return strings.TrimRight(w.lines(n), "\n")

	case *east.Table:
		return w.table(n)

	default:
		if n.Type() == ast.TypeInline {
			return w.inline(n)
		}
		return w.children(n, "\n\n")
	}
}

func (w *writer) list(l *ast.List) string {
	sep := "\n"
	if !l.IsTight {
		sep = "\n\n"
	}

	var items []string
	i := 0
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", l.Start+i)
		}
		pad := strings.Repeat(" ", utf8.RuneCountInString(marker))
		body := w.children(c, sep)
		items = append(items, prefixLines(body, w.style.dim.Sprint(marker), pad))
		i++
	}
	return strings.Join(items, sep)
}

func (w *writer) table(t *east.Table) string {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cell := w.inlines(c)
			if _, ok := r.(*east.TableHeader); ok {
				cell = w.style.strong.Sprint(plain(cell))
			}
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	sep := w.style.dim.Sprint(" │ ")
	var out []string
	for ri, row := range rows {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = cell + strings.Repeat(" ", widths[i]-visibleWidth(cell))
		}
		out = append(out, strings.TrimRight(strings.Join(padded, sep), " "))
		if ri == 0 {
			rules := make([]string, len(widths))
			for i, wd := range widths {
				rules[i] = strings.Repeat("─", wd)
			}
			out = append(out, w.style.dim.Sprint(strings.Join(rules, "─┼─")))
		}
	}
	return strings.Join(out, "\n")
}

// inlines renders the inline children of n.
func (w *writer) inlines(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		b.WriteString(w.inline(c))
	}
	return b.String()
}

func (w *writer) inline(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Text:
		s := string(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			s += "\n"
		case n.SoftLineBreak():
			s += " "
		}
		return s

	case *ast.String:
		return string(n.Value)

	case *ast.Emphasis:
		if n.Level >= 2 {
			return w.style.strong.Sprint(w.inlines(n))
		}
		return w.style.emph.Sprint(w.inlines(n))

	case *ast.CodeSpan:
		return w.style.code.Sprint(w.rawText(n))

	case *ast.Link:
		label := w.inlines(n)
		dest := string(n.Destination)
		if plain(label) == dest || dest == "" {
			return w.style.link.Sprint(plain(label))
		}
		return w.style.link.Sprint(plain(label)) + w.style.dim.Sprint(" ("+dest+")")

	case *ast.AutoLink:
		return w.style.link.Sprint(string(n.URL(w.source)))

	case *ast.Image:
		return w.style.dim.Sprintf("[image: %s] (%s)", plain(w.inlines(n)), n.Destination)

	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.source))
		}
		return b.String()

	case *east.Strikethrough:
		return w.style.strike.Sprint(w.inlines(n))

	case *east.TaskCheckBox:
		if n.IsChecked {
			return "[x] "
		}
		return "[ ] "

	default:
		return w.inlines(n)
	}
}

// rawText concatenates the literal text under n.
func (w *writer) rawText(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(w.source))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(w.rawText(c))
		}
	}
	return b.String()
}

// lines concatenates the source lines of a block node.
func (w *writer) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

func indent(c *color.Color, body, pad string) string {
	ls := strings.Split(body, "\n")
	for i, l := range ls {
		ls[i] = pad + c.Sprint(l)
	}
	return strings.Join(ls, "\n")
}

// prefixLines puts first before the first line and rest before the others.
func prefixLines(body, first, rest string) string {
	ls := strings.Split(body, "\n")
	for i, l := range ls {
		p := rest
		if i == 0 {
			p = first
		}
		if l == "" {
			ls[i] = strings.TrimRight(p, " ")
			continue
		}
		ls[i] = p + l
	}
	return strings.Join(ls, "\n")
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// plain strips ANSI escapes.
func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(plain(s))
}
