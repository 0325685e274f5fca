package textutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var blankLinesRE = regexp.MustCompile(`\n{3,}`)

// StripMarkdown removes markdown syntax (headers, emphasis, list markers,
// fences, links, tables) and keeps the readable text. Block elements are
// separated by a blank line; list items by a single newline.
func StripMarkdown(s string) string {
	return strip(s, false)
}

// StripMarkdownKeepHighlights is StripMarkdown except that strong emphasis
// survives as **phrase** so highlighted statements keep their markers.
func StripMarkdownKeepHighlights(s string) string {
	return strip(s, true)
}

func strip(s string, keepStrong bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	source := []byte(s)
	doc := md.Parser().Parse(text.NewReader(source))
	parts := blockTexts(doc, source, keepStrong)
	out := strings.Join(parts, "\n\n")
	out = blankLinesRE.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func blockTexts(n ast.Node, source []byte, keep bool) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		add(inlineText(node, source, keep))
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		add(b.String())
	case *ast.List:
		items := make([]string, 0, node.ChildCount())
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			item := strings.Join(blockTexts(c, source, keep), " ")
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		add(strings.Join(items, "\n"))
	case *east.Table:
		rows := make([]string, 0, node.ChildCount())
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			cells := make([]string, 0, row.ChildCount())
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, strings.TrimSpace(inlineText(cell, source, keep)))
			}
			rows = append(rows, strings.Join(cells, " "))
		}
		add(strings.Join(rows, "\n"))
	case *ast.ThematicBreak, *ast.HTMLBlock:
		// dropped
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, blockTexts(c, source, keep)...)
		}
	}
	return out
}

func inlineText(n ast.Node, source []byte, keep bool) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(util.UnescapePunctuations(node.Segment.Value(source)))
			switch {
			case node.HardLineBreak():
				b.WriteString("\n")
			case node.SoftLineBreak():
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.Emphasis:
			inner := inlineText(node, source, keep)
			if keep && node.Level == 2 {
				b.WriteString("**" + inner + "**")
			} else {
				b.WriteString(inner)
			}
		case *ast.AutoLink:
			b.Write(node.Label(source))
		case *ast.RawHTML:
			// dropped
		default:
			b.WriteString(inlineText(node, source, keep))
		}
	}
	return html.UnescapeString(b.String())
}
