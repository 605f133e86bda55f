// Package richtext turns markdown or plain text into styled blocks that a
// renderer without an HTML engine can lay out line by line.
package richtext

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Style is the block level style
type Style int

const (
	StyleBody Style = iota
	StyleHeading
	StyleQuote
	StyleCode
	StyleRule
)

// Span is a run of text sharing inline styles
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Href   string
}

// Block is one paragraph, heading, list item or code line
type Block struct {
	Style  Style
	Level  int    // heading level
	Indent int    // list nesting
	Marker string // list bullet or number of the first block of an item
	Spans  []Span
}

// Text returns the block content without styles
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse converts markdown to blocks. Raw HTML tags are dropped and their
// text kept, which is what the footer needs for "html" content.
func Parse(src []byte) []Block {
	doc := markdown.Parser().Parse(text.NewReader(src))
	var blocks []Block
	collect(doc, src, StyleBody, 0, &blocks)
	return blocks
}

// Plain converts plain text to body blocks, one per non-empty line
func Plain(s string) []Block {
	var blocks []Block
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, Block{Spans: []Span{{Text: line}}})
	}
	return blocks
}

func collect(n ast.Node, src []byte, style Style, indent int, out *[]Block) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			*out = append(*out, Block{Style: StyleHeading, Level: node.Level, Spans: inlines(node, src)})
		case *ast.Paragraph, *ast.TextBlock:
			if spans := inlines(node, src); len(spans) > 0 {
				*out = append(*out, Block{Style: style, Indent: indent, Spans: spans})
			}
		case *ast.Blockquote:
			collect(node, src, StyleQuote, indent, out)
		case *ast.List:
			number := node.Start
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				marker := "•"
				if node.IsOrdered() {
					marker = strconv.Itoa(number) + "."
					number++
				}
				start := len(*out)
				collect(item, src, style, indent+1, out)
				if len(*out) > start {
					(*out)[start].Marker = marker
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				line := strings.TrimRight(string(seg.Value(src)), "\r\n")
				*out = append(*out, Block{Style: StyleCode, Indent: indent, Spans: []Span{{Text: line, Code: true}}})
			}
		case *ast.ThematicBreak:
			*out = append(*out, Block{Style: StyleRule})
		case *ast.HTMLBlock:
			// skipped
		default:
			collect(c, src, style, indent, out)
		}
	}
}

func inlines(n ast.Node, src []byte) []Span {
	var spans []Span
	var walk func(n ast.Node, s Span)
	walk = func(n ast.Node, s Span) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				s.Text = string(node.Segment.Value(src))
				spans = appendSpan(spans, s)
				if node.HardLineBreak() {
					spans = appendSpan(spans, Span{Text: "\n"})
				} else if node.SoftLineBreak() {
					spans = appendSpan(spans, Span{Text: " "})
				}
			case *ast.String:
				s.Text = string(node.Value)
				spans = appendSpan(spans, s)
			case *ast.CodeSpan:
				code := s
				code.Code = true
				walk(node, code)
			case *ast.Emphasis:
				em := s
				if node.Level >= 2 {
					em.Bold = true
				} else {
					em.Italic = true
				}
				walk(node, em)
			case *ast.Link:
				link := s
				link.Href = string(node.Destination)
				walk(node, link)
			case *ast.AutoLink:
				link := s
				link.Href = string(node.URL(src))
				link.Text = string(node.Label(src))
				spans = appendSpan(spans, link)
			case *ast.RawHTML:
			default:
				walk(c, s)
			}
		}
	}
	walk(n, Span{})

	for len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, " \t\n")
		if last.Text != "" {
			break
		}
		spans = spans[:len(spans)-1]
	}
	return spans
}

// appendSpan merges s into the last span when the styles match
func appendSpan(spans []Span, s Span) []Span {
	if s.Text == "" {
		return spans
	}
	if n := len(spans); n > 0 {
		last := &spans[n-1]
		if last.Bold == s.Bold && last.Italic == s.Italic && last.Code == s.Code && last.Href == s.Href {
			last.Text += s.Text
			return spans
		}
	}
	return append(spans, s)
}

// Wrap breaks s into lines no wider than width as reported by measure.
// Words longer than width get a line of their own. Explicit newlines are
// kept.
func Wrap(s string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if candidate := line + " " + w; measure(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}
