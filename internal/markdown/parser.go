// Package markdown converts markdown file content to HTML with a table of
// contents, using goldmark with GFM extensions and chroma highlighting.
package markdown

import (
	"bytes"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// EmptyContent is rendered for files without content.
const EmptyContent = "No content available."

// TOCItem represents a table of contents entry
type TOCItem struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Document is a converted markdown file.
type Document struct {
	HTML  string    `json:"html"`
	TOC   []TOCItem `json:"toc"`
	Title string    `json:"title"`
}

// Parser handles markdown conversion with goldmark
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a parser. Raw HTML in the source is escaped and links
// open in a new tab.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(externalLinks{}, 500),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &Parser{md: md}
}

// Convert renders content. Blank content yields the EmptyContent notice.
func (p *Parser) Convert(content string) (*Document, error) {
	source := []byte(content)
	if len(bytes.TrimSpace(source)) == 0 {
		source = []byte(EmptyContent)
	}

	doc := p.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, err
	}

	toc := collectTOC(doc, source)
	title := ""
	if len(toc) > 0 {
		title = toc[0].Title
	}

	return &Document{
		HTML:  buf.String(),
		TOC:   toc,
		Title: title,
	}, nil
}

// collectTOC lists headings with the ids goldmark assigned them.
func collectTOC(doc ast.Node, source []byte) []TOCItem {
	toc := []TOCItem{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		item := TOCItem{Level: heading.Level, Title: plainText(heading, source)}
		if id, ok := heading.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				item.Anchor = string(b)
			}
		}
		toc = append(toc, item)
		return ast.WalkSkipChildren, nil
	})
	return toc
}

// plainText concatenates the text segments under n, including those nested
// in emphasis, links and code spans.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// externalLinks marks every link to open in a new browsing context.
type externalLinks struct{}

func (externalLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Link, *ast.AutoLink:
			n.SetAttributeString("target", []byte("_blank"))
			n.SetAttributeString("rel", []byte("noopener"))
		}
		return ast.WalkContinue, nil
	})
}
