package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/drakeos/drakeos/internal/markdown"
	"github.com/drakeos/drakeos/internal/vfs"
	"github.com/go-enry/go-enry/v2"
)

const (
	emptyScript = "# Empty script"
	emptyText   = "No content available."
	styleName   = "monokai"
)

// MarkdownRenderer converts markdown files.
type MarkdownRenderer struct {
	parser *markdown.Parser
}

func (m *MarkdownRenderer) Render(file *vfs.Node) (*View, error) {
	doc, err := m.parser.Convert(file.Content)
	if err != nil {
		return nil, err
	}
	return &View{
		Kind:  KindMarkdown,
		Title: doc.Title,
		HTML:  `<div class="markdown">` + doc.HTML + `</div>`,
		TOC:   doc.TOC,
	}, nil
}

// ShellRenderer highlights shell scripts with line numbers.
type ShellRenderer struct{}

func (ShellRenderer) Render(file *vfs.Node) (*View, error) {
	content := file.Content
	if content == "" {
		content = emptyScript
	}
	out, err := highlight(lexers.Get("bash"), content, true)
	if err != nil {
		return nil, err
	}
	return &View{
		Kind:     KindShell,
		HTML:     `<div class="shell">` + out + `</div>`,
		Language: "Shell",
	}, nil
}

// TextRenderer shows text files, highlighted when the content is
// recognizable source code.
type TextRenderer struct{}

func (TextRenderer) Render(file *vfs.Node) (*View, error) {
	content := file.Content
	if content == "" {
		return &View{Kind: KindText, HTML: preformatted("text", emptyText)}, nil
	}

	lang := enry.GetLanguage(file.Name, []byte(content))
	if lexer := lexerFor(lang); lexer != nil {
		out, err := highlight(lexer, content, false)
		if err != nil {
			return nil, err
		}
		return &View{Kind: KindText, HTML: `<div class="text">` + out + `</div>`, Language: lang}, nil
	}
	return &View{Kind: KindText, HTML: preformatted("text", content), Language: lang}, nil
}

// UnknownRenderer shows the raw content of files no other renderer claims.
type UnknownRenderer struct{}

func (UnknownRenderer) Render(file *vfs.Node) (*View, error) {
	content := file.Content
	if content == "" {
		content = emptyText
	}
	return &View{Kind: KindUnknown, HTML: preformatted("unknown", content)}, nil
}

func lexerFor(lang string) chroma.Lexer {
	if lang == "" || lang == "Text" {
		return nil
	}
	lexer := lexers.Get(strings.ToLower(lang))
	if lexer == nil || lexer == lexers.Fallback {
		return nil
	}
	return lexer
}

func highlight(lexer chroma.Lexer, content string, lineNumbers bool) (string, error) {
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(lineNumbers),
	)

	it, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func preformatted(class, content string) string {
	return `<pre class="` + class + `">` + html.EscapeString(content) + `</pre>`
}
