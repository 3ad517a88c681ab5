package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"notemaster/pkg/editor"
)

// ContainerID is the element captured by the rasterizer
const ContainerID = "notes"

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		renderer.WithNodeRenderers(util.Prioritized(newCodeRenderer("github"), 100)),
	),
)

// codeRenderer highlights fenced code blocks with inline styles so the
// capture does not depend on an external stylesheet
type codeRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newCodeRenderer(style string) *codeRenderer {
	return &codeRenderer{
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.TabWidth(4)),
	}
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lexer := lexers.Get(string(n.Language(source)))
	if lexer == nil {
		lexer = lexers.Analyse(code.String())
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, err
	}
	if err := r.formatter.Format(w, r.style, iterator); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

// RenderMarkdown converts one block's markdown to HTML
func RenderMarkdown(content string) (string, error) {
	var b strings.Builder
	if err := mdRenderer.Convert([]byte(content), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

type documentData struct {
	Title       string
	ContainerID string
	Blocks      []template.HTML
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; background: #fff; font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; color: #1f2328; }
    #{{.ContainerID}} { width: 794px; padding: 32px; box-sizing: border-box; line-height: 1.5; font-size: 16px; }
    h1.title { font-size: 2em; border-bottom: 1px solid #d1d9e0; padding-bottom: .3em; }
    .block { margin-bottom: 16px; }
    .block pre { padding: 16px; overflow: hidden; white-space: pre-wrap; border-radius: 6px; font-size: 85%; }
    .block blockquote { margin: 0; padding: 0 1em; color: #59636e; border-left: .25em solid #d1d9e0; }
  </style>
</head>
<body>
  <div id="{{.ContainerID}}">
    <h1 class="title">{{.Title}}</h1>
    {{range .Blocks}}<div class="block">{{.}}</div>
    {{end}}
  </div>
</body>
</html>`))

// RenderDocumentHTML renders the persistable blocks of a document as a
// standalone page. Markdown raw HTML is not passed through.
func RenderDocumentHTML(doc *editor.Document) (string, error) {
	data := documentData{Title: doc.Title, ContainerID: ContainerID}
	for _, b := range editor.PersistableBlocks(doc.Blocks) {
		if b.IsEmpty() {
			continue
		}
		html, err := RenderMarkdown(b.Content)
		if err != nil {
			return "", err
		}
		data.Blocks = append(data.Blocks, template.HTML(html))
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
