// Package render turns Markdown articles into direction-aware HTML.
//
// Parsing is done by goldmark with GitHub Flavored Markdown. Before the
// HTML pass every node of interest is classified into a Block by one
// handler per kind; the node renderers then emit HTML from those blocks.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/ziadkadry99/cgblog/internal/direction"
)

// blockAttr is the node attribute carrying the classified Block.
const blockAttr = "cgblog-block"

// Document is one rendered Markdown source.
type Document struct {
	HTML   template.HTML
	Blocks []Block
}

// Headings returns the heading blocks in document order.
func (d *Document) Headings() []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Kind == KindHeading {
			out = append(out, b)
		}
	}
	return out
}

// Renderer renders Markdown documents. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	assets AssetResolver
}

type options struct {
	style string
}

// Option configures a Renderer.
type Option func(*options)

// WithHighlightStyle sets the chroma style used for fenced code.
func WithHighlightStyle(style string) Option {
	return func(o *options) { o.style = style }
}

// New creates a renderer. assets rewrites image sources; nil leaves them
// unchanged.
func New(assets AssetResolver, opts ...Option) *Renderer {
	o := options{style: "github"}
	for _, opt := range opts {
		opt(&o)
	}
	if assets == nil {
		assets = identityAssets{}
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(o.style),
				highlighting.WithWrapperRenderer(codeWrapper),
			),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&nodeRenderer{}, 100)),
		),
	)
	return &Renderer{md: md, assets: assets}
}

// Render parses source and renders it.
func (r *Renderer) Render(source []byte) (*Document, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))

	st := newRenderState(r.assets)
	var blocks []Block
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		b, ok := st.blockFor(n, source)
		if !ok {
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, b)
		// The highlighter owns fenced code and renders its attributes.
		if n.Kind() != ast.KindFencedCodeBlock {
			n.SetAttributeString(blockAttr, &b)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("classifying blocks: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return &Document{HTML: template.HTML(buf.String()), Blocks: blocks}, nil
}

// RenderString is Render for string input.
func (r *Renderer) RenderString(source string) (*Document, error) {
	return r.Render([]byte(source))
}

// nodeRenderer emits HTML for nodes that carry a Block.
type nodeRenderer struct{}

func (nr *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindParagraph, nr.renderParagraph)
	reg.Register(ast.KindHeading, nr.renderHeading)
	reg.Register(ast.KindList, nr.renderList)
	reg.Register(ast.KindListItem, nr.renderListItem)
	reg.Register(ast.KindImage, nr.renderImage)
	reg.Register(ast.KindLink, nr.renderLink)
	reg.Register(ast.KindAutoLink, nr.renderAutoLink)
	reg.Register(ast.KindCodeSpan, nr.renderCodeSpan)
	reg.Register(ast.KindCodeBlock, nr.renderCodeBlock)
}

func blockOf(n ast.Node) Block {
	if v, ok := n.AttributeString(blockAttr); ok {
		if b, ok := v.(*Block); ok {
			return *b
		}
	}
	return Block{Direction: direction.LTR, Align: direction.AlignLeft}
}

func writeAttr(w util.BufWriter, name, value string) {
	_, _ = w.WriteString(" " + name + `="`)
	_, _ = w.Write(util.EscapeHTML([]byte(value)))
	_ = w.WriteByte('"')
}

func writeURLAttr(w util.BufWriter, name, value string) {
	if html.IsDangerousURL([]byte(value)) {
		value = ""
	}
	_, _ = w.WriteString(" " + name + `="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(value), true)))
	_ = w.WriteByte('"')
}

func (nr *nodeRenderer) renderParagraph(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</p>\n")
		return ast.WalkContinue, nil
	}
	b := blockOf(n)
	_, _ = w.WriteString("<p")
	writeAttr(w, "dir", string(b.Direction))
	writeAttr(w, "class", "mb-4 "+string(b.Align))
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func headingClass(b Block) string {
	switch b.Level {
	case 1:
		return "text-4xl font-bold mb-6 text-foreground border-b pb-2 border-border"
	case 2:
		return "text-3xl font-bold mb-3 " + string(b.Align)
	case 3:
		return "text-2xl font-bold mb-2 " + string(b.Align)
	default:
		return "text-xl font-semibold mb-2 " + string(b.Align)
	}
}

func (nr *nodeRenderer) renderHeading(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	h := n.(*ast.Heading)
	if !entering {
		_, _ = w.WriteString("</h" + strconv.Itoa(h.Level) + ">\n")
		return ast.WalkContinue, nil
	}
	b := blockOf(n)
	class := headingClass(b)
	if b.DeepLink {
		class += " heading-anchor cursor-pointer scroll-mt-20"
	}
	_, _ = w.WriteString("<h" + strconv.Itoa(h.Level))
	writeAttr(w, "id", b.Anchor)
	writeAttr(w, "dir", string(b.Direction))
	writeAttr(w, "class", class)
	if b.DeepLink {
		writeAttr(w, "data-anchor", b.Anchor)
		writeAttr(w, "title", "Copy link to this section")
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func listClass(b Block) string {
	marker := "list-disc"
	if b.Ordered {
		marker = "list-decimal"
	}
	if b.RTL() {
		return marker + " mr-6 text-right mb-4"
	}
	return marker + " ml-6 text-left mb-4"
}

func (nr *nodeRenderer) renderList(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	l := n.(*ast.List)
	tag := "ul"
	if l.IsOrdered() {
		tag = "ol"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	b := blockOf(n)
	_, _ = w.WriteString("<" + tag)
	if l.IsOrdered() && l.Start != 1 {
		writeAttr(w, "start", strconv.Itoa(l.Start))
	}
	writeAttr(w, "dir", string(b.Direction))
	writeAttr(w, "class", listClass(b))
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderListItem(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</li>\n")
		return ast.WalkContinue, nil
	}
	b := blockOf(n)
	_, _ = w.WriteString("<li")
	writeAttr(w, "dir", string(b.Direction))
	writeAttr(w, "class", string(b.Align))
	_ = w.WriteByte('>')
	if fc := n.FirstChild(); fc != nil {
		if _, ok := fc.(*ast.TextBlock); !ok {
			_ = w.WriteByte('\n')
		}
	}
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderImage(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	img := n.(*ast.Image)
	b := blockOf(n)
	_, _ = w.WriteString(`<span class="article-image relative block my-4">`)
	_, _ = w.WriteString("<img")
	writeURLAttr(w, "src", b.Src)
	writeAttr(w, "alt", b.Text)
	if len(img.Title) > 0 {
		writeAttr(w, "title", string(img.Title))
	}
	writeAttr(w, "class", "w-full h-auto rounded-lg")
	writeAttr(w, "loading", "lazy")
	_ = w.WriteByte('>')
	_, _ = w.WriteString(`<button type="button" class="image-enlarge"`)
	writeURLAttr(w, "data-image-src", b.Src)
	writeAttr(w, "data-image-alt", b.Text)
	_, _ = w.WriteString(` aria-label="Enlarge image">&#x2922;</button></span>`)
	return ast.WalkSkipChildren, nil
}

func openLink(w util.BufWriter, b Block) {
	_, _ = w.WriteString("<a")
	writeURLAttr(w, "href", b.Href)
	writeAttr(w, "class", "text-blue-600 hover:underline dark:text-blue-400")
	if b.External {
		writeAttr(w, "target", "_blank")
		writeAttr(w, "rel", "noopener noreferrer")
	}
	_ = w.WriteByte('>')
}

func (nr *nodeRenderer) renderLink(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	openLink(w, blockOf(n))
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	openLink(w, blockOf(n))
	html.DefaultWriter.RawWrite(w, n.(*ast.AutoLink).Label(source))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderCodeSpan(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	b := blockOf(n)
	_, _ = w.WriteString(`<code class="inline-code cursor-pointer" data-copy-inline title="Click to copy">`)
	html.DefaultWriter.RawWrite(w, []byte(b.Text))
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

const codeWrapperOpen = `<div class="code-block relative my-4" dir="ltr">` +
	`<button type="button" class="copy-code" data-copy-code aria-label="Copy code">Copy</button>`

func (nr *nodeRenderer) renderCodeBlock(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	b := blockOf(n)
	_, _ = w.WriteString(codeWrapperOpen)
	_, _ = w.WriteString("<pre><code>")
	html.DefaultWriter.RawWrite(w, []byte(b.Text))
	_, _ = w.WriteString("</code></pre></div>\n")
	return ast.WalkSkipChildren, nil
}

// codeWrapper surrounds fenced code with the copy button. Blocks the
// highlighter could not tokenize arrive without their own pre element.
func codeWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if entering {
		_, _ = w.WriteString(codeWrapperOpen)
		if !ctx.Highlighted() {
			_, _ = w.WriteString("<pre><code")
			if lang, ok := ctx.Language(); ok && len(lang) > 0 {
				writeAttr(w, "class", "language-"+string(lang))
			}
			_ = w.WriteByte('>')
		}
		return
	}
	if !ctx.Highlighted() {
		_, _ = w.WriteString("</code></pre>")
	}
	_, _ = w.WriteString("</div>\n")
}
