package render

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/ziadkadry99/cgblog/internal/direction"
)

// Kind identifies the block types that get direction-aware or interactive
// rendering.
type Kind string

const (
	KindParagraph  Kind = "paragraph"
	KindHeading    Kind = "heading"
	KindList       Kind = "list"
	KindListItem   Kind = "list_item"
	KindImage      Kind = "image"
	KindLink       Kind = "link"
	KindCodeBlock  Kind = "code_block"
	KindInlineCode Kind = "inline_code"
)

// Block is the rendering decision for one Markdown node.
type Block struct {
	Kind      Kind
	Level     int // heading level
	Direction direction.Direction
	Align     direction.Alignment
	Anchor    string // heading slug
	DeepLink  bool   // heading copies a link to its anchor when clicked
	Text      string // flattened text
	Ordered   bool
	Src       string // resolved image source
	Href      string
	External  bool
	Language  string
	Inline    bool
}

// RTL reports whether the block renders right-to-left.
func (b Block) RTL() bool { return b.Direction == direction.RTL }

// AssetResolver rewrites asset references found in Markdown.
type AssetResolver interface {
	ResolveAsset(src string) string
}

type identityAssets struct{}

func (identityAssets) ResolveAsset(src string) string { return src }

// renderState is shared by the handlers of one document.
type renderState struct {
	slugs  slugSet
	assets AssetResolver
}

func newRenderState(assets AssetResolver) *renderState {
	if assets == nil {
		assets = identityAssets{}
	}
	return &renderState{slugs: slugSet{}, assets: assets}
}

// blockFor dispatches n to the handler for its kind. The second result is
// false for nodes rendered with goldmark defaults.
func (s *renderState) blockFor(n ast.Node, src []byte) (Block, bool) {
	switch n := n.(type) {
	case *ast.Paragraph:
		return paragraphBlock(n, src), true
	case *ast.Heading:
		return headingBlock(n, src, s.slugs), true
	case *ast.List:
		return listBlock(n, src), true
	case *ast.ListItem:
		return listItemBlock(n, src), true
	case *ast.Image:
		return imageBlock(n, src, s.assets), true
	case *ast.Link:
		return linkBlock(string(n.Destination), n, src), true
	case *ast.AutoLink:
		dest := string(n.URL(src))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(dest), "mailto:") {
			dest = "mailto:" + dest
		}
		return linkBlock(dest, n, src), true
	case *ast.FencedCodeBlock:
		return codeBlock(string(n.Language(src)), n, src), true
	case *ast.CodeBlock:
		return codeBlock("", n, src), true
	case *ast.CodeSpan:
		return inlineCodeBlock(n, src), true
	}
	return Block{}, false
}

func paragraphBlock(n *ast.Paragraph, src []byte) Block {
	f := fragmentOf(n, src)
	c := direction.Classify(f, direction.Contains)
	return Block{Kind: KindParagraph, Direction: c.Direction, Align: c.Align, Text: direction.Flatten(f)}
}

func headingBlock(n *ast.Heading, src []byte, slugs slugSet) Block {
	text := direction.Flatten(fragmentOf(n, src))
	c := direction.ClassifyString(text, direction.StartsWith)
	return Block{
		Kind:      KindHeading,
		Level:     n.Level,
		Direction: c.Direction,
		Align:     c.Align,
		Anchor:    slugs.next(text),
		DeepLink:  n.Level <= 3,
		Text:      text,
	}
}

func listBlock(n *ast.List, src []byte) Block {
	f := fragmentOf(n, src)
	rtl := direction.Detect(f, direction.Contains)
	if !n.IsOrdered() {
		if first := n.FirstChild(); first != nil {
			rtl = rtl || direction.Detect(fragmentOf(first, src), direction.StartsWith)
		}
	}
	c := direction.FromBool(rtl)
	return Block{Kind: KindList, Ordered: n.IsOrdered(), Direction: c.Direction, Align: c.Align, Text: direction.Flatten(f)}
}

func listItemBlock(n *ast.ListItem, src []byte) Block {
	f := fragmentOf(n, src)
	c := direction.Classify(f, direction.Contains)
	return Block{Kind: KindListItem, Direction: c.Direction, Align: c.Align, Text: direction.Flatten(f)}
}

func imageBlock(n *ast.Image, src []byte, assets AssetResolver) Block {
	var alt strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		alt.WriteString(direction.Flatten(fragmentOf(c, src)))
	}
	return Block{
		Kind:      KindImage,
		Src:       assets.ResolveAsset(string(n.Destination)),
		Text:      alt.String(),
		Direction: direction.LTR,
		Align:     direction.AlignLeft,
	}
}

func linkBlock(href string, n ast.Node, src []byte) Block {
	return Block{
		Kind:      KindLink,
		Href:      href,
		External:  IsExternal(href),
		Text:      direction.Flatten(fragmentOf(n, src)),
		Direction: direction.LTR,
		Align:     direction.AlignLeft,
	}
}

func codeBlock(lang string, n ast.Node, src []byte) Block {
	return Block{
		Kind:      KindCodeBlock,
		Language:  lang,
		Text:      linesText(n, src),
		Direction: direction.LTR,
		Align:     direction.AlignLeft,
	}
}

func inlineCodeBlock(n *ast.CodeSpan, src []byte) Block {
	return Block{
		Kind:      KindInlineCode,
		Inline:    true,
		Text:      codeSpanText(n, src),
		Direction: direction.LTR,
		Align:     direction.AlignLeft,
	}
}

// IsExternal reports whether href points at another site over the network.
func IsExternal(href string) bool {
	if strings.HasPrefix(href, "//") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// fragmentOf converts the inline content under n into a direction
// fragment tree. Images and raw HTML carry no visible text.
func fragmentOf(n ast.Node, src []byte) direction.Fragment {
	switch t := n.(type) {
	case *ast.Text:
		s := string(t.Segment.Value(src))
		if t.SoftLineBreak() || t.HardLineBreak() {
			s += "\n"
		}
		return direction.Text(s)
	case *ast.String:
		return direction.Text(string(t.Value))
	case *ast.AutoLink:
		return direction.Text(string(t.Label(src)))
	case *ast.Image, *ast.RawHTML, *ast.HTMLBlock:
		return direction.Text("")
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return direction.Text(linesText(n, src))
	}

	var children []direction.Fragment
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		children = append(children, fragmentOf(c, src))
	}
	if len(children) == 0 {
		return direction.Text("")
	}
	return direction.Group(children...)
}

func linesText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

func codeSpanText(n *ast.CodeSpan, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			v := t.Segment.Value(src)
			if len(v) > 0 && v[len(v)-1] == '\n' {
				b.Write(v[:len(v)-1])
				b.WriteByte(' ')
				continue
			}
			b.Write(v)
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}
