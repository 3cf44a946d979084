// Package direction decides whether a block of text renders right-to-left.
//
// A block is treated as right-to-left when it carries Arabic script
// (the U+0600–U+06FF block). Text may arrive as a plain string or as a tree
// of fragments produced by a rich-text renderer; the tree is flattened
// depth-first before classification.
package direction

import (
	"strings"
	"unicode"
)

// Direction is the value of an HTML dir attribute.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// Alignment is the text-alignment class paired with a direction.
type Alignment string

const (
	AlignLeft  Alignment = "text-left"
	AlignRight Alignment = "text-right"
)

// Mode selects how the script trigger is located in the text.
type Mode int

const (
	// StartsWith looks only at the first letter of the text.
	StartsWith Mode = iota
	// Contains looks for the trigger anywhere in the text.
	Contains
)

func (m Mode) String() string {
	if m == Contains {
		return "contains"
	}
	return "startsWith"
}

// arabicBlock is the Arabic Unicode block. unicode.Arabic is wider (it also
// covers the supplement and presentation forms), so the block is spelled out.
var arabicBlock = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0600, Hi: 0x06FF, Stride: 1}},
}

// IsTrigger reports whether r falls in the Arabic block.
func IsTrigger(r rune) bool {
	return unicode.Is(arabicBlock, r)
}

// Fragment is a node in a tree of rendered text. A fragment with no
// children is a text leaf; a fragment with children is a container whose
// own Text is ignored.
type Fragment struct {
	Text     string
	Children []Fragment
}

// Text returns a leaf fragment.
func Text(s string) Fragment {
	return Fragment{Text: s}
}

// Group returns a container fragment.
func Group(children ...Fragment) Fragment {
	return Fragment{Children: children}
}

// IsLeaf reports whether f carries text rather than children.
func (f Fragment) IsLeaf() bool {
	return len(f.Children) == 0
}

// Flatten concatenates the text leaves of f in depth-first order.
func Flatten(f Fragment) string {
	var b strings.Builder
	flattenInto(&b, f)
	return b.String()
}

func flattenInto(b *strings.Builder, f Fragment) {
	if f.IsLeaf() {
		b.WriteString(f.Text)
		return
	}
	for _, c := range f.Children {
		flattenInto(b, c)
	}
}

// StartsWithScript reports whether the first letter of text is in the
// Arabic block. Whitespace, punctuation, digits and markup leaders such as
// "#", "*" or "-" are skipped while looking for that letter.
func StartsWithScript(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return IsTrigger(r)
		}
	}
	return false
}

// ContainsScript reports whether any rune of text is in the Arabic block.
func ContainsScript(text string) bool {
	return strings.IndexFunc(text, IsTrigger) >= 0
}

// Detect flattens f and applies the trigger test selected by mode.
func Detect(f Fragment, mode Mode) bool {
	return DetectString(Flatten(f), mode)
}

// DetectString is Detect for text that is already flat.
func DetectString(text string, mode Mode) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if mode == Contains {
		return ContainsScript(text)
	}
	return StartsWithScript(text)
}

// Classification is the outcome of one classification pass. Direction and
// alignment are separate so callers can pin one while following the other.
type Classification struct {
	Direction Direction
	Align     Alignment
}

// RTL reports whether the classification is right-to-left.
func (c Classification) RTL() bool {
	return c.Direction == RTL
}

// FromBool builds the classification for a trigger result.
func FromBool(rtl bool) Classification {
	if rtl {
		return Classification{Direction: RTL, Align: AlignRight}
	}
	return Classification{Direction: LTR, Align: AlignLeft}
}

// Classify classifies a fragment tree.
func Classify(f Fragment, mode Mode) Classification {
	return FromBool(Detect(f, mode))
}

// ClassifyString classifies plain text.
func ClassifyString(text string, mode Mode) Classification {
	return FromBool(DetectString(text, mode))
}
