package direction

import "testing"

func TestClassifyString(t *testing.T) {
	tests := []struct {
		name string
		text string
		mode Mode
		want Direction
	}{
		{"arabic starts", "مرحبا", StartsWith, RTL},
		{"latin first starts", "Hello مرحبا", StartsWith, LTR},
		{"latin first contains", "Hello مرحبا", Contains, RTL},
		{"empty starts", "", StartsWith, LTR},
		{"empty contains", "", Contains, LTR},
		{"whitespace", "   \n\t", Contains, LTR},
		{"plain latin", "Go tips", Contains, LTR},
		{"leading punctuation", "## «مرحبا»", StartsWith, RTL},
		{"leading digits", "1. مرحبا", StartsWith, RTL},
		{"markup leader then latin", "- item مرحبا", StartsWith, LTR},
		{"arabic-indic digits only", "١٢٣", StartsWith, LTR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyString(tt.text, tt.mode)
			if got.Direction != tt.want {
				t.Errorf("ClassifyString(%q, %s) = %s, want %s", tt.text, tt.mode, got.Direction, tt.want)
			}
		})
	}
}

func TestClassificationAlignment(t *testing.T) {
	rtl := ClassifyString("مرحبا", StartsWith)
	if rtl.Align != AlignRight || !rtl.RTL() {
		t.Errorf("rtl classification = %+v", rtl)
	}
	ltr := ClassifyString("hello", StartsWith)
	if ltr.Align != AlignLeft || ltr.RTL() {
		t.Errorf("ltr classification = %+v", ltr)
	}
}

func TestFlattenDepthFirst(t *testing.T) {
	tree := Group(
		Text("one "),
		Group(Text("two "), Group(Text("three "))),
		Text("four"),
	)
	if got := Flatten(tree); got != "one two three four" {
		t.Errorf("Flatten = %q", got)
	}
}

func TestFlattenIgnoresContainerText(t *testing.T) {
	tree := Fragment{Text: "مرحبا", Children: []Fragment{Text("hello")}}
	if got := Flatten(tree); got != "hello" {
		t.Errorf("Flatten = %q, want container text ignored", got)
	}
	if Detect(tree, Contains) {
		t.Error("container attribute text must not trigger rtl")
	}
}

func TestDetectNestedTree(t *testing.T) {
	tree := Group(Text("Intro: "), Group(Text("**"), Text("نص")))
	if Detect(tree, StartsWith) {
		t.Error("StartsWith should see the latin letter first")
	}
	if !Detect(tree, Contains) {
		t.Error("Contains should find the arabic leaf")
	}
}

func TestIsTriggerBlockBounds(t *testing.T) {
	if !IsTrigger(0x0600) || !IsTrigger(0x06FF) {
		t.Error("block bounds should be triggers")
	}
	if IsTrigger(0x05FF) || IsTrigger(0x0700) || IsTrigger(0xFB50) {
		t.Error("runes outside the block should not trigger")
	}
}
