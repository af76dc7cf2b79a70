package render

import (
	"strings"
	"testing"
)

func TestRender_Identity(t *testing.T) {
	e := NewEngine()

	tests := []string{
		"",
		"plain text with no markup.",
		"math like 2 < 3 and a/b stays put",
		"unbalanced **bold stays literal",
	}

	for _, text := range tests {
		if got := e.Render(text); got != text {
			t.Errorf("Render(%q) = %q, want unchanged", text, got)
		}
	}
}

func TestRender_Bold(t *testing.T) {
	e := NewEngine()

	got := e.Render("**x**")
	if !strings.Contains(got, ansiBoldCyan+"x"+ansiResetBlue) {
		t.Errorf("Render(**x**) = %q, want bold span around x", got)
	}
	if strings.Contains(got, "*") {
		t.Errorf("Render(**x**) = %q, residual asterisks left behind", got)
	}
}

func TestRender_AdjacentSpansStayIndependent(t *testing.T) {
	e := NewEngine()

	got := e.Render("*a* *b*")
	want := ansiItalicMagenta + "a" + ansiResetBlue + " " + ansiItalicMagenta + "b" + ansiResetBlue
	if got != want {
		t.Errorf("Render(*a* *b*) = %q, want two separate spans %q", got, want)
	}
}

func TestRender_BoldItalicPrecedesItalic(t *testing.T) {
	e := NewEngine()

	got := e.Render("_*_Response:_*_")
	want := ansiBoldItalicMagenta + "Response:" + ansiResetBlue
	if got != want {
		t.Errorf("Render(_*_Response:_*_) = %q, want %q", got, want)
	}
}

func TestRender_UnderlinePrecedesItalic(t *testing.T) {
	e := NewEngine()

	got := e.Render("__deep__")
	want := ansiUnderlineGreen + "deep" + ansiResetBlue
	if got != want {
		t.Errorf("Render(__deep__) = %q, want underline span %q", got, want)
	}
}

func TestRender_Italic(t *testing.T) {
	e := NewEngine()

	got := e.Render("It is *sunny* today.")
	want := "It is " + ansiItalicMagenta + "sunny" + ansiResetBlue + " today."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_ItalicSpansLines(t *testing.T) {
	e := NewEngine()

	got := e.Render("*two\nlines*")
	want := ansiItalicMagenta + "two\nlines" + ansiResetBlue
	if got != want {
		t.Errorf("Render() = %q, want multiline italic span %q", got, want)
	}
}

func TestRender_MixedMarkup(t *testing.T) {
	e := NewEngine()

	got := e.Render("**bold** and _italic_ and __underline__")
	for _, frag := range []string{
		ansiBoldCyan + "bold" + ansiResetBlue,
		ansiItalicMagenta + "italic" + ansiResetBlue,
		ansiUnderlineGreen + "underline" + ansiResetBlue,
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("Render() = %q, missing span %q", got, frag)
		}
	}
}

func TestPlainEngine_StripsMarkup(t *testing.T) {
	e := NewPlainEngine()

	got := e.Render("It is *sunny* with **wind**.")
	want := "It is sunny with wind."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_Deterministic(t *testing.T) {
	e := NewEngine()
	text := "**a** _b_ __c__ _*_d_*_"

	first := e.Render(text)
	for i := 0; i < 3; i++ {
		if got := e.Render(text); got != first {
			t.Fatalf("Render() not deterministic: %q vs %q", got, first)
		}
	}
}
