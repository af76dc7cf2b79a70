// Package render turns streamed model output into display-ready
// terminal text. It applies lightweight inline markup styling and
// reassembles token deltas into sentence-bounded segments.
package render

import "regexp"

// Style is an explicit styled-span definition: the escape sequence
// that opens the span and the sequence that closes it. Keeping both
// on the rule makes rendering a pure substitution with no global
// color state.
type Style struct {
	Open  string
	Close string
}

// ANSI sequences used by the default engine. The close sequence
// resets attributes and restores the shell's base blue, matching the
// prompt color set at startup.
const (
	ansiBoldItalicMagenta = "\033[1;3;95m"
	ansiUnderlineGreen    = "\033[4;92m"
	ansiItalicMagenta     = "\033[3;95m"
	ansiBoldCyan          = "\033[1;96m"
	ansiResetBlue         = "\033[0;94m"
)

// Rule pairs a markup pattern with the style applied to its capture
// group. Patterns must be non-greedy so adjacent spans stay separate.
type Rule struct {
	Pattern *regexp.Regexp
	Style   Style
}

// Engine applies an ordered list of markup rules. Order is
// significant: more specific delimiters must be rewritten before the
// shorter delimiters they contain.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the default rule set:
// bold+italic (_*_x_*_), underline (__x__), italic (_x_),
// bold (**x**), italic (*x*), in that precedence order.
func NewEngine() *Engine {
	reset := ansiResetBlue
	return &Engine{rules: []Rule{
		{regexp.MustCompile(`(?s)_\*_(.*?)_\*_`), Style{ansiBoldItalicMagenta, reset}},
		{regexp.MustCompile(`__(.*?)__`), Style{ansiUnderlineGreen, reset}},
		{regexp.MustCompile(`_(.*?)_`), Style{ansiItalicMagenta, reset}},
		{regexp.MustCompile(`\*\*(.*?)\*\*`), Style{ansiBoldCyan, reset}},
		{regexp.MustCompile(`(?s)\*(.*?)\*`), Style{ansiItalicMagenta, reset}},
	}}
}

// NewPlainEngine creates an engine that strips markup delimiters
// without emitting escape sequences, for non-TTY output.
func NewPlainEngine() *Engine {
	none := Style{}
	return &Engine{rules: []Rule{
		{regexp.MustCompile(`(?s)_\*_(.*?)_\*_`), none},
		{regexp.MustCompile(`__(.*?)__`), none},
		{regexp.MustCompile(`_(.*?)_`), none},
		{regexp.MustCompile(`\*\*(.*?)\*\*`), none},
		{regexp.MustCompile(`(?s)\*(.*?)\*`), none},
	}}
}

// Render maps raw text with inline markup to a display string. It is
// pure and total: text with no markup, or with unbalanced delimiters,
// passes through unchanged.
func (e *Engine) Render(text string) string {
	for _, r := range e.rules {
		text = r.Pattern.ReplaceAllString(text, r.Style.Open+"${1}"+r.Style.Close)
	}
	return text
}

// BaseColor returns the sequence establishing the shell's base text
// color, printed once at startup.
func BaseColor() string { return ansiResetBlue }
