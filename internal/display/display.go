// Package display renders terminal output for the shell: errors,
// markdown replies, citations and progress spinners.
package display

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
)

var renderer *glamour.TermRenderer

// InitRenderer prepares the markdown renderer. Call once before
// ShowContentRendered; rendering falls back to plain output when the
// renderer was never initialised.
func InitRenderer() error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("init markdown renderer: %w", err)
	}
	renderer = r
	return nil
}

// ShowContent prints a reply without markdown rendering.
func ShowContent(content string) {
	fmt.Println(content)
}

// ShowContentRendered prints a reply through the markdown renderer.
func ShowContentRendered(content string) {
	if renderer == nil {
		ShowContent(content)
		return
	}
	out, err := renderer.Render(content)
	if err != nil {
		ShowContent(content)
		return
	}
	fmt.Print(out)
}

// ShowError prints an error message to stderr.
func ShowError(msg string) {
	fmt.Fprintf(os.Stderr, "\033[1;91mError:\033[0m %s\n", msg)
}

// ShowInfo prints an informational notice.
func ShowInfo(msg string) {
	fmt.Printf("\033[1;93m%s\033[0m\n", msg)
}

// Citation is one web source referenced by a reply.
type Citation struct {
	Title string
	URL   string
}

// ShowCitations lists the web sources a reply drew on.
func ShowCitations(citations []Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Println("\033[1;96mSources:\033[0m")
	for i, c := range citations {
		fmt.Printf("  [%d] %s\n      %s\n", i+1, c.Title, c.URL)
	}
}

// Spinner shows indeterminate progress while waiting on the network.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a stopped spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Start begins the animation.
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop halts the animation and clears the line.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// UpdateMessage swaps the message while the spinner keeps running.
func (sp *Spinner) UpdateMessage(message string) {
	sp.s.Suffix = " " + message
}
