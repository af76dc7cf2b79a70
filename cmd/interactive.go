package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"searchshell/internal/chat"
	"searchshell/internal/display"
	"searchshell/internal/render"
)

// searchPrefix marks a line that should run a web search before
// answering.
const searchPrefix = "search "

// shellSession holds the state for an interactive session.
type shellSession struct {
	app         *App
	exitFlag    bool
	inputBuffer []string
}

// completer provides auto-completion for slash commands.
func (s *shellSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	if strings.HasPrefix(strings.ToLower(text), "/model ") {
		suggestions := []prompt.Suggest{
			{Text: "gpt-4o-mini", Description: "OpenAI"},
			{Text: "gpt-4o", Description: "OpenAI"},
			{Text: "gemini-1.5-flash-8b", Description: "Gemini"},
		}
		return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
	}

	suggestions := []prompt.Suggest{
		{Text: "/model", Description: "Show/switch model (current: " + s.app.cfg.Model + ")"},
		{Text: "/clear", Description: "Clear conversation history"},
		{Text: "/help", Description: "Show all available commands"},
		{Text: "/exit", Description: "Exit the shell"},
		{Text: "/history", Description: "Show recent conversations"},
		{Text: "/resume", Description: "Resume last conversation"},
		{Text: "/results", Description: "Show/set web search result count"},
		{Text: "/config", Description: "Show active configuration"},
		{Text: "/q", Description: "Exit (alias)"},
		{Text: "/c", Description: "Clear (alias)"},
		{Text: "/h", Description: "Help (alias)"},
	}

	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

// runInteractive starts the shell REPL. It handles slash commands,
// the search prefix, and multiline input with backslash continuation
// until the session is terminated.
func (app *App) runInteractive() {
	fmt.Print(render.BaseColor())
	fmt.Println("searchshell - Interactive Mode")
	fmt.Printf("Model: %s (%s)\n", app.cfg.Model, app.cfg.Provider)
	if app.cfg.BraveKeys.HasKeys() {
		fmt.Println("Web search: available (prefix a line with 'search ')")
	}
	fmt.Println("Type /help for commands, Ctrl+C or Ctrl+D to quit")
	fmt.Println("End a line with \\ for multiline input")
	fmt.Print("\033[0m\n")

	session := &shellSession{app: app}

	p := prompt.New(
		session.executor,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("> "),
		prompt.WithTitle("searchshell"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(12),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Println("\nGoodbye!")
				session.app.saveHistory(context.Background())
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Println("Goodbye!")
					session.app.saveHistory(context.Background())
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

// executor handles each input line in the REPL.
func (s *shellSession) executor(input string) {
	if s.exitFlag {
		return
	}

	// Multiline input with backslash continuation.
	if strings.HasSuffix(input, "\\") {
		s.inputBuffer = append(s.inputBuffer, strings.TrimSuffix(input, "\\"))
		fmt.Print("... ")
		return
	}
	if len(s.inputBuffer) > 0 {
		s.inputBuffer = append(s.inputBuffer, input)
		input = strings.Join(s.inputBuffer, "\n")
		s.inputBuffer = nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	if strings.HasPrefix(input, "/") {
		if s.app.handleCommand(input) {
			s.app.saveHistory(context.Background())
			s.exitFlag = true
		}
		return
	}

	web := false
	if query, found := strings.CutPrefix(input, searchPrefix); found && strings.TrimSpace(query) != "" {
		web = true
		input = strings.TrimSpace(query)
	}

	fmt.Println()
	if err := s.app.executeTurn(context.Background(), input, web); err != nil {
		display.ShowError(chat.UserMessage(err))
		return
	}
	fmt.Println()
}
