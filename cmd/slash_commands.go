package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"searchshell/internal/api"
	"searchshell/internal/constants"
	"searchshell/internal/display"
	"searchshell/internal/history"
)

// handleCommand processes slash commands in interactive mode.
// Returns true if the session should exit.
func (app *App) handleCommand(input string) bool {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/exit", "/quit", "/q":
		fmt.Println("Goodbye!")
		return true

	case "/clear", "/c":
		app.controller.Conversation().Reset()
		fmt.Println("Conversation cleared.")

	case "/help", "/h":
		app.showHelp()

	case "/history":
		app.showHistory()

	case "/resume":
		app.resumeConversation()

	case "/model":
		app.handleModelCommand(parts)

	case "/results":
		app.handleResultsCommand(parts)

	case "/config":
		app.showConfig()

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println("Type /help for available commands")
	}

	return false
}

func (app *App) showHelp() {
	fmt.Println("\nCommands:")
	fmt.Printf("  %-20s %s\n", "/exit, /quit, /q", "Exit the shell")
	fmt.Printf("  %-20s %s\n", "/clear, /c", "Clear conversation history")
	fmt.Printf("  %-20s %s\n", "/history", "Show recent conversations")
	fmt.Printf("  %-20s %s\n", "/resume", "Resume last conversation")
	fmt.Printf("  %-20s %s\n", "/model <name>", "Switch model")
	fmt.Printf("  %-20s %s\n", "/model", "Show current model")
	fmt.Printf("  %-20s %s\n", "/results <n>", "Use n web search results")
	fmt.Printf("  %-20s %s\n", "/config", "Show active configuration")
	fmt.Printf("  %-20s %s\n", "/help, /h", "Show this help")
	fmt.Println()
	fmt.Println("Prefix a line with 'search ' to look something up on the web first.")
	fmt.Println()
}

// showHistory lists recent saved conversations.
func (app *App) showHistory() {
	if app.store == nil {
		fmt.Println("History not available.")
		return
	}

	summaries, err := app.store.RecentConversations(context.Background(), 10)
	if err != nil {
		display.ShowError(fmt.Sprintf("Failed to load history: %v", err))
		return
	}
	if len(summaries) == 0 {
		fmt.Println("No saved conversations.")
		return
	}

	fmt.Println("\nRecent conversations:")
	for i, sum := range summaries {
		fmt.Printf("  %d. %s (%d turns, %s, %s)\n",
			i+1, sum.Title, sum.TurnCount, sum.Model,
			sum.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}

// resumeConversation replaces the live context with the most recently
// saved conversation.
func (app *App) resumeConversation() {
	if app.store == nil {
		fmt.Println("History not available.")
		return
	}

	tr, err := app.store.LastConversation(context.Background())
	if err == history.ErrNotFound {
		fmt.Println("No saved conversations to resume.")
		return
	}
	if err != nil {
		display.ShowError(fmt.Sprintf("Failed to resume: %v", err))
		return
	}

	app.controller.Conversation().Replace(tr.Turns)
	fmt.Printf("Resumed %q (%d turns).\n", tr.Summary.Title, len(tr.Turns))
}

// handleModelCommand shows or switches the active model. Switching
// rebuilds the client; the conversation carries over.
func (app *App) handleModelCommand(parts []string) {
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		fmt.Printf("Current model: %s (%s)\n", app.cfg.Model, app.cfg.Provider)
		return
	}

	model := strings.TrimSpace(parts[1])
	// Snapshot everything the switch mutates so a failed attempt
	// leaves the working configuration intact.
	prevModel := app.cfg.Model
	prevProvider := app.cfg.Provider
	prevAPIKey := app.cfg.APIKey
	prevBaseURL := app.cfg.BaseURL
	restore := func() {
		app.cfg.Model = prevModel
		app.cfg.Provider = prevProvider
		app.cfg.APIKey = prevAPIKey
		app.cfg.BaseURL = prevBaseURL
	}

	app.cfg.Model = model
	if strings.HasPrefix(model, "gemini") {
		app.cfg.Provider = "gemini"
	} else {
		app.cfg.Provider = "openai"
	}
	// Provider switch may need a different key and base URL.
	app.cfg.APIKey = ""
	app.cfg.BaseURL = ""
	if err := app.cfg.Validate(); err != nil {
		restore()
		display.ShowError(fmt.Sprintf("Configuration error: %v", err))
		return
	}

	client, err := api.NewClient(app.cfg, app.logger)
	if err != nil {
		restore()
		display.ShowError(fmt.Sprintf("Failed to switch model: %v", err))
		return
	}
	app.controller.SetClient(client)
	fmt.Printf("Switched to model: %s (%s)\n", app.cfg.Model, app.cfg.Provider)
}

// handleResultsCommand shows or sets the web search result count.
func (app *App) handleResultsCommand(parts []string) {
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		fmt.Printf("Web search results: %d\n", app.cfg.SearchResults)
		return
	}

	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || n < 1 || n > constants.MaxSearchResults {
		display.ShowError(fmt.Sprintf("Result count must be between 1 and %d", constants.MaxSearchResults))
		return
	}
	app.cfg.SearchResults = n
	app.controller.SetSearchResults(n)
	fmt.Printf("Web search results set to %d.\n", n)
}

// showConfig prints the resolved configuration.
func (app *App) showConfig() {
	fmt.Println("\nConfiguration:")
	fmt.Printf("  %-16s %s\n", "Provider:", app.cfg.Provider)
	fmt.Printf("  %-16s %s\n", "Model:", app.cfg.Model)
	fmt.Printf("  %-16s %s\n", "Base URL:", app.cfg.BaseURL)
	fmt.Printf("  %-16s %.2f\n", "Temperature:", app.cfg.Temperature)
	fmt.Printf("  %-16s %.2f\n", "Top P:", app.cfg.TopP)
	fmt.Printf("  %-16s %d\n", "Max tokens:", app.cfg.MaxTokens)
	fmt.Printf("  %-16s %d keys\n", "Search keys:", app.cfg.BraveKeys.GetKeyCount())
	fmt.Printf("  %-16s %d\n", "Search results:", app.cfg.SearchResults)
	fmt.Printf("  %-16s %s\n", "History:", app.cfg.HistoryPath)
	fmt.Println()
}
