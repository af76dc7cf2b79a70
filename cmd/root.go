// Package cmd implements the CLI commands for searchshell.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"searchshell/internal/api"
	"searchshell/internal/chat"
	"searchshell/internal/config"
	"searchshell/internal/display"
	"searchshell/internal/history"
	"searchshell/internal/logging"
	"searchshell/internal/render"
	"searchshell/internal/search"
)

// App holds the application state shared by one-shot and interactive
// modes.
type App struct {
	cfg        *config.Config
	logger     *logging.Logger
	controller *chat.Controller
	store      *history.Store

	// buffered means segments are not streamed to the terminal; the
	// complete reply is printed once the turn finishes.
	buffered bool
}

// NewApp creates a new App instance with default configuration.
func NewApp() *App {
	return &App{
		cfg:    config.NewConfig(),
		logger: logging.DefaultLogger,
	}
}

// Execute runs the root command.
func Execute() {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:   "searchshell [question]",
		Short: "A conversational shell for AI models with web search",
		Long: `searchshell is a terminal client for AI models (OpenAI-compatible
streaming endpoints, Gemini) that can search the web first and answer
from what it finds. Responses stream in sentence segments with inline
styling.

Examples:
  searchshell "What is Kubernetes?"
  searchshell -m gpt-4o "Explain Docker"
  searchshell -w "Latest news on Go 1.24"
  searchshell -i              # Interactive shell
  searchshell -ir             # Interactive with markdown rendering`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app.run(cmd, args)
		},
	}

	rootCmd.Flags().BoolVarP(&app.cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&app.cfg.Stream, "stream", "s", false, "Stream output in real-time")
	rootCmd.Flags().BoolVarP(&app.cfg.Render, "render", "r", false, "Render markdown with colors and formatting")
	rootCmd.Flags().BoolVarP(&app.cfg.WebSearch, "web", "w", false, "Search the web first (requires BRAVE_API_KEYS)")
	rootCmd.Flags().BoolVarP(&app.cfg.Interactive, "interactive", "i", false, "Interactive shell mode")
	rootCmd.Flags().StringVarP(&app.cfg.Model, "model", "m", "", "Model name (e.g., gpt-4o-mini, gemini-1.5-flash-8b)")
	rootCmd.Flags().StringVar(&app.cfg.Provider, "provider", "", "Model provider: openai or gemini")
	rootCmd.Flags().IntVar(&app.cfg.SearchResults, "results", 0, "Number of web search results to use")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (app *App) run(cmd *cobra.Command, args []string) {
	if app.cfg.Verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	if err := app.cfg.Validate(); err != nil {
		display.ShowError(err.Error())
		os.Exit(1)
	}

	if app.cfg.Render {
		if err := display.InitRenderer(); err != nil {
			app.logger.Warn("renderer init failed", logging.Fields{"error": err.Error()})
		}
	}

	client, err := api.NewClient(app.cfg, app.logger)
	if err != nil {
		display.ShowError(err.Error())
		os.Exit(1)
	}

	var provider search.Provider
	if app.cfg.BraveKeys.HasKeys() {
		provider = search.NewBraveClient(app.cfg, app.logger)
	}

	// Buffered modes accumulate the full reply and print it once at
	// the end, so incremental segments are styled plainly and dropped.
	// Interactive mode always streams; one-shot streams only with -s.
	app.buffered = app.cfg.Render || (!app.cfg.Interactive && !app.cfg.Stream)
	engine := render.NewEngine()
	out := io.Writer(os.Stdout)
	if app.buffered {
		engine = render.NewPlainEngine()
		out = io.Discard
	}

	app.controller = chat.NewController(chat.Options{
		Client:        client,
		Search:        provider,
		Engine:        engine,
		Out:           out,
		Logger:        app.logger,
		SearchResults: app.cfg.SearchResults,
	})

	if store, err := history.Open(app.cfg.HistoryPath); err != nil {
		app.logger.Warn("history unavailable", logging.Fields{"error": err.Error()})
	} else {
		app.store = store
		defer store.Close()
	}

	if app.cfg.Interactive {
		app.runInteractive()
		return
	}

	if len(args) == 0 {
		_ = cmd.Help()
		os.Exit(1)
	}

	if err := app.runOneShot(args[0]); err != nil {
		display.ShowError(chat.UserMessage(err))
		os.Exit(1)
	}
}

// runOneShot answers a single question and exits.
func (app *App) runOneShot(question string) error {
	ctx := context.Background()

	err := app.executeTurn(ctx, question, app.cfg.WebSearch)
	if err != nil {
		return err
	}

	app.saveHistory(ctx)
	return nil
}

// executeTurn runs one turn through the controller, showing a spinner
// until the first streamed segment arrives. A user interrupt cancels
// the in-flight turn; the partial reply is discarded and the shell
// keeps running.
func (app *App) executeTurn(ctx context.Context, input string, web bool) error {
	ctx, stopNotify := signal.NotifyContext(ctx, os.Interrupt)
	defer stopNotify()

	message := "Thinking..."
	if web {
		message = "Checking the InterWebs..."
	}
	sp := display.NewSpinner(message)
	sp.Start()
	stopped := false
	stop := func() {
		if !stopped {
			stopped = true
			sp.Stop()
			if !app.buffered {
				fmt.Print(render.BaseColor())
			}
		}
	}
	app.controller.SetOnFirstSegment(stop)
	defer app.controller.SetOnFirstSegment(nil)

	var err error
	if web {
		err = app.controller.RunSearch(ctx, input)
	} else {
		err = app.controller.RunTurn(ctx, input)
	}
	stop()
	if err != nil {
		return err
	}

	switch {
	case app.cfg.Render:
		display.ShowContentRendered(app.lastReply())
	case app.buffered:
		fmt.Print(render.BaseColor())
		fmt.Print(render.NewEngine().Render(app.lastReply()))
		fmt.Print("\033[0m\n")
	default:
		fmt.Print("\033[0m\n")
	}
	return nil
}

// lastReply returns the assistant text of the most recent turn.
func (app *App) lastReply() string {
	turns := app.controller.Conversation().Snapshot()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == api.RoleAssistant {
			return turns[i].Content
		}
	}
	return ""
}

// saveHistory persists the conversation when a store is available.
func (app *App) saveHistory(ctx context.Context) {
	if app.store == nil {
		return
	}
	meta := history.Meta{Model: app.cfg.Model, Provider: app.cfg.Provider}
	if _, err := app.store.SaveConversation(ctx, meta, app.controller.Conversation().Snapshot()); err != nil {
		app.logger.Warn("history save failed", logging.Fields{"error": err.Error()})
	}
}
