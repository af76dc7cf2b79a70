// Package cmd implements the CLI commands for searchshell.
//
// # Layout
//
//   - root.go: entry point, App struct, cobra command setup and flags
//   - interactive.go: REPL session, completion, multiline input
//   - slash_commands.go: slash command handlers (/model, /history, ...)
//
// # Modes
//
// One-shot mode answers a single question given as an argument and
// exits. Interactive mode runs a go-prompt REPL where each line is a
// conversational turn; lines starting with "search " fetch web
// reference text first, and lines starting with "/" are commands.
//
// The App struct wires the resolved configuration, the model client,
// the optional search provider and the history store into a
// chat.Controller, which owns the conversation and the streaming
// render pipeline.
package cmd
