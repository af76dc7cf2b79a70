// Package chat holds the conversation state and orchestrates one
// conversational turn: building the outgoing message list, streaming
// the reply to the terminal, and committing completed turns.
package chat

import (
	"sync"

	"searchshell/internal/api"
)

// Context is the ordered, append-only log of conversation turns.
// Turns are never mutated or reordered once appended. Safe for
// concurrent use.
type Context struct {
	mu    sync.Mutex
	turns []api.Message
}

// NewContext creates an empty conversation context.
func NewContext() *Context {
	return &Context{}
}

// Append adds a turn to the end of the log.
func (c *Context) Append(turn api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// Snapshot returns a copy of the turns at call time. Later appends do
// not retroactively change a request built from an earlier snapshot.
func (c *Context) Snapshot() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Message, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Reset discards all turns, starting a fresh conversation.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

// Replace swaps the log for the given turns, used when resuming a
// saved conversation.
func (c *Context) Replace(turns []api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = make([]api.Message, len(turns))
	copy(c.turns, turns)
}
