package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"searchshell/internal/api"
	"searchshell/internal/constants"
	"searchshell/internal/logging"
	"searchshell/internal/render"
	"searchshell/internal/search"
)

// Controller errors
var (
	// ErrTurnInProgress is returned when a new turn is started while a
	// previous stream is still open.
	ErrTurnInProgress = errors.New("a turn is already in progress")
	// ErrNoSearchResults is returned when the search provider finds
	// nothing relevant to splice into the conversation.
	ErrNoSearchResults = errors.New("no relevant information found from the search")
)

// Controller orchestrates conversational turns. It owns the
// conversation context and commits a turn's messages only after the
// stream completes; a cancelled or failed turn leaves the context
// untouched.
type Controller struct {
	client   api.Client
	provider search.Provider
	convo    *Context
	engine   *render.Engine
	out      io.Writer
	logger   *logging.Logger
	results  int
	onFirst  func()
	inFlight atomic.Bool
}

// Options configures a Controller.
type Options struct {
	Client        api.Client
	Search        search.Provider // may be nil when web search is not configured
	Engine        *render.Engine
	Out           io.Writer
	Logger        *logging.Logger
	SearchResults int
}

// NewController creates a Controller over a fresh conversation.
func NewController(opts Options) *Controller {
	if opts.Engine == nil {
		opts.Engine = render.NewEngine()
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger
	}
	if opts.SearchResults == 0 {
		opts.SearchResults = constants.DefaultSearchResults
	}
	return &Controller{
		client:   opts.Client,
		provider: opts.Search,
		convo:    NewContext(),
		engine:   opts.Engine,
		out:      opts.Out,
		logger:   opts.Logger,
		results:  opts.SearchResults,
	}
}

// Conversation exposes the underlying context for session commands
// such as clear and resume.
func (c *Controller) Conversation() *Context {
	return c.convo
}

// SetClient swaps the model client. Used by the model switch command;
// must not be called while a turn is in flight.
func (c *Controller) SetClient(client api.Client) {
	c.client = client
}

// SetSearchResults changes how many results later searches request.
func (c *Controller) SetSearchResults(n int) {
	if n > 0 {
		c.results = n
	}
}

// SetOnFirstSegment registers a callback invoked right before the
// first segment of a turn is written. The shell uses it to stop its
// progress spinner.
func (c *Controller) SetOnFirstSegment(fn func()) {
	c.onFirst = fn
}

// RunTurn executes one plain conversational turn: stream the reply
// for input, render it incrementally, and commit the user and
// assistant turns on success.
func (c *Controller) RunTurn(ctx context.Context, input string) error {
	return c.run(ctx, "", input)
}

// RunSearch fetches reference text for query and executes a turn that
// answers from it. The reference is spliced into the outgoing
// messages as a system turn and committed with the rest of the turn
// so later turns keep the gathered context.
func (c *Controller) RunSearch(ctx context.Context, query string) error {
	if c.provider == nil {
		return errors.New("web search is not configured")
	}

	reference, err := c.provider.FetchContext(ctx, query, c.results)
	if err != nil {
		return fmt.Errorf("web search: %w", err)
	}
	if reference == "" {
		return ErrNoSearchResults
	}

	return c.run(ctx, reference, query)
}

// run executes one turn. Only one stream may be open at a time.
func (c *Controller) run(ctx context.Context, reference, input string) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrTurnInProgress
	}
	defer c.inFlight.Store(false)

	snapshot := c.convo.Snapshot()

	messages := make([]api.Message, 0, len(snapshot)+3)
	messages = append(messages, api.Message{Role: api.RoleSystem, Content: constants.DefaultSystemMessage})
	messages = append(messages, snapshot...)

	var refTurn *api.Message
	if reference != "" {
		turn := api.Message{Role: api.RoleSystem, Content: "Context from web searches:\n\n" + reference}
		messages = append(messages, turn)
		refTurn = &turn
	}

	userTurn := api.Message{Role: api.RoleUser, Content: input}
	messages = append(messages, userTurn)

	buf := render.NewSegmentBuffer(c.engine)
	first := true
	write := func(seg string) {
		if first {
			first = false
			if c.onFirst != nil {
				c.onFirst()
			}
		}
		fmt.Fprint(c.out, seg)
	}
	full, err := c.client.Stream(ctx, messages, func(delta string) {
		if seg, ok := buf.Feed(delta); ok {
			write(seg)
		}
	})
	if err != nil {
		// Nothing is committed: the interrupted or failed turn must
		// not leave a partial assistant reply in the history.
		return err
	}

	// Trailing partial segment is flushed unconditionally at stream
	// completion so it is never lost.
	if seg, ok := buf.Flush(); ok {
		write(seg)
	}

	if refTurn != nil {
		c.convo.Append(*refTurn)
	}
	c.convo.Append(userTurn)
	c.convo.Append(api.Message{Role: api.RoleAssistant, Content: full})
	return nil
}

// UserMessage converts a per-turn failure into the message shown to
// the user. The shell itself survives every per-turn error.
func UserMessage(err error) string {
	var transport *api.TransportError
	if errors.As(err, &transport) {
		if errors.Is(err, context.Canceled) {
			return "Response interrupted. The partial reply was discarded from history."
		}
		if transport.Partial != "" {
			return fmt.Sprintf("Connection lost mid-response: %v. The partial reply was not saved; please re-send your message.", transport.Err)
		}
		return fmt.Sprintf("Could not reach the model service: %v", transport.Err)
	}

	var upstream *api.UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf("The model service returned an error: %v", upstream)
	}

	return err.Error()
}
