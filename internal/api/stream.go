package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"searchshell/internal/logging"
)

// StreamState tracks the lifecycle of one streaming call.
type StreamState int

const (
	StateIdle StreamState = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateFailed
)

// String returns the state name for logging.
func (s StreamState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SSEProcessor consumes a Server-Sent Events response body frame by
// frame. Each "data:" frame is decoded independently; a frame that
// fails to decode is logged and skipped without ending the stream.
// The per-delta callback runs synchronously on the read loop, so
// deltas are delivered strictly in arrival order and the next frame
// is not read until the callback returns.
type SSEProcessor struct {
	reader  *bufio.Reader
	content strings.Builder
	state   StreamState
	logger  *logging.Logger
}

// NewSSEProcessor creates an idle processor. Connecting marks the
// dial in progress; Process consumes the response body once the
// connection is up.
func NewSSEProcessor(logger *logging.Logger) *SSEProcessor {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &SSEProcessor{
		state:  StateIdle,
		logger: logger,
	}
}

// Connecting marks the transition from Idle while the request is
// being dialed.
func (p *SSEProcessor) Connecting() {
	p.state = StateConnecting
}

// Fail marks the stream as failed before any frame was read, for
// dial and status errors.
func (p *SSEProcessor) Fail() {
	p.state = StateFailed
}

// Process reads the stream until the end-of-stream sentinel or EOF,
// invoking onDelta once per content fragment. Returns the error that
// ended the stream, if any; accumulated text survives either way and
// is available from Content.
func (p *SSEProcessor) Process(ctx context.Context, r io.Reader, onDelta func(string)) error {
	p.reader = bufio.NewReader(r)
	p.state = StateStreaming

	for {
		if err := ctx.Err(); err != nil {
			p.state = StateFailed
			return err
		}

		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			p.state = StateFailed
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var frame ChatResponse
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			p.logger.Warn("skipping malformed stream frame", logging.Fields{
				"error": err.Error(),
				"data":  data,
			})
			continue
		}

		// Only the first candidate is rendered; frames for other
		// candidate indexes are ignored.
		for _, choice := range frame.Choices {
			if choice.Index != 0 || choice.Delta.Content == "" {
				continue
			}
			p.content.WriteString(choice.Delta.Content)
			onDelta(choice.Delta.Content)
		}
	}

	p.state = StateCompleted
	return nil
}

// Content returns the text accumulated so far.
func (p *SSEProcessor) Content() string {
	return p.content.String()
}

// State returns the processor's current lifecycle state.
func (p *SSEProcessor) State() StreamState {
	return p.state
}
