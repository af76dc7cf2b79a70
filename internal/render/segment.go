package render

import "strings"

// segment terminators: a delta ending in one of these completes the
// buffered segment.
const terminators = ".!?\n"

// SegmentBuffer accumulates streamed deltas until a sentence or line
// boundary arrives, then emits the joined segment through an Engine.
// Segments are emitted exactly once, in arrival order; no delta is
// ever dropped. The zero buffer is not usable; create one with
// NewSegmentBuffer.
type SegmentBuffer struct {
	parts  []string
	engine *Engine
}

// NewSegmentBuffer creates a SegmentBuffer that renders flushed
// segments through engine.
func NewSegmentBuffer(engine *Engine) *SegmentBuffer {
	return &SegmentBuffer{engine: engine}
}

// Feed appends delta to the buffer. If delta's last character is a
// sentence terminator or newline, the buffered segment is rendered
// and returned with ok=true and the buffer is cleared; otherwise
// ok=false and more input is needed.
func (b *SegmentBuffer) Feed(delta string) (string, bool) {
	b.parts = append(b.parts, delta)
	if delta == "" || !strings.ContainsRune(terminators, rune(delta[len(delta)-1])) {
		return "", false
	}
	return b.drain(), true
}

// Flush renders and returns whatever is buffered, regardless of
// terminators. Callers invoke it at stream completion so a trailing
// partial segment is never silently lost. ok=false means the buffer
// was already empty.
func (b *SegmentBuffer) Flush() (string, bool) {
	if b.Len() == 0 {
		return "", false
	}
	return b.drain(), true
}

// Len returns the number of buffered bytes awaiting a terminator.
func (b *SegmentBuffer) Len() int {
	n := 0
	for _, p := range b.parts {
		n += len(p)
	}
	return n
}

func (b *SegmentBuffer) drain() string {
	joined := strings.Join(b.parts, "")
	b.parts = b.parts[:0]
	return b.engine.Render(joined)
}
