// Package rotator implements the TextureBufferRotator<T,N> of spec.md §3
// and §4.6: N buffers with a producer cursor and a consumer cursor,
// guaranteeing the drawable slot is never the one currently being written.
package rotator

import "sync"

// Rotator rotates through N buffers of type T. The zero value is not
// usable; construct with New. Every Buffer and Draw call runs under one
// mutex, so a producer on another goroutine is serialized with the render
// thread's Draw (internal/rig's FramebufferServer calls Buffer, through
// its composer, from the pipe's handler goroutine).
type Rotator[T any] struct {
	mu          sync.Mutex
	buffers     []T
	written     []bool
	producer    int
	consumer    int
	lastWritten int
	hasData     bool // true once at least one buffer has been written
}

// New creates a rotator over n pre-allocated buffers.
func New[T any](buffers []T) *Rotator[T] {
	if len(buffers) < 3 {
		// spec.md §3 fixes N=3 for every overlay channel's rotator; fewer
		// than 3 buffers cannot guarantee producer != consumer once the
		// consumer slot is promoted to the most recently written one.
		panic("rotator: need at least 3 buffers")
	}
	return &Rotator[T]{
		buffers: buffers,
		written: make([]bool, len(buffers)),
	}
}

// Buffer calls write with the next producer slot, then advances the
// producer cursor to the next slot that is not the current consumer slot
// (spec.md: "advancing the producer skips the current consumer slot").
func (r *Rotator[T]) Buffer(write func(buf *T)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := r.producer
	write(&r.buffers[slot])
	r.written[slot] = true

	if !r.hasData {
		// First successful buffer(): consumer starts here too, but the
		// "producer != consumer once at least one buffer has been
		// written" invariant takes effect as soon as we advance below.
		r.consumer = slot
		r.hasData = true
	}

	next := (slot + 1) % len(r.buffers)
	if next == r.consumer {
		next = (next + 1) % len(r.buffers)
	}
	r.producer = next
	r.lastWritten = slot
}

// Draw calls submit with the current consumer slot's buffer and returns
// true, unless no buffer has ever been written yet (a no-op, per spec.md:
// "draw is a no-op until the first successful buffer()").
func (r *Rotator[T]) Draw(submit func(buf *T)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasData {
		return false
	}

	// Promote the most recently completed write to the consumer slot. This
	// is what "drawn texture equals one of the last N-1 buffered textures"
	// means in practice: the consumer always trails the producer by at
	// least one slot so a draw never races an in-flight write.
	r.consumer = r.lastWritten
	submit(&r.buffers[r.consumer])
	return true
}
