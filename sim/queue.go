// Implements the RequestBuffer, which holds requests waiting for a Service stage.
// Requests are enqueued on arrival and dequeued when the handler starts a new task.

package sim

import (
	"fmt"
	"strings"
)

// RequestBuffer is a bounded FIFO queue of requests waiting to be served.
// The request currently being served is not part of the buffer.
type RequestBuffer struct {
	queue    []Request // FIFO queue of requests
	capacity int
}

// NewRequestBuffer creates an empty buffer holding at most capacity requests.
// Panics if capacity < 1.
func NewRequestBuffer(capacity int) *RequestBuffer {
	if capacity < 1 {
		panic(fmt.Sprintf("NewRequestBuffer: capacity must be >= 1, got %d", capacity))
	}
	return &RequestBuffer{queue: make([]Request, 0, capacity), capacity: capacity}
}

// Enqueue adds a request to the back of the buffer.
// Returns false, leaving the buffer unchanged, if it is already full.
func (rb *RequestBuffer) Enqueue(r Request) bool {
	if len(rb.queue) >= rb.capacity {
		return false
	}
	rb.queue = append(rb.queue, r)
	return true
}

func (rb *RequestBuffer) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range rb.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(rb.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of requests in the buffer.
func (rb *RequestBuffer) Len() int {
	return len(rb.queue)
}

// Cap returns the configured capacity.
func (rb *RequestBuffer) Cap() int {
	return rb.capacity
}

// Full reports whether another Enqueue would fail.
func (rb *RequestBuffer) Full() bool {
	return len(rb.queue) >= rb.capacity
}

// Items returns the buffer contents for iteration.
// The returned slice is the buffer's internal storage; callers MUST NOT append to or reslice it.
func (rb *RequestBuffer) Items() []Request {
	return rb.queue
}

// Dequeue removes and returns the request at the front of the buffer.
// The second result is false if the buffer is empty.
func (rb *RequestBuffer) Dequeue() (Request, bool) {
	if len(rb.queue) == 0 {
		return Request{}, false
	}
	req := rb.queue[0]
	copy(rb.queue, rb.queue[1:])
	rb.queue = rb.queue[:len(rb.queue)-1]
	return req, true
}

// WaitAll adds d to the leaving time of every buffered request.
func (rb *RequestBuffer) WaitAll(d Duration) {
	for i := range rb.queue {
		rb.queue[i].Wait(d)
	}
}

// Clear drops every buffered request.
func (rb *RequestBuffer) Clear() {
	rb.queue = rb.queue[:0]
}
