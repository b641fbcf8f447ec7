package sim

import (
	"math/rand"
)

// task pairs the request in service with the service time it still needs.
type task struct {
	request      Request
	handlingTime Duration
}

// serve runs t for at most *budget. It returns the service time actually spent
// and whether the task completed. Spent time is subtracted from *budget and
// added to the request's leaving time.
func (t *task) serve(budget *Duration) (spent Duration, completed bool) {
	if !budget.Less(t.handlingTime) {
		spent = t.handlingTime
		budget.Decrease(spent)
		t.handlingTime = Zero
		completed = true
	} else {
		spent = *budget
		t.handlingTime.Decrease(spent)
		*budget = Zero
	}
	t.request.Wait(spent)
	return spent, completed
}

// handler owns a Service stage's buffer and the request currently in service.
type handler struct {
	buffer  *RequestBuffer
	current *task // nil when no request is in service
	rng     *rand.Rand
	sampler DurationSampler
}

func newHandler(bufferSize int, rng *rand.Rand, sampler DurationSampler) *handler {
	return &handler{
		buffer:  NewRequestBuffer(bufferSize),
		rng:     rng,
		sampler: sampler,
	}
}

// add buffers req. Returns false if the buffer is full.
func (h *handler) add(req Request) bool {
	return h.buffer.Enqueue(req)
}

func (h *handler) clear() {
	h.buffer.Clear()
	h.current = nil
}

// progress advances service by at most *budget.
//
// It returns ok=false when there is nothing more to do: the budget is spent,
// or nothing is in service and the buffer is empty. Otherwise done is true
// when a request finished, in which case req is that request.
// Every buffered request waits for as long as the service step took.
func (h *handler) progress(budget *Duration) (req Request, done bool, ok bool) {
	if budget.IsZero() {
		return Request{}, false, false
	}

	t := h.current
	h.current = nil
	if t == nil {
		t = h.nextTask()
		if t == nil {
			return Request{}, false, false
		}
	}

	spent, completed := t.serve(budget)
	h.buffer.WaitAll(spent)

	if !completed {
		h.current = t
		return Request{}, false, true
	}
	return t.request, true, true
}

// nextTask takes the buffer head and samples its service time.
func (h *handler) nextTask() *task {
	req, ok := h.buffer.Dequeue()
	if !ok {
		return nil
	}
	return &task{request: req, handlingTime: h.sampler.Sample(h.rng)}
}
