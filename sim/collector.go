package sim

// RequestAccumulator is the list of requests that reached the end of the chain.
// The Collector writes to it and the Pipeline reads it; both run on the same goroutine.
type RequestAccumulator struct {
	requests []Request
}

// Len returns the number of completed requests.
func (a *RequestAccumulator) Len() int {
	return len(a.requests)
}

// Snapshot returns a copy of the completed requests.
func (a *RequestAccumulator) Snapshot() []Request {
	out := make([]Request, len(a.requests))
	copy(out, a.requests)
	return out
}

// Items returns the internal storage. Callers MUST NOT modify it.
func (a *RequestAccumulator) Items() []Request {
	return a.requests
}

// Clear drops every accumulated request.
func (a *RequestAccumulator) Clear() {
	a.requests = a.requests[:0]
}

// Collector is the terminal stage. It accepts every request.
type Collector struct {
	accum *RequestAccumulator
}

// NewCollector returns a Collector appending to accum.
func NewCollector(accum *RequestAccumulator) *Collector {
	if accum == nil {
		panic("NewCollector: accum must not be nil")
	}
	return &Collector{accum: accum}
}

func (c *Collector) PushRequest(_ *Duration, req Request) error {
	c.accum.requests = append(c.accum.requests, req)
	return nil
}

func (c *Collector) Reset() {
	c.accum.Clear()
}

func (c *Collector) IdleTimeReport() []StageStatistics {
	return nil
}
