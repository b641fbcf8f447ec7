// Defines the Request struct that models an individual request travelling through the pipeline.
// Tracks arrival time and the leaving time accumulated as the request waits and is served.

package sim

import (
	"fmt"
)

// Request models a single request's lifecycle in the pipeline.
// LeavingTime starts equal to ArrivalTime and only grows: every unit of
// waiting or service time spent at a stage is added to it.
type Request struct {
	ArrivalTime Duration `json:"arrival_time"` // Simulated time the request entered the pipeline
	LeavingTime Duration `json:"leaving_time"` // Simulated time the request left its last visited stage
}

// NewRequest creates a request arriving at the given time.
func NewRequest(arrivalTime Duration) Request {
	return Request{ArrivalTime: arrivalTime, LeavingTime: arrivalTime}
}

// Wait adds d to the request's leaving time.
func (req *Request) Wait(d Duration) {
	req.LeavingTime.Increase(d)
}

// Latency returns the total time the request spent in the pipeline so far.
func (req Request) Latency() Duration {
	return req.LeavingTime.Sub(req.ArrivalTime)
}

// This method returns a human-readable string representation of a Request.
func (req Request) String() string {
	return fmt.Sprintf("Request: (ArrivalTime: %v, LeavingTime: %v)", req.ArrivalTime, req.LeavingTime)
}
