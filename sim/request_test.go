package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest_LeavingEqualsArrival(t *testing.T) {
	req := NewRequest(NewDuration(7))
	assert.Equal(t, NewDuration(7), req.ArrivalTime)
	assert.Equal(t, NewDuration(7), req.LeavingTime)
	assert.True(t, req.Latency().IsZero())
}

func TestRequest_Wait_AccumulatesLatency(t *testing.T) {
	// GIVEN a request arriving at t=3
	req := NewRequest(NewDuration(3))

	// WHEN it waits 1, then is served for 2.5
	req.Wait(NewDuration(1))
	req.Wait(NewDuration(2.5))

	// THEN leaving time = arrival + sum of increments
	assert.Equal(t, 6.5, req.LeavingTime.Float64())
	assert.Equal(t, 3.5, req.Latency().Float64())
	assert.Equal(t, 3.0, req.ArrivalTime.Float64())
}

func TestRequest_String_IncludesTimes(t *testing.T) {
	req := NewRequest(NewDuration(1.5))
	assert.Contains(t, req.String(), "ArrivalTime: 1.5")
}
