package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_AlwaysAccepts(t *testing.T) {
	accum := &RequestAccumulator{}
	c := NewCollector(accum)

	for i := 0; i < 5; i++ {
		budget := NewDuration(float64(i))
		require.NoError(t, c.PushRequest(&budget, NewRequest(NewDuration(float64(i)))))
		assert.Equal(t, float64(i), budget.Float64(), "collector never consumes budget")
	}

	assert.Equal(t, 5, accum.Len())
	assert.Empty(t, c.IdleTimeReport())
}

func TestCollector_Reset_ClearsSharedList(t *testing.T) {
	accum := &RequestAccumulator{}
	c := NewCollector(accum)
	budget := Zero
	c.PushRequest(&budget, NewRequest(Zero))

	c.Reset()

	assert.Equal(t, 0, accum.Len())
}

func TestRequestAccumulator_Snapshot_IsACopy(t *testing.T) {
	accum := &RequestAccumulator{}
	c := NewCollector(accum)
	budget := Zero
	c.PushRequest(&budget, NewRequest(NewDuration(1)))

	snap := accum.Snapshot()
	snap[0].Wait(NewDuration(5))

	assert.Equal(t, 1.0, accum.Items()[0].LeavingTime.Float64())
}

func TestNewCollector_NilAccumulator_Panics(t *testing.T) {
	assert.Panics(t, func() { NewCollector(nil) })
}
