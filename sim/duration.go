// Defines Duration, the non-negative simulated-time value used by every stage.

package sim

import (
	"fmt"
	"math"
)

// Duration is a non-negative span of simulated time.
// The zero value is a valid zero duration.
//
// Constructing a negative Duration, or subtracting a larger Duration from a
// smaller one, is a modeling contract violation and panics.
type Duration struct {
	value float64
}

// Zero is the zero-length duration.
var Zero = Duration{}

// NewDuration creates a Duration from a scalar time value.
// Panics if v is negative or NaN.
func NewDuration(v float64) Duration {
	if v < 0 || math.IsNaN(v) {
		panic(fmt.Sprintf("NewDuration: time can't be negative, got %v", v))
	}
	return Duration{value: v}
}

// Float64 returns the scalar value of d.
func (d Duration) Float64() float64 {
	return d.value
}

// Add returns d + o.
func (d Duration) Add(o Duration) Duration {
	return Duration{value: d.value + o.value}
}

// Sub returns d - o. Panics if o > d.
func (d Duration) Sub(o Duration) Duration {
	if d.value < o.value {
		panic(fmt.Sprintf("Duration.Sub: time can't be negative (%v - %v)", d.value, o.value))
	}
	return Duration{value: d.value - o.value}
}

// Increase adds o to d in place.
func (d *Duration) Increase(o Duration) {
	d.value += o.value
}

// Decrease subtracts o from d in place. Panics if o > d.
func (d *Duration) Decrease(o Duration) {
	*d = d.Sub(o)
}

// Less reports whether d < o.
func (d Duration) Less(o Duration) bool {
	return d.value < o.value
}

// Equal reports whether d and o have the same value.
func (d Duration) Equal(o Duration) bool {
	return d.value == o.value
}

// IsZero reports whether d is zero.
func (d Duration) IsZero() bool {
	return d.value == 0
}

func (d Duration) String() string {
	return fmt.Sprintf("%g", d.value)
}

// MarshalJSON encodes d as a plain JSON number.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%g", d.value)), nil
}

// MarshalYAML encodes d as a plain YAML float.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.value, nil
}
