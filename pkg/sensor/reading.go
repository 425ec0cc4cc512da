// Package sensor holds the value model shared by every analog and inertial
// channel.
package sensor

import "math"

// Reading tracks one channel. Min and Max start at sentinels and only ever
// widen to include observed values.
type Reading struct {
	Current      float64
	Offset       float64
	Min          float64
	Max          float64
	Error        float64
	RatePercent  int
	VoltageMilli int

	// MilliVoltsPerUnit converts Current into VoltageMilli. Zero for
	// channels without an electrical meaning.
	MilliVoltsPerUnit float64
}

// Seeds for the two families of channels.
const (
	// ADCFullScale is the MCP3208 count used as the initial min and max
	// for ADC channels.
	ADCFullScale = 0x0F60

	// InertialMinSeed is the initial minimum of inertial channels, whose
	// maximum starts at zero.
	InertialMinSeed = 0xFFFFFFFF

	// ADCMilliVoltsPerCount assumes a 3.3V reference over 12 bits.
	ADCMilliVoltsPerCount = 3300.0 / 4096
)

func New(min, max, milliVoltsPerUnit float64) *Reading {
	return &Reading{
		Min:               min,
		Max:               max,
		MilliVoltsPerUnit: milliVoltsPerUnit,
	}
}

func NewADC() *Reading {
	return New(ADCFullScale, ADCFullScale, ADCMilliVoltsPerCount)
}

func NewInertial() *Reading {
	return New(InertialMinSeed, 0, 0)
}

// Update applies a freshly decoded value.
func (r *Reading) Update(v float64) {
	r.Current = v
	if v > r.Max {
		r.Max = v
	}
	if v < r.Min {
		r.Min = v
	}
	r.Error = r.Current - r.Offset
	if r.Max != 0 {
		r.RatePercent = int(math.Round(r.Current / r.Max * 100))
	} else {
		r.RatePercent = 0
	}
	r.VoltageMilli = int(math.Round(r.Current * r.MilliVoltsPerUnit))
}

// SetOffset zero-calibrates the channel against its current value.
func (r *Reading) SetOffset() {
	r.Offset = r.Current
	r.Error = 0
}

// Snapshot returns a copy that later updates won't touch.
func (r *Reading) Snapshot() Reading {
	return *r
}
