package audio

import "sync/atomic"

// MeterScale is the fixed-point range of the amplitude meter: stored
// values span 0..MeterScale, representing 0.0..1.0.
const MeterScale = 1000

// Meter is a single-writer/many-reader amplitude cell. The capture
// callback stores into it; any goroutine may load without blocking.
type Meter struct {
	v atomic.Uint32
}

// Store writes a normalized amplitude. Values outside [0,1] are clamped
// so readers always observe a value in [0,MeterScale].
func (m *Meter) Store(level float64) {
	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	m.v.Store(uint32(level * MeterScale))
}

// Load returns the raw fixed-point value in [0,MeterScale].
func (m *Meter) Load() uint32 {
	return m.v.Load()
}

// Level returns the amplitude as a float in [0,1].
func (m *Meter) Level() float64 {
	return float64(m.v.Load()) / MeterScale
}

func (m *Meter) Reset() {
	m.v.Store(0)
}
