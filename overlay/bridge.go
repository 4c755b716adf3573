// Package overlay animates a bar meter from the live amplitude while
// recording, and a synthetic sweep while processing.
package overlay

import (
	"math"
	"sync"
	"time"
)

const (
	// BarCount matches the width of the meter widget.
	BarCount = 18

	frameInterval = 16 * time.Millisecond
	phaseStep     = 0.2

	// Below this amplitude the recording animation falls back to idle
	// motion so silence still shows life.
	idleThreshold = 0.08

	barFloor = 0.04
)

type Mode int

const (
	Recording Mode = iota
	Processing
)

// Renderer receives one normalized intensity slice per frame. The slice
// is reused between frames; implementations must not retain it.
type Renderer interface {
	RenderBars(intensities []float64)
	Clear()
}

// Meter is the amplitude source, satisfied by *audio.Meter.
type Meter interface {
	Level() float64
}

// Bridge drives a Renderer at ~60 Hz. Stop joins the animation loop
// before returning, so the renderer is never written after teardown.
type Bridge struct {
	meter    Meter
	renderer Renderer

	mu      sync.Mutex
	mode    Mode
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func NewBridge(meter Meter, renderer Renderer) *Bridge {
	return &Bridge{meter: meter, renderer: renderer}
}

// Start begins animating in the given mode. Starting an already running
// bridge just switches the mode.
func (b *Bridge) Start(mode Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode
	if b.running {
		return
	}
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	b.running = true
	go b.run(b.stop, b.done)
}

// SetMode switches the animation without restarting the loop.
func (b *Bridge) SetMode(mode Mode) {
	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()
}

// Stop halts the animation, waits for the loop to exit and clears the
// renderer.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	stop, done := b.stop, b.done
	b.mu.Unlock()

	close(stop)
	<-done
	b.renderer.Clear()
}

func (b *Bridge) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	phase := 0.0
	bars := make([]float64, BarCount)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			phase += phaseStep
			b.mu.Lock()
			mode := b.mode
			b.mu.Unlock()
			computeBars(bars, phase, b.meter.Level(), mode)
			b.renderer.RenderBars(bars)
		}
	}
}

// computeBars fills dst with per-bar intensities in [0,1].
func computeBars(dst []float64, phase, amplitude float64, mode Mode) {
	center := float64(len(dst)) / 2.0
	for i := range dst {
		dist := math.Abs(float64(i)-center) / center
		if dist > 1 {
			dist = 1
		}

		var v float64
		if mode == Processing {
			sweep := math.Abs(math.Sin(phase + float64(i)*0.4))
			v = barFloor + sweep*(1-barFloor)*0.7
		} else {
			wave := (math.Sin(phase+float64(i)*0.5) + 1) * 0.5
			if amplitude > idleThreshold {
				centerBoost := 1 - dist*0.4
				responsive := amplitude * centerBoost * 0.85
				v = barFloor + responsive*(0.4+wave*0.6)
			} else {
				v = barFloor + wave*0.35
			}
		}

		if v > 1 {
			v = 1
		}
		dst[i] = v
	}
}
