// Package beep plays short synthesized audio cues for recording start,
// recording stop, and pipeline errors.
package beep

import "math"

var disabled bool

// Disable silences all cues, for headless or scripted use.
func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start cue: high pitch, short
	startFreq   = 1000
	startVolume = 0.5
	startDecay  = 60

	// Stop cue: lower pitch, slightly longer
	stopFreq   = 750
	stopVolume = 0.5
	stopDecay  = 40

	// Error cue: low pitch double-beep
	errorFreq   = 320
	errorVolume = 0.6
	errorDecay  = 30
)

// tick synthesizes one decaying sine tone as mono 16-bit samples.
func tick(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

// doubleTick is two ticks separated by silence.
func doubleTick(freq, tickDur, gapDur, volume, decay float64) []int16 {
	one := tick(freq, tickDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(one)*2+len(gap))
	out = append(out, one...)
	out = append(out, gap...)
	out = append(out, one...)
	return out
}

// stereo duplicates mono samples into interleaved stereo.
func stereo(mono []int16) []int16 {
	out := make([]int16, len(mono)*2)
	for i, s := range mono {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

// pcmBytes encodes mono samples as little-endian 16-bit PCM.
func pcmBytes(mono []int16) []byte {
	out := make([]byte, len(mono)*2)
	for i, s := range mono {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
