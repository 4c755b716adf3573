package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrFinalize = errors.New("wav finalize failed")

const (
	// DefaultSampleRate is the preferred capture rate. The device may
	// negotiate a different one; the writer follows the device.
	DefaultSampleRate = 16000
	DefaultChannels   = 1

	// graceWindow is how long Stop waits after clearing the running
	// flag so an in-flight callback block can land before finalize.
	graceWindow = 200 * time.Millisecond
)

// Recorder owns at most one open capture session and its WAV writer.
// Start and Stop are safe to call from any goroutine; the capture
// callback only ever touches the session under its block mutex.
type Recorder struct {
	ctx    Context
	device *DeviceInfo
	meter  Meter

	mu   sync.Mutex
	sess *captureSession
}

func NewRecorder(ctx Context, device *DeviceInfo) *Recorder {
	return &Recorder{ctx: ctx, device: device}
}

// Meter returns the shared amplitude cell. Valid for the recorder's
// whole lifetime; reads never block.
func (r *Recorder) Meter() *Meter {
	return &r.meter
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess != nil
}

// Start opens the input device and begins writing 16-bit PCM to a WAV
// file at path. It returns once the stream is running; capture
// continues asynchronously until Stop.
func (r *Recorder) Start(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		return ErrAlreadyRecording
	}

	capture, err := r.ctx.NewCapture(r.device, CaptureConfig{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
	})
	if err != nil {
		return err
	}
	cfg := capture.Config()

	f, err := os.Create(path)
	if err != nil {
		capture.Close()
		return fmt.Errorf("creating recording file: %w", err)
	}

	s := &captureSession{
		path:    path,
		capture: capture,
		file:    f,
		enc:     wav.NewEncoder(f, int(cfg.SampleRate), 16, int(cfg.Channels), 1),
		format:  cfg.Format,
		bufFmt: &gaudio.Format{
			NumChannels: int(cfg.Channels),
			SampleRate:  int(cfg.SampleRate),
		},
		running: true,
	}
	capture.SetCallback(s.onBlock(&r.meter))

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		f.Close()
		os.Remove(path)
		return fmt.Errorf("starting capture stream: %w", err)
	}

	r.sess = s
	return nil
}

// Stop clears the running flag, zeroes the meter, waits the grace
// window, finalizes the WAV file (header patched with the exact frame
// count) and returns its path. Calling Stop with no open session
// returns ErrNotRecording; the writer is never closed twice.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	s := r.sess
	r.sess = nil
	r.mu.Unlock()
	if s == nil {
		return "", ErrNotRecording
	}

	s.blockMu.Lock()
	s.running = false
	s.blockMu.Unlock()
	r.meter.Reset()

	time.Sleep(graceWindow)

	s.capture.Stop()
	s.capture.ClearCallback()
	s.capture.Close()

	s.blockMu.Lock()
	defer s.blockMu.Unlock()
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return "", fmt.Errorf("%w: %v", ErrFinalize, err)
	}
	if err := s.file.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFinalize, err)
	}
	if s.writeErr != nil {
		return "", fmt.Errorf("%w: mid-capture write: %v", ErrFinalize, s.writeErr)
	}
	return s.path, nil
}

type captureSession struct {
	path    string
	capture CaptureDevice
	file    *os.File
	enc     *wav.Encoder
	format  SampleFormat
	bufFmt  *gaudio.Format

	blockMu  sync.Mutex // shared between callback and Stop
	running  bool
	writeErr error
	scratch  []int
}

// onBlock returns the capture callback. The block mutex is held only
// for the duration of one block's convert-and-append, never across
// anything that blocks.
func (s *captureSession) onBlock(m *Meter) DataCallback {
	return func(data []byte, _ uint32) {
		s.blockMu.Lock()
		defer s.blockMu.Unlock()
		if !s.running || s.writeErr != nil {
			return
		}
		s.scratch = DecodeBlock(s.format, data, s.scratch[:0])
		if len(s.scratch) == 0 {
			return
		}
		buf := gaudio.IntBuffer{
			Format:         s.bufFmt,
			SourceBitDepth: 16,
			Data:           s.scratch,
		}
		if err := s.enc.Write(&buf); err != nil {
			s.writeErr = err
			return
		}
		m.Store(BlockAmplitude(s.scratch))
	}
}
