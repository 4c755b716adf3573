// Package audio owns microphone capture: device enumeration, the
// platform capture stream, sample-format conversion to 16-bit signed
// PCM, and the incremental WAV recorder.
package audio

import "errors"

var (
	ErrDeviceUnavailable = errors.New("no usable input device")
	ErrConfigNegotiation = errors.New("no supported capture format")
	ErrAlreadyRecording  = errors.New("capture session already open")
	ErrNotRecording      = errors.New("no recording in progress")
)

// DataCallback receives one block of raw samples in the negotiated
// format. It runs on the capture thread and must not block.
type DataCallback func(data []byte, frameCount uint32)

// SampleFormat identifies the wire format of callback data.
type SampleFormat int

const (
	FormatS16 SampleFormat = iota
	FormatU16
	FormatF32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatS16:
		return "s16"
	case FormatU16:
		return "u16"
	case FormatF32:
		return "f32"
	}
	return "unknown"
}

// BytesPerSample returns the size of one sample in bytes.
func (f SampleFormat) BytesPerSample() int {
	if f == FormatF32 {
		return 4
	}
	return 2
}

// CaptureConfig describes a capture stream. Requested configs carry the
// preferred rate and channel count; the device reports the negotiated
// config including the native sample format.
type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
	Format     SampleFormat
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	// Config reports the negotiated stream parameters.
	Config() CaptureConfig
}
