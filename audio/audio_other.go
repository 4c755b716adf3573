//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

// negotiable formats in preference order
var malgoFormats = []struct {
	native malgo.FormatType
	ours   SampleFormat
}{
	{malgo.FormatS16, FormatS16},
	{malgo.FormatF32, FormatF32},
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	var devID *malgo.DeviceID
	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		devID = new(malgo.DeviceID)
		copy(devID[:], idBytes)
	}

	c := &malgoCapture{}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			if cb := c.callback.Load(); cb != nil {
				(*cb)(data, frameCount)
			}
		},
	}

	var lastErr error
	for _, f := range malgoFormats {
		deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
		deviceConfig.Capture.Format = f.native
		deviceConfig.Capture.Channels = config.Channels
		deviceConfig.SampleRate = config.SampleRate
		if devID != nil {
			deviceConfig.Capture.DeviceID = devID.Pointer()
		}

		dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
		if err != nil {
			lastErr = err
			continue
		}
		c.device = dev
		c.config = CaptureConfig{
			SampleRate: config.SampleRate,
			Channels:   config.Channels,
			Format:     f.ours,
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrConfigNegotiation, lastErr)
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	device   *malgo.Device
	config   CaptureConfig
	callback atomic.Pointer[DataCallback]
}

func (c *malgoCapture) Start() error {
	return c.device.Start()
}

func (c *malgoCapture) Stop() {
	c.device.Stop()
}

func (c *malgoCapture) Close() {
	c.device.Uninit()
}

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *malgoCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *malgoCapture) Config() CaptureConfig {
	return c.config
}
