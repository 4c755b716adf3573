package audio

import "sync"

// FakeContext is a synthetic capture backend for tests. Each NewCapture
// call hands out a FakeCapture in the configured format; blocks are fed
// by the test via Feed.
type FakeContext struct {
	Format     SampleFormat
	NewErr     error // returned from NewCapture when set
	StartErr   error // injected into the capture device when set
	DeviceList []DeviceInfo

	mu   sync.Mutex
	last *FakeCapture
}

func NewFakeContext(format SampleFormat) *FakeContext {
	return &FakeContext{Format: format}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return f.DeviceList, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	c := &FakeCapture{
		startErr: f.StartErr,
		config: CaptureConfig{
			SampleRate: config.SampleRate,
			Channels:   config.Channels,
			Format:     f.Format,
		},
	}
	f.mu.Lock()
	f.last = c
	f.mu.Unlock()
	return c, nil
}

// Last returns the capture device most recently handed out.
func (f *FakeContext) Last() *FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type FakeCapture struct {
	startErr error
	config   CaptureConfig

	mu      sync.Mutex
	cb      DataCallback
	started bool
	stopped bool
}

func (c *FakeCapture) Start() error {
	if c.startErr != nil {
		return c.startErr
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	return nil
}

func (c *FakeCapture) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

func (c *FakeCapture) Close() {}

func (c *FakeCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *FakeCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

func (c *FakeCapture) Config() CaptureConfig { return c.config }

func (c *FakeCapture) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Feed delivers one raw block to the registered callback, the way the
// platform capture thread would.
func (c *FakeCapture) Feed(data []byte) {
	c.mu.Lock()
	cb := c.cb
	c.mu.Unlock()
	if cb != nil {
		cb(data, uint32(len(data)/(c.config.Format.BytesPerSample()*int(c.config.Channels))))
	}
}
