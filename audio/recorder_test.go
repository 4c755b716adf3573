package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRecorderRoundTrip(t *testing.T) {
	ctx := NewFakeContext(FormatF32)
	rec := NewRecorder(ctx, nil)
	path := filepath.Join(t.TempDir(), "rec.wav")

	if err := rec.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	input := make([]float32, 1000)
	for i := range input {
		input[i] = float32(math.Sin(float64(i) / 20))
	}
	ctx.Last().Feed(f32Block(input...))

	got, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got != path {
		t.Errorf("Stop path = %q, want %q", got, path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(buf.Data) != len(input) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(input))
	}
	for i, s := range buf.Data {
		ref := float64(input[i]) * maxS16
		if diff := math.Abs(float64(s) - ref); diff > 1 {
			t.Fatalf("sample %d = %d, reference %.2f, diff %.2f", i, s, ref, diff)
		}
	}
}

func TestRecorderStopIdempotent(t *testing.T) {
	ctx := NewFakeContext(FormatS16)
	rec := NewRecorder(ctx, nil)
	path := filepath.Join(t.TempDir(), "rec.wav")

	if err := rec.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := rec.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if _, err := rec.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("second Stop = %v, want ErrNotRecording", err)
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	rec := NewRecorder(NewFakeContext(FormatS16), nil)
	if _, err := rec.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop = %v, want ErrNotRecording", err)
	}
}

func TestRecorderSingleSession(t *testing.T) {
	ctx := NewFakeContext(FormatS16)
	rec := NewRecorder(ctx, nil)
	dir := t.TempDir()

	if err := rec.Start(filepath.Join(dir, "a.wav")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rec.Start(filepath.Join(dir, "b.wav")); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second Start = %v, want ErrAlreadyRecording", err)
	}
	if _, err := rec.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRecorderMeterTracksCapture(t *testing.T) {
	ctx := NewFakeContext(FormatS16)
	rec := NewRecorder(ctx, nil)
	path := filepath.Join(t.TempDir(), "rec.wav")

	if err := rec.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx.Last().Feed(s16Block(32767, -32768, 32767, -32768))
	if v := rec.Meter().Load(); v < MeterScale-5 {
		t.Errorf("meter after full-scale block = %d, want ~%d", v, MeterScale)
	}

	if _, err := rec.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if v := rec.Meter().Load(); v != 0 {
		t.Errorf("meter after stop = %d, want 0", v)
	}
}

func TestRecorderDiscardsAfterStopFlag(t *testing.T) {
	ctx := NewFakeContext(FormatS16)
	rec := NewRecorder(ctx, nil)
	path := filepath.Join(t.TempDir(), "rec.wav")

	if err := rec.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap := ctx.Last()
	cap.Feed(s16Block(1, 2, 3, 4))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := rec.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}()
	<-done

	// A straggler block after finalize must be discarded, not crash.
	cap.Feed(s16Block(5, 6))

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(buf.Data) != 4 {
		t.Errorf("decoded %d samples, want 4", len(buf.Data))
	}
}

func TestRecorderStartFailureCleansUp(t *testing.T) {
	ctx := NewFakeContext(FormatS16)
	ctx.StartErr = errors.New("stream refused")
	rec := NewRecorder(ctx, nil)
	path := filepath.Join(t.TempDir(), "rec.wav")

	if err := rec.Start(path); err == nil {
		t.Fatal("Start succeeded, want error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected recording file to be removed after failed start")
	}
	if rec.IsRecording() {
		t.Error("recorder should not report an open session")
	}
}
