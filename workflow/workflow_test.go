package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"murmur/cleanup"
	"murmur/history"
	"murmur/transcriber"
)

type fakeStore struct {
	recs []history.Record
	err  error
}

func (f *fakeStore) Append(rec history.Record) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.recs = append(f.recs, rec)
	return uint64(len(f.recs)), nil
}

type fakeDeliverer struct {
	copied       []string
	pastes       int
	pasteSubmits int
	copyErr      error
	pasteErr     error
}

func (f *fakeDeliverer) Copy(text string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copied = append(f.copied, text)
	return nil
}

func (f *fakeDeliverer) Paste() error {
	if f.pasteErr != nil {
		return f.pasteErr
	}
	f.pastes++
	return nil
}

func (f *fakeDeliverer) PasteAndSubmit() error {
	if f.pasteErr != nil {
		return f.pasteErr
	}
	f.pasteSubmits++
	return nil
}

type fakeCompleter struct {
	completions int
}

func (f *fakeCompleter) Complete() { f.completions++ }

func tempWav(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunHappyPath(t *testing.T) {
	store := &fakeStore{}
	deliver := &fakeDeliverer{}
	comp := &fakeCompleter{}
	o := New(transcriber.NewFake("hello world", nil), nil, store, deliver, comp,
		Config{Language: "en", RecognizePressEnter: true})

	path := tempWav(t)
	out := o.Run(context.Background(), path, 2*time.Second)

	if out.Err != nil {
		t.Fatal(out.Err)
	}
	if out.Raw != "hello world" || out.Final != "hello world" || out.Submit {
		t.Errorf("outcome = %+v", out)
	}
	if len(store.recs) != 1 {
		t.Fatalf("got %d records, want 1", len(store.recs))
	}
	rec := store.recs[0]
	if rec.Text != "hello world" || rec.ProcessedText != "" || rec.Language != "en" || rec.DurationMS != 2000 {
		t.Errorf("record = %+v", rec)
	}
	if len(deliver.copied) != 1 || deliver.copied[0] != "hello world" {
		t.Errorf("copied = %v", deliver.copied)
	}
	if deliver.pastes != 0 || deliver.pasteSubmits != 0 {
		t.Error("paste should be off by default")
	}
	if comp.completions != 1 {
		t.Errorf("completions = %d", comp.completions)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp audio file not removed")
	}
}

func TestRunCleanupApplied(t *testing.T) {
	store := &fakeStore{}
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("hello world", nil), cleanup.NewFake("Hello, world.", nil),
		store, deliver, &fakeCompleter{}, Config{RecognizePressEnter: true})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if out.Cleaned != "Hello, world." || out.Final != "Hello, world." {
		t.Errorf("outcome = %+v", out)
	}
	if store.recs[0].Text != "hello world" || store.recs[0].ProcessedText != "Hello, world." {
		t.Errorf("record = %+v", store.recs[0])
	}
	if deliver.copied[0] != "Hello, world." {
		t.Errorf("copied = %v", deliver.copied)
	}
}

func TestRunCleanupFailureDegradesToRaw(t *testing.T) {
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("hello world", nil), cleanup.NewFake("", errors.New("api down")),
		&fakeStore{}, deliver, &fakeCompleter{}, Config{RecognizePressEnter: true})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if out.Err != nil {
		t.Fatalf("cleanup failure must not be fatal: %v", out.Err)
	}
	if out.Final != "hello world" || out.Cleaned != "" {
		t.Errorf("outcome = %+v", out)
	}
	if len(out.Soft) != 1 {
		t.Errorf("soft errors = %v", out.Soft)
	}
	if len(deliver.copied) != 1 || deliver.copied[0] != "hello world" {
		t.Errorf("copied = %v", deliver.copied)
	}
}

func TestRunSubmitPhraseTriggersPasteAndSubmit(t *testing.T) {
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("please call mom and press enter", nil), nil,
		&fakeStore{}, deliver, &fakeCompleter{},
		Config{RecognizePressEnter: true, AutoPaste: true})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if !out.Submit || out.Final != "please call mom" {
		t.Errorf("outcome = %+v", out)
	}
	if deliver.copied[0] != "please call mom" {
		t.Errorf("copied = %v", deliver.copied)
	}
	if deliver.pasteSubmits != 1 || deliver.pastes != 0 {
		t.Errorf("pasteSubmits = %d, pastes = %d", deliver.pasteSubmits, deliver.pastes)
	}
}

func TestRunSubmitPhraseWithoutAutoPasteOnlyCopies(t *testing.T) {
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("ok and press enter", nil), nil,
		&fakeStore{}, deliver, &fakeCompleter{}, Config{RecognizePressEnter: true})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if !out.Submit {
		t.Error("submit flag lost")
	}
	if deliver.pastes != 0 || deliver.pasteSubmits != 0 {
		t.Error("no paste should happen without auto_paste")
	}
	if len(deliver.copied) != 1 {
		t.Errorf("copied = %v", deliver.copied)
	}
}

func TestRunAutoPasteAndEnterAlwaysSubmits(t *testing.T) {
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("just some words", nil), nil,
		&fakeStore{}, deliver, &fakeCompleter{},
		Config{AutoPasteAndEnter: true})

	o.Run(context.Background(), tempWav(t), time.Second)

	if deliver.pasteSubmits != 1 {
		t.Errorf("pasteSubmits = %d, want 1", deliver.pasteSubmits)
	}
}

func TestRunDetectionDisabled(t *testing.T) {
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("call mom and press enter", nil), nil,
		&fakeStore{}, deliver, &fakeCompleter{}, Config{})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if out.Submit || out.Final != "call mom and press enter" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRunTranscribeErrorStillCleansUp(t *testing.T) {
	deliver := &fakeDeliverer{}
	comp := &fakeCompleter{}
	store := &fakeStore{}
	o := New(transcriber.NewFake("", errors.New("whisper missing")), nil,
		store, deliver, comp, Config{})

	path := tempWav(t)
	out := o.Run(context.Background(), path, time.Second)

	if out.Err == nil {
		t.Fatal("expected fatal error")
	}
	if len(deliver.copied) != 0 || len(store.recs) != 0 {
		t.Error("failed run must not deliver or persist")
	}
	if comp.completions != 1 {
		t.Error("session not completed after failure")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp audio file not removed after failure")
	}
}

func TestRunEmptyTranscriptSkipsDelivery(t *testing.T) {
	deliver := &fakeDeliverer{}
	store := &fakeStore{}
	o := New(transcriber.NewFake("", nil), nil, store, deliver, &fakeCompleter{},
		Config{AutoPaste: true})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if out.Err != nil {
		t.Fatal(out.Err)
	}
	if len(deliver.copied) != 0 || deliver.pastes != 0 {
		t.Error("empty transcript must not touch the clipboard")
	}
	if len(store.recs) != 1 {
		t.Error("empty transcript is still recorded")
	}
}

func TestRunStoreFailureIsSoft(t *testing.T) {
	deliver := &fakeDeliverer{}
	o := New(transcriber.NewFake("hello", nil), nil,
		&fakeStore{err: errors.New("disk full")}, deliver, &fakeCompleter{}, Config{})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if out.Err != nil {
		t.Fatalf("store failure must not be fatal: %v", out.Err)
	}
	if len(out.Soft) != 1 {
		t.Errorf("soft errors = %v", out.Soft)
	}
	if len(deliver.copied) != 1 {
		t.Error("delivery must proceed despite store failure")
	}
}

func TestRunCopyFailureSkipsPaste(t *testing.T) {
	deliver := &fakeDeliverer{copyErr: errors.New("no display")}
	o := New(transcriber.NewFake("hello", nil), nil,
		&fakeStore{}, deliver, &fakeCompleter{}, Config{AutoPaste: true})

	out := o.Run(context.Background(), tempWav(t), time.Second)

	if len(out.Soft) != 1 {
		t.Errorf("soft errors = %v", out.Soft)
	}
	if deliver.pastes != 0 {
		t.Error("paste attempted after failed copy")
	}
}
