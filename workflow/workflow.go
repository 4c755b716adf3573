// Package workflow runs the post-capture dictation pipeline: transcribe,
// clean up, detect voice commands, persist, deliver.
package workflow

import (
	"context"
	"fmt"
	"os"
	"time"

	"murmur/cleanup"
	"murmur/history"
	"murmur/log"
	"murmur/transcriber"
)

// Store is the slice of the history archive the pipeline writes to.
type Store interface {
	Append(history.Record) (uint64, error)
}

// Deliverer hands finished text to the user: clipboard copy always,
// paste keystrokes when configured.
type Deliverer interface {
	Copy(text string) error
	Paste() error
	PasteAndSubmit() error
}

// Completer is notified when the pipeline finishes, success or not.
type Completer interface {
	Complete()
}

type Config struct {
	Language            string
	RecognizePressEnter bool
	AutoPaste           bool
	AutoPasteAndEnter   bool
}

// Outcome reports what one pipeline run produced. Err is fatal (no text
// was obtained); Soft collects failures the run survived.
type Outcome struct {
	Raw     string
	Cleaned string // empty unless cleanup ran and succeeded
	Final   string // what was delivered, after command stripping
	Submit  bool
	Err     error
	Soft    []error
}

// Orchestrator owns one dictation pipeline. A nil cleaner disables
// post-processing, a nil store disables persistence; neither is an
// error.
type Orchestrator struct {
	trans   transcriber.Transcriber
	cleaner cleanup.Cleaner
	store   Store
	deliver Deliverer
	sess    Completer
	cfg     Config
}

func New(trans transcriber.Transcriber, cleaner cleanup.Cleaner, store Store, deliver Deliverer, sess Completer, cfg Config) *Orchestrator {
	return &Orchestrator{
		trans:   trans,
		cleaner: cleaner,
		store:   store,
		deliver: deliver,
		sess:    sess,
		cfg:     cfg,
	}
}

// Run processes one finished recording. The temp audio file is removed
// and the session completed no matter which stages fail.
func (o *Orchestrator) Run(ctx context.Context, path string, dur time.Duration) (out Outcome) {
	started := time.Now()
	defer o.sess.Complete()
	defer os.Remove(path)

	transcribeStart := time.Now()
	raw, err := o.trans.Transcribe(ctx, path)
	if err != nil {
		log.Errorf("transcription error: %v", err)
		out.Err = err
		return out
	}
	transcribeMs := float64(time.Since(transcribeStart).Milliseconds())
	out.Raw = raw
	log.TranscriptionText(raw)

	final := raw
	var cleanupMs float64
	if o.cleaner != nil && raw != "" {
		cleanupStart := time.Now()
		cleaned, err := o.cleaner.Process(ctx, raw)
		cleanupMs = float64(time.Since(cleanupStart).Milliseconds())
		if err != nil {
			// Raw transcript still gets delivered.
			log.Warnf("cleanup failed, using raw transcript: %v", err)
			out.Soft = append(out.Soft, fmt.Errorf("cleanup: %w", err))
		} else {
			out.Cleaned = cleaned
			final = cleaned
		}
	}

	var submit bool
	if o.cfg.RecognizePressEnter {
		final, submit = DetectSubmitCommand(final)
	}
	out.Final = final
	out.Submit = submit

	if o.store != nil {
		_, err := o.store.Append(history.Record{
			Text:          raw,
			ProcessedText: out.Cleaned,
			Language:      o.cfg.Language,
			DurationMS:    dur.Milliseconds(),
		})
		if err != nil {
			log.Errorf("history append failed: %v", err)
			out.Soft = append(out.Soft, fmt.Errorf("history: %w", err))
		}
	}

	o.deliverText(final, submit, &out)

	log.Dictation(log.DictationMetrics{
		AudioLengthS:    dur.Seconds(),
		TranscribeMs:    transcribeMs,
		CleanupMs:       cleanupMs,
		TotalMs:         float64(time.Since(started).Milliseconds()),
		TranscriptChars: len(final),
		Cleaned:         out.Cleaned != "",
		Submit:          submit,
	}, o.trans.Name())

	return out
}

func (o *Orchestrator) deliverText(final string, submit bool, out *Outcome) {
	if final == "" {
		return
	}
	if err := o.deliver.Copy(final); err != nil {
		log.Errorf("clipboard copy failed: %v", err)
		out.Soft = append(out.Soft, fmt.Errorf("clipboard: %w", err))
		return
	}

	switch {
	case o.cfg.AutoPasteAndEnter || (submit && o.cfg.AutoPaste):
		if err := o.deliver.PasteAndSubmit(); err != nil {
			log.Warnf("paste-and-enter failed (text is on the clipboard): %v", err)
			out.Soft = append(out.Soft, fmt.Errorf("paste: %w", err))
		}
	case o.cfg.AutoPaste:
		if err := o.deliver.Paste(); err != nil {
			log.Warnf("paste failed (text is on the clipboard): %v", err)
			out.Soft = append(out.Soft, fmt.Errorf("paste: %w", err))
		}
	}
}
