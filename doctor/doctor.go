// Package doctor runs interactive environment diagnostics: input
// devices, microphone capture, whisper-cli, and clipboard output.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"murmur/audio"
	"murmur/clipboard"
	"murmur/config"
	"murmur/hotkey"
	"murmur/transcriber"
)

// Run executes the diagnostic checks and returns an exit code (0=all
// pass, 1=any fail).
func Run(cfg *config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("murmur doctor - interactive system diagnostics")
	fmt.Println("==============================================")

	allPass := true

	if !checkTrigger(cfg) {
		allPass = false
	}

	var wavPath string
	if allPass {
		var ok bool
		wavPath, ok = checkMicrophone()
		if !ok {
			allPass = false
		}
	}
	if wavPath != "" {
		defer os.Remove(wavPath)
	}

	if allPass && !checkWhisper(cfg, wavPath) {
		allPass = false
	}
	if allPass && !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkTrigger(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[1/4] Push-to-talk trigger")

	msg, err := hotkey.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  %s\n", msg)

	var src hotkey.Source
	if cfg.Trigger == config.TriggerModifierTap {
		fmt.Println("Hold the trigger modifier key...")
		src = hotkey.NewModifierTap(0)
	} else {
		fmt.Println("Press Ctrl+Shift+Space...")
		src = hotkey.NewCombo()
	}
	if err := src.Start(); err != nil {
		fmt.Printf("  FAIL: could not start trigger listener: %v\n", err)
		return false
	}
	defer src.Stop()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-src.Events():
			if ev.Kind == hotkey.Pressed {
				fmt.Println("  PASS: trigger detected")
				// Drain the release so it cannot confuse later checks.
				select {
				case <-src.Events():
				case <-time.After(5 * time.Second):
				}
				resetTerminal()
				return true
			}
		case <-deadline:
			fmt.Println("  FAIL: timeout waiting for trigger")
			return false
		}
	}
}

func checkMicrophone() (string, bool) {
	fmt.Println()
	fmt.Println("[2/4] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return "", false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return "", false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return "", false
	}
	fmt.Printf("  %d capture device(s) found\n", len(devices))

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	rec := audio.NewRecorder(ctx, nil)
	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("murmur_doctor_%d.wav", time.Now().Unix()))
	if err := rec.Start(wavPath); err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return "", false
	}

	var peak uint32
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if lvl := rec.Meter().Load(); lvl > peak {
			peak = lvl
		}
	}

	if _, err := rec.Stop(); err != nil {
		fmt.Printf("  FAIL: finalize error: %v\n", err)
		return "", false
	}

	info, err := os.Stat(wavPath)
	if err != nil || info.Size() == 0 {
		fmt.Println("  FAIL: no audio captured")
		return "", false
	}

	fmt.Printf("  PASS: recorded %.1f KB (peak level %d/1000)\n", float64(info.Size())/1024, peak)
	if peak == 0 {
		fmt.Println("  WARN: microphone picked up only silence")
	}
	return wavPath, true
}

func checkWhisper(cfg *config.Config, wavPath string) bool {
	fmt.Println()
	fmt.Println("[3/4] whisper-cli transcription")

	bin, err := transcriber.ResolveCLI(cfg.WhisperCLIPath)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  whisper-cli: %s\n", bin)

	if wavPath == "" {
		fmt.Println("  SKIP: no recording to transcribe")
		return true
	}

	w := transcriber.NewWhisper(transcriber.WhisperConfig{
		CLIPath:   cfg.WhisperCLIPath,
		ModelPath: cfg.WhisperModelPath,
		Language:  cfg.Language,
	})
	tctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("  transcribing...")
	text, err := w.Transcribe(tctx, wavPath)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	if strings.TrimSpace(text) == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("  PASS: %s\n", text)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/4] Clipboard and paste output")

	probe := fmt.Sprintf("murmur-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Copy(probe); err != nil {
		fmt.Printf("  FAIL: clipboard copy: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil || got != probe {
		fmt.Printf("  FAIL: clipboard read back mismatch (%v)\n", err)
		return false
	}
	fmt.Println("  clipboard round trip OK")

	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		printPasteHint()
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}
