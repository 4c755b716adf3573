package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/cleanup"
	"murmur/clipboard"
	"murmur/config"
	"murmur/doctor"
	"murmur/history"
	"murmur/hotkey"
	"murmur/log"
	"murmur/overlay"
	"murmur/session"
	"murmur/shutdown"
	"murmur/transcriber"
	"murmur/workflow"
)

var version = "dev"

// systemDeliverer routes pipeline output through the real clipboard.
type systemDeliverer struct{}

func (systemDeliverer) Copy(text string) error { return clipboard.Copy(text) }
func (systemDeliverer) Paste() error           { return clipboard.Paste() }
func (systemDeliverer) PasteAndSubmit() error  { return clipboard.PasteAndSubmit() }

// uiSession wraps the state machine with audio cues and the overlay
// meter, so the aggregator stays feedback-agnostic.
type uiSession struct {
	*session.Session
	bridge *overlay.Bridge
}

func (u *uiSession) RequestStart() (session.State, error) {
	st, err := u.Session.RequestStart()
	if err == nil && st == session.Recording {
		beep.PlayStart()
		u.bridge.Start(overlay.Recording)
	}
	return st, err
}

func (u *uiSession) RequestStop() (session.State, error) {
	st, err := u.Session.RequestStop()
	switch {
	case err != nil:
		// Capture teardown failed; no pipeline will run.
		u.bridge.Stop()
		beep.PlayError()
	case st == session.Processing:
		beep.PlayStop()
		u.bridge.SetMode(overlay.Processing)
	}
	return st, err
}

func main() {
	configFlag := flag.String("config", "", "Settings file path (default: OS config dir)")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g., en, es, fr). Empty = use settings")
	triggerFlag := flag.String("trigger", "", "Push-to-talk trigger: combo or modifier-tap")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	nobeepFlag := flag.Bool("nobeep", false, "Disable audio cues")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	historyFlag := flag.Int("history", 0, "Print N most recent transcriptions and exit")
	searchFlag := flag.String("search", "", "Search transcription history and exit")
	deleteFlag := flag.Uint64("delete", 0, "Delete a transcription by id and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *triggerFlag != "" {
		cfg.Trigger = *triggerFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *nobeepFlag {
		beep.Disable()
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}
	if *historyFlag > 0 || *searchFlag != "" || *deleteFlag > 0 {
		os.Exit(runHistory(cfg, *historyFlag, *searchFlag, *deleteFlag))
	}

	run(cfg, *setupFlag, *deviceFlag)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func run(cfg *config.Config, setup bool, deviceName string) {
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if cfg.AutoPaste || cfg.AutoPasteAndEnter {
		if err := clipboard.Init(); err != nil {
			fmt.Printf("Warning: paste init failed: %v\n", err)
		}
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	if deviceName == "" {
		deviceName = cfg.PreferredDevice
	}
	var selectedDevice *audio.DeviceInfo
	if deviceName != "" {
		if devices, err := actx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == deviceName {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			log.Warnf("device not found: %s", deviceName)
			fmt.Printf("Warning: device %q not found, using default\n", deviceName)
		}
	} else if setup {
		selectedDevice, err = audio.SelectDevice(actx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	rec := audio.NewRecorder(actx, selectedDevice)

	whisper := transcriber.NewWhisper(transcriber.WhisperConfig{
		CLIPath:   cfg.WhisperCLIPath,
		ModelPath: cfg.WhisperModelPath,
		Language:  cfg.Language,
	})

	var cleaner cleanup.Cleaner
	if cfg.CleanupEnabled {
		c, err := cleanup.NewOpenAI(cleanup.Config{
			APIKey:       os.Getenv("OPENAI_API_KEY"),
			Model:        cfg.CleanupModel,
			SystemPrompt: cfg.SystemPrompt,
		})
		if err != nil {
			log.Warnf("cleanup disabled: %v", err)
			fmt.Printf("Warning: cleanup disabled: %v\n", err)
		} else {
			cleaner = c
		}
	}

	var store workflow.Store
	var histStore *history.Store
	if histPath, err := cfg.HistoryPath(); err == nil {
		histStore, err = history.Open(histPath)
		if err != nil {
			log.Warnf("history store unavailable: %v", err)
			fmt.Printf("Warning: history disabled: %v\n", err)
		} else {
			store = histStore
			defer histStore.Close()
		}
	}

	bridge := overlay.NewBridge(rec.Meter(), overlay.NewConsole(os.Stdout))

	var orch *workflow.Orchestrator
	var dictations atomic.Int64
	handler := func(path string, dur time.Duration) {
		out := orch.Run(context.Background(), path, dur)
		bridge.Stop()
		if out.Err != nil {
			beep.PlayError()
			fmt.Printf("\rError: %v\n", out.Err)
			return
		}
		dictations.Add(1)
		if out.Final != "" {
			fmt.Printf("\r» %s\n", out.Final)
		}
	}

	sess := session.New(rec, handler)
	ui := &uiSession{Session: sess, bridge: bridge}
	orch = workflow.New(whisper, cleaner, store, systemDeliverer{}, sess, workflow.Config{
		Language:            cfg.Language,
		RecognizePressEnter: cfg.RecognizePressEnter,
		AutoPaste:           cfg.AutoPaste,
		AutoPasteAndEnter:   cfg.AutoPasteAndEnter,
	})

	var src hotkey.Source
	var triggerHint string
	if cfg.Trigger == config.TriggerModifierTap {
		src = hotkey.NewModifierTap(0)
		triggerHint = "hold Right Ctrl to dictate"
	} else {
		src = hotkey.NewCombo()
		triggerHint = "hold Ctrl+Shift+Space to dictate"
	}

	agg := hotkey.NewAggregator(src, ui, hotkey.DefaultPollInterval)
	if err := agg.Start(); err != nil {
		log.Errorf("trigger register error: %v", err)
		fmt.Printf("Error registering push-to-talk trigger: %v\n", err)
		os.Exit(1)
	}
	defer agg.Stop()

	beep.Init()
	log.SessionStart(whisper.Name(), cfg.Trigger)

	fmt.Printf("murmur %s — %s\n", version, triggerHint)
	if selectedDevice != nil {
		fmt.Printf("microphone: %s\n", selectedDevice.Name)
	}

	shutdown.Wait()

	fmt.Println("\nshutting down")
	bridge.Stop()
	log.SessionEnd(int(dictations.Load()))
}

func runHistory(cfg *config.Config, recent int, search string, deleteID uint64) int {
	histPath, err := cfg.HistoryPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	store, err := history.Open(histPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		return 1
	}
	defer store.Close()

	if deleteID > 0 {
		if err := store.Delete(deleteID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("deleted record %d\n", deleteID)
		return 0
	}

	var records []history.Record
	if search != "" {
		records, err = store.Search(search)
	} else {
		records, err = store.Recent(recent)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Println("no transcriptions found")
		return 0
	}

	for _, rec := range records {
		printRecord(rec)
	}
	return 0
}

func printRecord(rec history.Record) {
	marker := " "
	if rec.ProcessedText != "" {
		marker = "*"
	}
	fmt.Printf("%5d %s %s %4.1fs  %s\n",
		rec.ID,
		rec.CreatedAt.Local().Format("2006-01-02 15:04"),
		marker,
		float64(rec.DurationMS)/1000,
		rec.Final())
}
