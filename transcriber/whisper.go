package transcriber

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"murmur/log"
)

const modelFileName = "ggml-base.bin"

// cliFallbacks are checked when whisper-cli is not on PATH.
var cliFallbacks = []string{
	"/opt/homebrew/bin/whisper-cli",
	"/usr/local/bin/whisper-cli",
	"/usr/bin/whisper-cli",
}

// WhisperConfig controls how the whisper-cli subprocess is located and
// invoked. Empty fields fall back to discovery.
type WhisperConfig struct {
	CLIPath   string // binary override, ~ expanded
	ModelPath string // model override, ~ expanded
	Language  string // empty means autodetect
}

// Whisper shells out to whisper-cli for fully local transcription.
type Whisper struct {
	cfg WhisperConfig
}

func NewWhisper(cfg WhisperConfig) *Whisper {
	return &Whisper{cfg: cfg}
}

func (w *Whisper) Name() string { return "whisper-cli" }

func (w *Whisper) SetLanguage(lang string) { w.cfg.Language = lang }

func (w *Whisper) GetLanguage() string { return w.cfg.Language }

func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (string, error) {
	bin, err := ResolveCLI(w.cfg.CLIPath)
	if err != nil {
		return "", err
	}
	model, err := findModel(w.cfg.ModelPath)
	if err != nil {
		return "", err
	}

	args := []string{"-m", model, "-f", wavPath}
	if w.cfg.Language != "" {
		args = append(args, "-l", w.cfg.Language)
	}
	args = append(args, "-otxt")

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Infof("whisper-cli: %s %s", bin, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("whisper-cli failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	// whisper-cli -otxt writes next to the input, so foo.wav produces
	// foo.wav.txt. Older builds print to stdout instead.
	outTxt := wavPath + ".txt"
	if data, err := os.ReadFile(outTxt); err == nil {
		os.Remove(outTxt)
		return strings.TrimSpace(string(data)), nil
	}

	log.Warn("whisper-cli output file missing, using stdout")
	return strings.TrimSpace(stdout.String()), nil
}

// ResolveCLI locates the whisper-cli binary. An override must resolve; an
// empty override falls back to PATH and then well-known install dirs.
func ResolveCLI(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		candidate := ExpandHome(override)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if !strings.ContainsRune(override, os.PathSeparator) && !strings.Contains(override, "/") {
			if found, err := exec.LookPath(override); err == nil {
				return found, nil
			}
		}
		return "", fmt.Errorf("configured whisper-cli path not found: %s", candidate)
	}

	if found, err := exec.LookPath("whisper-cli"); err == nil {
		return found, nil
	}
	for _, path := range cliFallbacks {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("unable to locate whisper-cli; install it or set whisper_cli_path in settings")
}

func findModel(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		candidate := ExpandHome(override)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		return "", fmt.Errorf("configured whisper model not found: %s", candidate)
	}

	var candidates []string
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "resources", "models", modelFileName))
	}
	if data, err := userDataDir(); err == nil {
		candidates = append(candidates, filepath.Join(data, "models", modelFileName))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("whisper model %s not found; place it under the murmur data directory or set whisper_model_path", modelFileName)
}

func userDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "murmur"), nil
	}
	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		xdgData = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(xdgData, "murmur"), nil
}

// ExpandHome resolves a leading ~ against $HOME.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
