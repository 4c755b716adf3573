// Package config handles the murmur settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "murmur"
	configFileName = "settings.json"
)

// Trigger selects which key listener drives push-to-talk.
const (
	TriggerCombo       = "combo"        // Ctrl+Shift+Space
	TriggerModifierTap = "modifier-tap" // hold a single modifier key
)

// Config represents the persisted user settings. API keys are not stored
// here; they come from the environment.
type Config struct {
	Trigger  string `json:"trigger"`
	Language string `json:"language,omitempty"`

	WhisperCLIPath   string `json:"whisper_cli_path,omitempty"`
	WhisperModelPath string `json:"whisper_model_path,omitempty"`

	AutoPaste           bool `json:"auto_paste"`
	AutoPasteAndEnter   bool `json:"auto_paste_and_enter"`
	RecognizePressEnter bool `json:"recognize_press_enter"`

	CleanupEnabled bool   `json:"cleanup_enabled"`
	CleanupModel   string `json:"cleanup_model,omitempty"`
	SystemPrompt   string `json:"system_prompt,omitempty"`

	PreferredDevice string `json:"preferred_device,omitempty"`
	HistoryDir      string `json:"history_dir,omitempty"`
}

// Load reads the settings file from the user config dir, falling back to
// defaults when it does not exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the settings to the user config dir.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.SaveTo(path)
}

// SaveTo persists the settings to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects settings no component can act on.
func (c *Config) Validate() error {
	switch c.Trigger {
	case TriggerCombo, TriggerModifierTap:
	default:
		return fmt.Errorf("unknown trigger %q (want %q or %q)", c.Trigger, TriggerCombo, TriggerModifierTap)
	}
	return nil
}

// Path returns the settings file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// HistoryPath resolves where the transcription database lives.
func (c *Config) HistoryPath() (string, error) {
	if c.HistoryDir != "" {
		return c.HistoryDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, "history"), nil
}

// Default mirrors the out-of-the-box behavior: fully local transcription,
// clipboard copy only, voice command detection on.
func Default() *Config {
	return &Config{
		Trigger:             TriggerCombo,
		Language:            "en",
		AutoPaste:           false,
		AutoPasteAndEnter:   false,
		RecognizePressEnter: true,
		CleanupEnabled:      false,
		CleanupModel:        "gpt-4o-mini",
	}
}
