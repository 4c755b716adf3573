package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Trigger != TriggerCombo {
		t.Errorf("trigger = %q", cfg.Trigger)
	}
	if cfg.Language != "en" {
		t.Errorf("language = %q", cfg.Language)
	}
	if !cfg.RecognizePressEnter {
		t.Error("recognize_press_enter should default on")
	}
	if cfg.AutoPaste || cfg.CleanupEnabled {
		t.Error("auto_paste and cleanup should default off")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	cfg := Default()
	cfg.Trigger = TriggerModifierTap
	cfg.Language = "tr"
	cfg.AutoPaste = true
	cfg.CleanupEnabled = true
	cfg.SystemPrompt = "be brief"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Trigger != TriggerModifierTap || got.Language != "tr" || !got.AutoPaste {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.SystemPrompt != "be brief" {
		t.Errorf("system prompt = %q", got.SystemPrompt)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"trigger":"combo","language":"de"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != "de" {
		t.Errorf("language = %q", cfg.Language)
	}
	if !cfg.RecognizePressEnter {
		t.Error("unset recognize_press_enter should keep its default")
	}
}

func TestLoadFromRejectsUnknownTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"trigger":"doubletap"}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if err == nil || !strings.Contains(err.Error(), "doubletap") {
		t.Errorf("got %v, want unknown trigger error", err)
	}
}

func TestLoadFromRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestHistoryPathOverride(t *testing.T) {
	cfg := Default()
	cfg.HistoryDir = "/var/lib/murmur/history"
	got, err := cfg.HistoryPath()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/var/lib/murmur/history" {
		t.Errorf("got %q", got)
	}
}
