package config

import "testing"

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want missing key error")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CARTESIA_API_KEY", "")
	t.Setenv("VOICE_LANGUAGE", "")
	t.Setenv("VOICE_RATE", "")
	t.Setenv("CAPTURE_SAMPLE_RATE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Voice.Language != "en" {
		t.Errorf("Voice.Language = %q, want en", cfg.Voice.Language)
	}
	if cfg.Voice.Rate != 0.9 {
		t.Errorf("Voice.Rate = %v, want 0.9", cfg.Voice.Rate)
	}
	if cfg.Capture.SampleRate != 44100 {
		t.Errorf("Capture.SampleRate = %d, want 44100", cfg.Capture.SampleRate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("VOICE_RATE", "1.2")
	t.Setenv("CAPTURE_CHANNELS", "1")
	t.Setenv("VOICE_PITCH", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.Voice.Rate != 1.2 {
		t.Errorf("Voice.Rate = %v, want 1.2", cfg.Voice.Rate)
	}
	if cfg.Capture.Channels != 1 {
		t.Errorf("Capture.Channels = %d, want 1", cfg.Capture.Channels)
	}
	if cfg.Voice.Pitch != 1.0 {
		t.Errorf("Voice.Pitch = %v, want fallback 1.0", cfg.Voice.Pitch)
	}
}
