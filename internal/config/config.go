// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/voxlab/askai/pkg/core/voice/capture"
	"github.com/voxlab/askai/pkg/core/voice/speech"
)

// Config carries everything the app needs to talk to its backends and
// drive the audio path.
type Config struct {
	// GeminiAPIKey authenticates generateContent calls. Required.
	GeminiAPIKey string
	// GeminiModel overrides the default model when non-empty.
	GeminiModel string

	// CartesiaAPIKey authenticates speech synthesis. When empty the app
	// runs text-only and replies are not spoken.
	CartesiaAPIKey string

	Voice   speech.Options
	Capture capture.Config

	LogLevel string
}

// Load reads the environment, after merging in .env if one exists.
// Variables already set in the process environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		CartesiaAPIKey: os.Getenv("CARTESIA_API_KEY"),
		Voice: speech.Options{
			Voice:    os.Getenv("VOICE_ID"),
			Language: envOr("VOICE_LANGUAGE", speech.DefaultOptions.Language),
			Pitch:    envFloat("VOICE_PITCH", speech.DefaultOptions.Pitch),
			Rate:     envFloat("VOICE_RATE", speech.DefaultOptions.Rate),
		},
		Capture: capture.Config{
			SampleRate: envInt("CAPTURE_SAMPLE_RATE", capture.DefaultConfig.SampleRate),
			Channels:   envInt("CAPTURE_CHANNELS", capture.DefaultConfig.Channels),
			BitDepth:   envInt("CAPTURE_BIT_DEPTH", capture.DefaultConfig.BitDepth),
		},
		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
