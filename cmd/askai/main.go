// Command askai is a voice-first chat client: speak or type to the model,
// hear the reply. Recording is a push-to-talk toggle; /image sends a
// picture immediately, with an optional caption as the prompt.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxlab/askai/internal/config"
	"github.com/voxlab/askai/pkg/core/exchange"
	"github.com/voxlab/askai/pkg/core/orchestrator"
	"github.com/voxlab/askai/pkg/core/providers/gemini"
	"github.com/voxlab/askai/pkg/core/types"
	"github.com/voxlab/askai/pkg/core/voice/capture"
	"github.com/voxlab/askai/pkg/core/voice/speech"
	"github.com/voxlab/askai/pkg/core/voice/tts"
)

// conversation is the slice of the orchestrator the CLI drives.
type conversation interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	SubmitText(ctx context.Context, text string) error
	AttachImage(artifact types.Artifact)
	Regenerate(ctx context.Context) error
	Reset()
	State() orchestrator.State
}

// cliSink renders orchestrator events onto the terminal.
type cliSink struct {
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
}

func (s *cliSink) StateChanged(state orchestrator.State) {
	s.log.Debug("state changed", "state", state)
}

func (s *cliSink) TranscriptUpdated([]types.Turn) {}

func (s *cliSink) ResponseText(text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(s.out, "Ask AI: %s\n", text)
}

func (s *cliSink) Notice(code orchestrator.ErrorCode, detail string) {
	fmt.Fprintf(s.errOut, "error: %s\n", detail)
	s.log.Warn("notice", "code", code, "detail", detail)
}

// silentSpeaker is used when no synthesis key is configured. It completes
// every utterance immediately so turns still settle.
type silentSpeaker struct{}

func (silentSpeaker) Speak(_ context.Context, _ string, _ speech.Options, cb speech.Callbacks) {
	if cb.OnDone != nil {
		cb.OnDone()
	}
}

func (silentSpeaker) Stop() {}

// recorderAdapter narrows *capture.Recorder to the orchestrator port.
type recorderAdapter struct {
	rec *capture.Recorder
}

func (a recorderAdapter) Acquire(ctx context.Context) (orchestrator.CaptureSession, error) {
	session, err := a.rec.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func buildSpeaker(cfg *config.Config, log *slog.Logger) orchestrator.Speaker {
	if cfg.CartesiaAPIKey == "" {
		log.Info("CARTESIA_API_KEY not set, replies will not be spoken")
		return silentSpeaker{}
	}
	sink, err := speech.NewOtoSink(tts.DefaultSampleRate, 1)
	if err != nil {
		log.Warn("audio output unavailable, replies will not be spoken", "error", err)
		return silentSpeaker{}
	}
	return speech.New(tts.NewCartesia(cfg.CartesiaAPIKey), sink, cfg.Voice)
}

func buildOrchestrator(cfg *config.Config, sink orchestrator.EventSink, log *slog.Logger) (*orchestrator.Orchestrator, func()) {
	var opts []gemini.Option
	if cfg.GeminiModel != "" {
		opts = append(opts, gemini.WithModel(cfg.GeminiModel))
	}
	client := exchange.New(cfg.GeminiAPIKey, opts...)
	device := capture.NewMalgoDevice()
	recorder := capture.NewRecorder(device, cfg.Capture)
	speaker := buildSpeaker(cfg, log)
	orch := orchestrator.New(client, recorderAdapter{rec: recorder}, speaker, cfg.Voice, sink)
	return orch, device.Close
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func loadImage(path string) (types.Artifact, error) {
	mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return types.Artifact{}, fmt.Errorf("unsupported image type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Artifact{}, err
	}
	return types.Artifact{
		Kind:     types.ArtifactImage,
		MIMEType: mime,
		Ref:      filepath.Base(path),
		Data:     data,
	}, nil
}

// handleCommand runs one slash command. It reports whether the line was a
// command at all; command failures are printed, not returned, so the loop
// keeps going.
func handleCommand(ctx context.Context, line string, conv conversation, out, errOut io.Writer) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/record":
		if conv.State() == orchestrator.StateRecording {
			if err := conv.StopRecording(ctx); err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
			}
			return true
		}
		if err := conv.StartRecording(ctx); err == nil {
			fmt.Fprintln(out, "recording... type /record again to stop")
		} else if !errors.Is(err, capture.ErrPermissionDenied) {
			// Permission denial is already surfaced through the sink.
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return true
	case "/image":
		rest = strings.TrimSpace(rest)
		if rest == "" {
			fmt.Fprintln(errOut, "usage: /image <path> [caption]")
			return true
		}
		path, caption, _ := strings.Cut(rest, " ")
		artifact, err := loadImage(path)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return true
		}
		conv.AttachImage(artifact)
		if err := conv.SubmitText(ctx, strings.TrimSpace(caption)); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return true
	case "/regen":
		if err := conv.Regenerate(ctx); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return true
	case "/reset":
		conv.Reset()
		fmt.Fprintln(out, "conversation cleared")
		return true
	default:
		return false
	}
}

func run(ctx context.Context, conv conversation, in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintln(out, "Ask AI ready. Type a message, or:")
	fmt.Fprintln(out, "  /record           toggle voice recording")
	fmt.Fprintln(out, "  /image <path> [caption]")
	fmt.Fprintln(out, "  /regen  /reset  /quit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/quit", "/exit":
			fmt.Fprintln(out, "bye")
			return nil
		}
		if handleCommand(ctx, line, conv, out, errOut) {
			continue
		}

		if err := conv.SubmitText(ctx, line); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "askai: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	sink := &cliSink{out: os.Stdout, errOut: os.Stderr, log: log}
	conv, closeAudio := buildOrchestrator(cfg, sink, log)
	defer closeAudio()

	if err := run(context.Background(), conv, os.Stdin, os.Stdout, os.Stderr); err != nil {
		closeAudio()
		fmt.Fprintf(os.Stderr, "askai: %v\n", err)
		os.Exit(1)
	}
}
