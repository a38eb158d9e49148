// Package capture wraps microphone recording into a two-phase resource:
// acquire a session, then finalize it into an audio artifact. The recorder
// holds the device exclusively between the two phases.
package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/voxlab/askai/pkg/core/types"
)

var (
	// ErrPermissionDenied means the user has not authorized microphone use.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceBusy means a capture session is already open.
	ErrDeviceBusy = errors.New("capture session already open")

	// ErrSessionFinalized means Finalize was called twice on one session.
	ErrSessionFinalized = errors.New("capture session already finalized")
)

// Config describes how the microphone should be captured. The fields are
// passed through to the device collaborator untouched.
type Config struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultConfig matches what the transcription backend accepts without
// resampling.
var DefaultConfig = Config{
	SampleRate: 44100,
	Channels:   2,
	BitDepth:   16,
}

// Handle is an open device recording returned by a Device.
type Handle interface {
	// Stop ends buffering, releases the device recording mode and returns
	// the recorded artifact.
	Stop() (types.Artifact, error)
}

// Device is the platform recorder collaborator.
type Device interface {
	// RequestPermission asks for microphone access if not already granted.
	RequestPermission(ctx context.Context) (bool, error)

	// Start configures the device for recording and begins buffering.
	Start(ctx context.Context, cfg Config) (Handle, error)
}

// Recorder creates capture sessions over a Device, one at a time.
type Recorder struct {
	device Device
	cfg    Config

	mu     sync.Mutex
	active *Session
}

// NewRecorder creates a recorder over the given device.
func NewRecorder(device Device, cfg Config) *Recorder {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = DefaultConfig.Channels
	}
	if cfg.BitDepth <= 0 {
		cfg.BitDepth = DefaultConfig.BitDepth
	}
	return &Recorder{device: device, cfg: cfg}
}

// Acquire requests permission and starts buffering. It fails with
// ErrPermissionDenied before touching the device when permission is
// refused, and with ErrDeviceBusy while another session is open.
func (r *Recorder) Acquire(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return nil, ErrDeviceBusy
	}
	r.mu.Unlock()

	granted, err := r.device.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, ErrPermissionDenied
	}

	handle, err := r.device.Start(ctx, r.cfg)
	if err != nil {
		return nil, err
	}

	session := &Session{recorder: r, handle: handle}

	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		// Lost the race to another acquire; back out.
		_, _ = handle.Stop()
		return nil, ErrDeviceBusy
	}
	r.active = session
	r.mu.Unlock()

	return session, nil
}

func (r *Recorder) release(s *Session) {
	r.mu.Lock()
	if r.active == s {
		r.active = nil
	}
	r.mu.Unlock()
}

// Session is a live capture between Acquire and Finalize.
type Session struct {
	recorder *Recorder
	handle   Handle

	mu        sync.Mutex
	finalized bool
}

// Finalize stops buffering, releases the device and returns the recorded
// artifact. A second call fails with ErrSessionFinalized.
func (s *Session) Finalize() (types.Artifact, error) {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return types.Artifact{}, ErrSessionFinalized
	}
	s.finalized = true
	s.mu.Unlock()

	s.recorder.release(s)
	return s.handle.Stop()
}
