package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/voxlab/askai/pkg/core/types"
)

// MalgoDevice captures microphone audio through miniaudio.
type MalgoDevice struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

// NewMalgoDevice creates the device collaborator. The underlying audio
// context is initialized lazily on the first permission request.
func NewMalgoDevice() *MalgoDevice {
	return &MalgoDevice{}
}

// RequestPermission initializes the audio backend. Desktop platforms gate
// microphone access at the OS level, so a successful context init is the
// grant signal.
func (d *MalgoDevice) RequestPermission(_ context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		return true, nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return false, nil
	}
	d.ctx = ctx
	return true, nil
}

// Start configures the capture device and begins buffering samples.
func (d *MalgoDevice) Start(_ context.Context, cfg Config) (Handle, error) {
	d.mu.Lock()
	mctx := d.ctx
	d.mu.Unlock()
	if mctx == nil {
		return nil, fmt.Errorf("audio context not initialized")
	}

	h := &malgoHandle{cfg: cfg}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			h.mu.Lock()
			h.pcm = append(h.pcm, pInputSamples...)
			h.mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init microphone: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("start microphone: %w", err)
	}

	h.device = device
	return h, nil
}

// Close releases the audio backend.
func (d *MalgoDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}
}

type malgoHandle struct {
	cfg    Config
	device *malgo.Device

	mu  sync.Mutex
	pcm []byte
}

// Stop ends capture and returns the buffered samples as a WAV artifact.
func (h *malgoHandle) Stop() (types.Artifact, error) {
	if h.device != nil {
		_ = h.device.Stop()
		h.device.Uninit()
		h.device = nil
	}

	h.mu.Lock()
	pcm := h.pcm
	h.pcm = nil
	h.mu.Unlock()

	return types.Artifact{
		Kind:     types.ArtifactAudio,
		MIMEType: "audio/wav",
		Data:     encodeWAV(pcm, h.cfg),
	}, nil
}
