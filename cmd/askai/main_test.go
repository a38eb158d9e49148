package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxlab/askai/pkg/core/orchestrator"
	"github.com/voxlab/askai/pkg/core/types"
)

type fakeConversation struct {
	state      orchestrator.State
	submitted  []string
	attached   []types.Artifact
	recordings int
	stops      int
	regens     int
	resets     int
}

func (f *fakeConversation) StartRecording(context.Context) error {
	f.recordings++
	f.state = orchestrator.StateRecording
	return nil
}

func (f *fakeConversation) StopRecording(context.Context) error {
	f.stops++
	f.state = orchestrator.StateIdle
	return nil
}

func (f *fakeConversation) SubmitText(_ context.Context, text string) error {
	f.submitted = append(f.submitted, text)
	return nil
}

func (f *fakeConversation) AttachImage(artifact types.Artifact) {
	f.attached = append(f.attached, artifact)
}

func (f *fakeConversation) Regenerate(context.Context) error {
	f.regens++
	return nil
}

func (f *fakeConversation) Reset() { f.resets++ }

func (f *fakeConversation) State() orchestrator.State { return f.state }

func TestRunLoop(t *testing.T) {
	conv := &fakeConversation{state: orchestrator.StateIdle}
	in := strings.NewReader("hello\n\n/regen\n/reset\n/quit\n")
	var out, errOut bytes.Buffer

	if err := run(context.Background(), conv, in, &out, &errOut); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if len(conv.submitted) != 1 || conv.submitted[0] != "hello" {
		t.Errorf("submitted = %v, want [hello]", conv.submitted)
	}
	if conv.regens != 1 || conv.resets != 1 {
		t.Errorf("regens = %d, resets = %d, want 1 and 1", conv.regens, conv.resets)
	}
	if !strings.Contains(out.String(), "bye") {
		t.Errorf("output missing farewell: %q", out.String())
	}
}

func TestRecordToggle(t *testing.T) {
	conv := &fakeConversation{state: orchestrator.StateIdle}
	var out, errOut bytes.Buffer

	if !handleCommand(context.Background(), "/record", conv, &out, &errOut) {
		t.Fatal("handleCommand(/record) = false, want true")
	}
	if conv.recordings != 1 || conv.stops != 0 {
		t.Fatalf("after first toggle: recordings = %d, stops = %d", conv.recordings, conv.stops)
	}

	if !handleCommand(context.Background(), "/record", conv, &out, &errOut) {
		t.Fatal("handleCommand(/record) = false, want true")
	}
	if conv.stops != 1 {
		t.Fatalf("after second toggle: stops = %d, want 1", conv.stops)
	}
}

func TestImageCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	conv := &fakeConversation{state: orchestrator.StateIdle}
	var out, errOut bytes.Buffer

	if !handleCommand(context.Background(), "/image "+path+" what is this", conv, &out, &errOut) {
		t.Fatal("handleCommand(/image) = false, want true")
	}
	if len(conv.attached) != 1 {
		t.Fatalf("attached %d images, want 1", len(conv.attached))
	}
	img := conv.attached[0]
	if img.MIMEType != "image/png" || img.Ref != "photo.png" || string(img.Data) != "png-bytes" {
		t.Errorf("artifact = %+v", img)
	}
	if len(conv.submitted) != 1 || conv.submitted[0] != "what is this" {
		t.Errorf("submitted = %v, want [what is this]", conv.submitted)
	}
}

func TestImageCommandBadPath(t *testing.T) {
	conv := &fakeConversation{state: orchestrator.StateIdle}
	var out, errOut bytes.Buffer

	handleCommand(context.Background(), "/image /no/such/file.png", conv, &out, &errOut)
	if len(conv.attached) != 0 || len(conv.submitted) != 0 {
		t.Errorf("bad path attached/submitted: %v %v", conv.attached, conv.submitted)
	}
	if errOut.Len() == 0 {
		t.Error("expected an error message")
	}

	errOut.Reset()
	handleCommand(context.Background(), "/image notes.txt", conv, &out, &errOut)
	if !strings.Contains(errOut.String(), "unsupported image type") {
		t.Errorf("errOut = %q, want unsupported type message", errOut.String())
	}
}

func TestNonCommandFallsThrough(t *testing.T) {
	conv := &fakeConversation{state: orchestrator.StateIdle}
	var out, errOut bytes.Buffer

	if handleCommand(context.Background(), "just a message", conv, &out, &errOut) {
		t.Error("plain text treated as a command")
	}
}
