package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/voxlab/askai/pkg/core/providers/gemini"
	"github.com/voxlab/askai/pkg/core/types"
)

type fakeGenerator struct {
	lastReq *gemini.Request
	text    string
	err     error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, req *gemini.Request) (string, error) {
	f.lastReq = req
	return f.text, f.err
}

func TestExchange_TextSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "Hi there"}
	client := NewWithGenerator(gen)

	prior := []types.Turn{
		types.UserTurn(types.TextPart("earlier")),
		types.ModelTurn("earlier reply"),
	}

	result, err := client.Exchange(context.Background(), Input{Kind: InputText, Text: "Hello"}, prior)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if result.Text != "Hi there" {
		t.Fatalf("text = %q, want %q", result.Text, "Hi there")
	}
	if len(result.History) != 4 {
		t.Fatalf("history length = %d, want 4", len(result.History))
	}
	if result.History[2].Role != types.RoleUser || result.History[2].Text() != "Hello" {
		t.Fatalf("user turn = %+v", result.History[2])
	}
	if result.History[3].Role != types.RoleModel || result.History[3].Text() != "Hi there" {
		t.Fatalf("model turn = %+v", result.History[3])
	}
	if len(prior) != 2 {
		t.Fatalf("prior history mutated, length = %d", len(prior))
	}

	if gen.lastReq.SystemInstruction != SystemInstruction {
		t.Fatal("system instruction not carried")
	}
	if len(gen.lastReq.Safety) != 4 {
		t.Fatalf("safety settings = %d, want 4", len(gen.lastReq.Safety))
	}
	gc := gen.lastReq.Generation
	if gc == nil || *gc.Temperature != 0.7 || *gc.TopK != 40 || *gc.TopP != 0.95 || *gc.MaxOutputTokens != 1024 {
		t.Fatalf("generation config = %+v", gc)
	}
}

func TestExchange_ErrorLeavesHistoryUntouched(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("network down")}
	client := NewWithGenerator(gen)

	prior := []types.Turn{types.UserTurn(types.TextPart("earlier"))}

	result, err := client.Exchange(context.Background(), Input{Kind: InputText, Text: "Hello"}, prior)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Text != "" {
		t.Fatalf("text = %q, want empty", result.Text)
	}
	if len(result.History) != 1 || result.History[0].Text() != "earlier" {
		t.Fatalf("history = %+v, want original prior", result.History)
	}
}

func TestExchange_ImageUsesDefaultPromptWhenCaptionEmpty(t *testing.T) {
	gen := &fakeGenerator{text: "a cat"}
	client := NewWithGenerator(gen)

	artifact := types.Artifact{Kind: types.ArtifactImage, MIMEType: "image/jpeg", Data: []byte{0xff}}
	result, err := client.Exchange(context.Background(), Input{Kind: InputImage, Artifact: artifact}, nil)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	userTurn := result.History[0]
	if userTurn.Parts[0].Text != DefaultImagePrompt {
		t.Fatalf("prompt = %q, want %q", userTurn.Parts[0].Text, DefaultImagePrompt)
	}
	if userTurn.Parts[1].Inline == nil || userTurn.Parts[1].Inline.MIMEType != "image/jpeg" {
		t.Fatalf("image part = %+v", userTurn.Parts[1])
	}
}

func TestExchange_ImageKeepsCaption(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	client := NewWithGenerator(gen)

	artifact := types.Artifact{Kind: types.ArtifactImage, MIMEType: "image/jpeg", Data: []byte{0xff}}
	result, err := client.Exchange(context.Background(), Input{Kind: InputImage, Text: "what breed?", Artifact: artifact}, nil)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if result.History[0].Parts[0].Text != "what breed?" {
		t.Fatalf("caption = %q", result.History[0].Parts[0].Text)
	}
}

func TestExchange_StripsDisplayFieldsFromHistory(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	client := NewWithGenerator(gen)

	prior := []types.Turn{{
		Role:     types.RoleUser,
		Parts:    []types.Part{types.TextPart("look")},
		HasImage: true,
		ImageRef: "file:///tmp/cat.jpg",
	}}

	if _, err := client.Exchange(context.Background(), Input{Kind: InputText, Text: "hi"}, prior); err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	sent := gen.lastReq.Contents[0]
	if sent.HasImage || sent.ImageRef != "" {
		t.Fatalf("display fields leaked to wire: %+v", sent)
	}
}

func TestTranscribe_RejectsNonAudio(t *testing.T) {
	client := NewWithGenerator(&fakeGenerator{})
	_, err := client.Transcribe(context.Background(), types.Artifact{Kind: types.ArtifactImage})
	if err == nil {
		t.Fatal("expected error for image artifact")
	}
}

func TestTranscribe_SendsBareAudioRequest(t *testing.T) {
	gen := &fakeGenerator{text: "hello world"}
	client := NewWithGenerator(gen)

	text, err := client.Transcribe(context.Background(), types.Artifact{
		Kind: types.ArtifactAudio, MIMEType: "audio/wav", Data: []byte{0x01},
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("text = %q", text)
	}
	if gen.lastReq.SystemInstruction != "" || gen.lastReq.Generation != nil {
		t.Fatal("transcription request must not carry persona or generation config")
	}
}
