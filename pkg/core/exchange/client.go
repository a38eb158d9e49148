// Package exchange packages a single user input plus prior conversation
// history into one model exchange. It owns the assistant's fixed persona,
// generation parameters and safety thresholds; callers never vary them per
// request.
package exchange

import (
	"context"
	"fmt"

	"github.com/voxlab/askai/pkg/core/providers/gemini"
	"github.com/voxlab/askai/pkg/core/types"
)

// SystemInstruction is the fixed behavioral instruction sent with every
// exchange.
const SystemInstruction = "You are a friendly AI assistant who responds naturally and refers to yourself as Ask AI when asked for your name. You are a helpful assistant who can answer questions and help with tasks. You must always respond in English, no matter the input language, and provide helpful, clear answers."

// DefaultImagePrompt is substituted when an image is submitted without a
// caption.
const DefaultImagePrompt = "Describe this image in detail"

// Fixed generation parameters.
const (
	temperature     = 0.7
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 1024
)

// safetySettings blocks four harm categories at medium and above.
var safetySettings = []gemini.SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// Generator is the wire-level provider the client talks to.
type Generator interface {
	GenerateContent(ctx context.Context, req *gemini.Request) (string, error)
}

// InputKind identifies the modality of a user input.
type InputKind string

const (
	InputText  InputKind = "text"
	InputAudio InputKind = "audio"
	InputImage InputKind = "image"
)

// Input is one user submission. Text carries the typed message, or the
// caption when Kind is InputImage. Artifact carries recorded audio or a
// selected image.
type Input struct {
	Kind     InputKind
	Text     string
	Artifact types.Artifact
}

// Result is the outcome of an exchange. On success History is the full
// updated sequence (prior + user turn + model turn) for atomic adoption;
// on failure History is the original prior sequence, untouched.
type Result struct {
	Text    string
	History []types.Turn
}

// Client sends user turns to the model.
type Client struct {
	generator Generator
}

// New creates an exchange client backed by the Gemini provider.
func New(apiKey string, opts ...gemini.Option) *Client {
	return &Client{generator: gemini.New(apiKey, opts...)}
}

// NewWithGenerator creates an exchange client over a custom generator.
func NewWithGenerator(g Generator) *Client {
	return &Client{generator: g}
}

// Exchange sends the input plus prior history and returns the model's
// reply. Prior turns are stripped of display-side fields before they are
// sent. The caller's history slice is never mutated.
func (c *Client) Exchange(ctx context.Context, input Input, history []types.Turn) (Result, error) {
	userTurn, err := buildUserTurn(input)
	if err != nil {
		return Result{History: history}, err
	}

	contents := gemini.WireTurns(history)
	contents = append(contents, userTurn)

	temp, nucleusP, k, maxTokens := temperature, topP, topK, maxOutputTokens
	text, err := c.generator.GenerateContent(ctx, &gemini.Request{
		Contents:          contents,
		SystemInstruction: SystemInstruction,
		Generation: &gemini.GenerationConfig{
			Temperature:     &temp,
			TopP:            &nucleusP,
			TopK:            &k,
			MaxOutputTokens: &maxTokens,
		},
		Safety: safetySettings,
	})
	if err != nil {
		return Result{History: history}, err
	}

	updated := append(append([]types.Turn(nil), history...), userTurn, types.ModelTurn(text))
	return Result{Text: text, History: updated}, nil
}

// Transcribe converts a recorded audio artifact to text with a bare
// generateContent call carrying only the audio part.
func (c *Client) Transcribe(ctx context.Context, artifact types.Artifact) (string, error) {
	if artifact.Kind != types.ArtifactAudio {
		return "", fmt.Errorf("transcribe: artifact kind %q is not audio", artifact.Kind)
	}
	return c.generator.GenerateContent(ctx, &gemini.Request{
		Contents: []types.Turn{
			types.UserTurn(types.MediaPart(artifact.MIMEType, artifact.Data)),
		},
	})
}

// buildUserTurn packages the input as a single user turn.
func buildUserTurn(input Input) (types.Turn, error) {
	switch input.Kind {
	case InputText:
		return types.UserTurn(types.TextPart(input.Text)), nil
	case InputAudio:
		return types.UserTurn(types.MediaPart(input.Artifact.MIMEType, input.Artifact.Data)), nil
	case InputImage:
		prompt := input.Text
		if prompt == "" {
			prompt = DefaultImagePrompt
		}
		return types.UserTurn(
			types.TextPart(prompt),
			types.MediaPart(input.Artifact.MIMEType, input.Artifact.Data),
		), nil
	default:
		return types.Turn{}, fmt.Errorf("exchange: unknown input kind %q", input.Kind)
	}
}
