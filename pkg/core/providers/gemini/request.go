package gemini

import (
	"encoding/base64"

	"github.com/voxlab/askai/pkg/core/types"
)

// geminiRequest is the Gemini API request format.
type geminiRequest struct {
	Contents          []geminiContent       `json:"contents"`
	SystemInstruction *geminiContent        `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig      `json:"generationConfig,omitempty"`
	SafetySettings    []geminiSafetySetting `json:"safetySettings,omitempty"`
}

// geminiContent represents a content object in Gemini format.
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a single part within content.
type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

// geminiBlob represents inline binary data.
type geminiBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

// geminiGenConfig contains generation configuration.
type geminiGenConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// geminiSafetySetting configures safety filters.
type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerationConfig is the caller-facing generation parameter set.
type GenerationConfig struct {
	Temperature     *float64
	TopP            *float64
	TopK            *int
	MaxOutputTokens *int
}

// SafetySetting pairs a harm category with a blocking threshold.
type SafetySetting struct {
	Category  string
	Threshold string
}

// Request is a caller-facing generateContent request.
type Request struct {
	Contents          []types.Turn
	SystemInstruction string
	Generation        *GenerationConfig
	Safety            []SafetySetting
}

// buildRequest converts a Request to the Gemini wire format. Binary parts
// are base64 encoded here; the encoding is a pure function of the bytes.
func buildRequest(req *Request) *geminiRequest {
	geminiReq := &geminiRequest{}

	if req.SystemInstruction != "" {
		geminiReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}

	geminiReq.Contents = translateTurns(req.Contents)

	if req.Generation != nil {
		geminiReq.GenerationConfig = &geminiGenConfig{
			Temperature:     req.Generation.Temperature,
			TopP:            req.Generation.TopP,
			TopK:            req.Generation.TopK,
			MaxOutputTokens: req.Generation.MaxOutputTokens,
		}
	}

	for _, s := range req.Safety {
		geminiReq.SafetySettings = append(geminiReq.SafetySettings, geminiSafetySetting{
			Category:  s.Category,
			Threshold: s.Threshold,
		})
	}

	return geminiReq
}

// translateTurns converts conversation turns to Gemini contents.
func translateTurns(turns []types.Turn) []geminiContent {
	contents := make([]geminiContent, 0, len(turns))

	for _, turn := range turns {
		content := geminiContent{Role: string(turn.Role)}
		for _, part := range turn.Parts {
			content.Parts = append(content.Parts, translatePart(part))
		}
		contents = append(contents, content)
	}

	return contents
}

func translatePart(part types.Part) geminiPart {
	if part.Inline != nil {
		return geminiPart{
			InlineData: &geminiBlob{
				MIMEType: part.Inline.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(part.Inline.Data),
			},
		}
	}
	return geminiPart{Text: part.Text}
}
