// Package types defines the conversation data model shared by the
// transcript store, the exchange client and the orchestrator.
package types

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one piece of turn content: plain text or inline binary media.
// Exactly one of Text or Inline is set.
type Part struct {
	Text   string  `json:"text,omitempty"`
	Inline *Inline `json:"inlineData,omitempty"`
}

// Inline carries binary media embedded in a part. Data is raw bytes; the
// wire encoding (base64) is applied by the provider, not here.
type Inline struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// TextPart builds a plain text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// MediaPart builds an inline media part.
func MediaPart(mimeType string, data []byte) Part {
	return Part{Inline: &Inline{MIMEType: mimeType, Data: data}}
}

// Turn is one conversational exchange unit. A Turn is immutable once
// appended to a transcript; corrections happen by appending new turns.
// HasImage and ImageRef are display-side fields for user turns carrying an
// image and are stripped before a turn is sent to the model.
type Turn struct {
	Role     Role   `json:"role"`
	Parts    []Part `json:"parts"`
	HasImage bool   `json:"hasImage,omitempty"`
	ImageRef string `json:"imageRef,omitempty"`
}

// UserTurn builds a user turn from parts.
func UserTurn(parts ...Part) Turn {
	return Turn{Role: RoleUser, Parts: parts}
}

// ModelTurn builds a model turn carrying a single text part.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{TextPart(text)}}
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var out string
	for _, p := range t.Parts {
		out += p.Text
	}
	return out
}

// ForWire returns a copy of the turn with display-side fields stripped,
// suitable for inclusion in model context.
func (t Turn) ForWire() Turn {
	return Turn{Role: t.Role, Parts: t.Parts}
}

// ArtifactKind distinguishes recorded audio from picked/captured images.
type ArtifactKind string

const (
	ArtifactAudio ArtifactKind = "audio"
	ArtifactImage ArtifactKind = "image"
)

// Artifact is an opaque reference to media produced by a device
// collaborator: a finished microphone recording or a selected image.
// Ref is a caller-facing handle (path or URI); Data holds the bytes.
type Artifact struct {
	Kind     ArtifactKind
	MIMEType string
	Ref      string
	Data     []byte
}
