// Package orchestrator drives the end-to-end conversation turn lifecycle:
// record or type, exchange with the model, update the transcript, speak
// the reply. It owns the transcript exclusively and exposes a small state
// machine the UI observes.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/voxlab/askai/pkg/core/exchange"
	"github.com/voxlab/askai/pkg/core/transcript"
	"github.com/voxlab/askai/pkg/core/types"
	"github.com/voxlab/askai/pkg/core/voice/capture"
	"github.com/voxlab/askai/pkg/core/voice/speech"
)

// VoicePlaceholder is the transcript text shown for a spoken user turn.
const VoicePlaceholder = "🎤 Voice message"

var (
	// ErrBusy means a turn is already being processed; new submissions are
	// rejected, never queued or interleaved.
	ErrBusy = errors.New("a turn is already in progress")

	// ErrNotRecording means StopRecording was called with no open session.
	ErrNotRecording = errors.New("no recording in progress")
)

// Exchanger sends one user input plus history to the model.
type Exchanger interface {
	Exchange(ctx context.Context, input exchange.Input, history []types.Turn) (exchange.Result, error)
}

// CaptureSession is an open microphone recording.
type CaptureSession interface {
	Finalize() (types.Artifact, error)
}

// Recorder opens capture sessions.
type Recorder interface {
	Acquire(ctx context.Context) (CaptureSession, error)
}

// Speaker plays model replies aloud.
type Speaker interface {
	Speak(ctx context.Context, text string, opts speech.Options, cb speech.Callbacks)
	Stop()
}

// PendingInput holds the in-progress user composition awaiting submission.
// Free text arrives with SubmitText itself; only the image selection needs
// to be held across calls. Cleared on submission, recording and reset.
type PendingInput struct {
	Image *types.Artifact
}

// Orchestrator coordinates the collaborators around the transcript store.
// All mutations of the transcript go through it.
type Orchestrator struct {
	exchanger Exchanger
	recorder  Recorder
	speaker   Speaker
	voice     speech.Options
	events    EventSink
	store     *transcript.Store

	mu        sync.Mutex
	state     State
	capture   CaptureSession
	pending   PendingInput
	lastInput *exchange.Input
	// session is rotated on Reset; results carrying a stale token are
	// discarded instead of landing in the fresh transcript.
	session string
}

// New creates an orchestrator. A nil events sink is replaced with a no-op.
func New(exchanger Exchanger, recorder Recorder, speaker Speaker, voice speech.Options, events EventSink) *Orchestrator {
	if events == nil {
		events = nopSink{}
	}
	return &Orchestrator{
		exchanger: exchanger,
		recorder:  recorder,
		speaker:   speaker,
		voice:     voice,
		events:    events,
		store:     transcript.NewStore(),
		state:     StateIdle,
		session:   uuid.NewString(),
	}
}

// State returns the current interaction state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript returns a copy of the conversation so far.
func (o *Orchestrator) Transcript() []types.Turn {
	return o.store.Snapshot()
}

// AttachImage selects an image for the next submission.
func (o *Orchestrator) AttachImage(artifact types.Artifact) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending.Image = &artifact
}

// StartRecording opens a capture session. Recording and image-attach are
// mutually exclusive inputs for one turn, so any pending image selection
// is cleared first. On permission or device failure the state stays Idle
// and a notice is surfaced.
func (o *Orchestrator) StartRecording(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}
	o.pending.Image = nil
	o.mu.Unlock()

	session, err := o.recorder.Acquire(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrPermissionDenied) {
			o.events.Notice(ErrorCodePermission, "microphone permission not granted")
		} else {
			o.events.Notice(ErrorCodeDevice, err.Error())
		}
		return err
	}

	o.mu.Lock()
	if o.state != StateIdle {
		// State moved while we were acquiring; give the device back.
		o.mu.Unlock()
		_, _ = session.Finalize()
		return ErrBusy
	}
	o.capture = session
	o.advance(EventStartRecording)
	o.mu.Unlock()
	return nil
}

// StopRecording finalizes the capture session and sends the recording to
// the model. If finalizing fails, no turn is appended and the state
// returns to Idle.
func (o *Orchestrator) StopRecording(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateRecording || o.capture == nil {
		o.mu.Unlock()
		return ErrNotRecording
	}
	session := o.capture
	o.capture = nil
	token := o.session
	o.mu.Unlock()

	artifact, err := session.Finalize()

	o.mu.Lock()
	if o.session != token {
		// Reset happened while the recording was being finalized.
		o.mu.Unlock()
		return nil
	}
	if err != nil {
		// No turn was appended; the error is transient and the machine
		// settles back at idle.
		o.advance(EventCaptureFailed)
		o.advance(EventErrorCleared)
		o.mu.Unlock()
		o.events.Notice(ErrorCodeDevice, "failed to get recording")
		return err
	}

	history := o.store.Snapshot()
	o.store.Append(types.UserTurn(types.TextPart(VoicePlaceholder)))
	o.advance(EventStopRecording)
	input := exchange.Input{Kind: exchange.InputAudio, Artifact: artifact}
	o.lastInput = &input
	o.mu.Unlock()

	o.events.TranscriptUpdated(o.store.Snapshot())
	o.performExchange(ctx, token, input, history)
	return nil
}

// SubmitText sends typed text, the pending image, or both. An image with
// an empty caption gets a default prompt inside the exchange client. An
// empty submission is a silent no-op: state and transcript are unchanged
// and nothing is surfaced.
func (o *Orchestrator) SubmitText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	o.mu.Lock()
	if text == "" && o.pending.Image == nil {
		o.mu.Unlock()
		return nil
	}
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}

	var input exchange.Input
	var userTurn types.Turn
	if img := o.pending.Image; img != nil {
		input = exchange.Input{Kind: exchange.InputImage, Text: text, Artifact: *img}
		caption := text
		if caption == "" {
			caption = exchange.DefaultImagePrompt
		}
		userTurn = types.Turn{
			Role:     types.RoleUser,
			Parts:    []types.Part{types.TextPart(caption)},
			HasImage: true,
			ImageRef: img.Ref,
		}
	} else {
		input = exchange.Input{Kind: exchange.InputText, Text: text}
		userTurn = types.UserTurn(types.TextPart(text))
	}

	history := o.store.Snapshot()
	o.store.Append(userTurn)
	o.pending = PendingInput{}
	o.lastInput = &input
	o.advance(EventSubmit)
	token := o.session
	o.mu.Unlock()

	o.events.TranscriptUpdated(o.store.Snapshot())
	o.performExchange(ctx, token, input, history)
	return nil
}

// Regenerate removes the most recent model turn and replays the exchange
// with the same original input against the truncated history. It is a
// silent no-op when there is nothing to regenerate.
func (o *Orchestrator) Regenerate(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}
	if o.lastInput == nil {
		o.mu.Unlock()
		return nil
	}

	removed := o.store.DropLastModel()
	if _, ok := o.store.LastUser(); !ok {
		o.mu.Unlock()
		return nil
	}

	// lastInput is recorded at submission time, so it always belongs to
	// the transcript's last user turn, including one whose exchange
	// failed. The kept user turn is re-packaged from it, so the history
	// sent alongside stops just before it.
	input := *o.lastInput
	snapshot := o.store.Snapshot()
	history := snapshot[:len(snapshot)-1]
	o.advance(EventSubmit)
	token := o.session
	o.mu.Unlock()

	if removed {
		o.events.TranscriptUpdated(o.store.Snapshot())
	}
	o.performExchange(ctx, token, input, history)
	return nil
}

// Reset clears the transcript, pending input and displayed text, and
// forces the state to Idle. An in-flight exchange is not canceled; its
// late result is discarded when it arrives carrying the old session
// token.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.session = uuid.NewString()
	o.store.Reset()
	o.pending = PendingInput{}
	o.lastInput = nil
	session := o.capture
	o.capture = nil
	o.advance(EventReset)
	o.mu.Unlock()

	if session != nil {
		_, _ = session.Finalize()
	}
	o.speaker.Stop()

	o.events.TranscriptUpdated(nil)
	o.events.ResponseText("")
}

// performExchange runs the blocking model call and applies the outcome.
// history is the transcript as it stood before the optimistic user turn;
// the exchange client packages input as its own user turn.
func (o *Orchestrator) performExchange(ctx context.Context, token string, input exchange.Input, history []types.Turn) {
	result, err := o.exchanger.Exchange(ctx, input, history)

	o.mu.Lock()
	if o.session != token {
		// Reset happened while the request was in flight.
		o.mu.Unlock()
		return
	}

	if err != nil {
		// The optimistic user turn stays; only the model reply is missing.
		o.advance(EventExchangeFailed)
		o.advance(EventErrorCleared)
		o.mu.Unlock()
		o.events.Notice(ErrorCodeTransport, "failed to get response from AI")
		return
	}

	o.store.Append(types.ModelTurn(result.Text))
	o.advance(EventExchangeOK)
	o.mu.Unlock()

	o.events.TranscriptUpdated(o.store.Snapshot())
	o.events.ResponseText(result.Text)

	o.speaker.Speak(ctx, result.Text, o.voice, speech.Callbacks{
		OnDone:  func() { o.playbackFinished(token, EventPlaybackDone) },
		OnError: func(error) { o.playbackFinished(token, EventPlaybackError) },
	})
}

// playbackFinished returns the machine to Idle whether or not playback
// succeeded.
func (o *Orchestrator) playbackFinished(token string, event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != token || o.state != StateSpeaking {
		return
	}
	o.advance(event)
}

// advance applies a legal transition and notifies the sink. Callers hold
// o.mu and have already validated preconditions, so an illegal event here
// is a programming error; the state is left unchanged in that case.
func (o *Orchestrator) advance(event Event) {
	next, err := transition(o.state, event)
	if err != nil {
		return
	}
	o.state = next
	o.events.StateChanged(next)
}
