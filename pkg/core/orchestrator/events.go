package orchestrator

import "github.com/voxlab/askai/pkg/core/types"

// ErrorCode identifies user-surfaceable failure classes. Empty submissions
// are not errors and are never surfaced.
type ErrorCode string

const (
	ErrorCodePermission ErrorCode = "permission_denied"
	ErrorCodeDevice     ErrorCode = "device_error"
	ErrorCodeTransport  ErrorCode = "transport_error"
)

// EventSink receives orchestrator state for the UI to render. Callbacks
// arrive on whatever goroutine drove the transition and may hold internal
// locks; implementations must not call back into the orchestrator and do
// their own marshaling onto a UI thread if they need one.
type EventSink interface {
	// StateChanged fires on every transition, including the transient pass
	// through StateErrorDisplayed.
	StateChanged(state State)

	// TranscriptUpdated fires whenever turns are appended or removed.
	TranscriptUpdated(turns []types.Turn)

	// ResponseText carries the latest model reply for display; an empty
	// string clears it.
	ResponseText(text string)

	// Notice surfaces a dismissible error to the user.
	Notice(code ErrorCode, detail string)
}

type nopSink struct{}

func (nopSink) StateChanged(State)             {}
func (nopSink) TranscriptUpdated([]types.Turn) {}
func (nopSink) ResponseText(string)            {}
func (nopSink) Notice(ErrorCode, string)       {}
