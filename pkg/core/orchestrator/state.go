package orchestrator

import "fmt"

// State models the active interaction lifecycle. Exactly one state is
// active at a time.
type State string

const (
	StateIdle             State = "idle"
	StateRecording        State = "recording"
	StateAwaitingResponse State = "awaiting_response"
	StateSpeaking         State = "speaking"
	StateErrorDisplayed   State = "error_displayed"
)

// Event drives state transitions.
type Event string

const (
	EventStartRecording Event = "start_recording"
	EventStopRecording  Event = "stop_recording"
	EventCaptureFailed  Event = "capture_failed"
	EventSubmit         Event = "submit"
	EventExchangeOK     Event = "exchange_ok"
	EventExchangeFailed Event = "exchange_failed"
	EventErrorCleared   Event = "error_cleared"
	EventPlaybackDone   Event = "playback_done"
	EventPlaybackError  Event = "playback_error"
	EventReset          Event = "reset"
)

// transitions is the pure state table. Effects live in the Orchestrator;
// this table only answers whether a step is legal and where it lands.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStartRecording: StateRecording,
		EventSubmit:         StateAwaitingResponse,
		EventReset:          StateIdle,
	},
	StateRecording: {
		EventStopRecording: StateAwaitingResponse,
		EventCaptureFailed: StateErrorDisplayed,
		EventReset:         StateIdle,
	},
	StateAwaitingResponse: {
		EventExchangeOK:     StateSpeaking,
		EventExchangeFailed: StateErrorDisplayed,
		EventReset:          StateIdle,
	},
	StateSpeaking: {
		EventPlaybackDone:  StateIdle,
		EventPlaybackError: StateIdle,
		EventReset:         StateIdle,
	},
	StateErrorDisplayed: {
		EventErrorCleared: StateIdle,
		EventReset:        StateIdle,
	},
}

// transition applies event to state. It is a pure function.
func transition(state State, event Event) (State, error) {
	next, ok := transitions[state][event]
	if !ok {
		return state, fmt.Errorf("event %q not valid in state %q", event, state)
	}
	return next, nil
}
