// Package fsm defines the capture lifecycle shared by audio frame sources.
package fsm

import "fmt"

type State string

type Event string

const (
	StateCapturing State = "capturing"
	StatePaused    State = "paused"
	StateClosed    State = "closed"
)

const (
	EventPause  Event = "pause"
	EventResume Event = "resume"
	EventClose  Event = "close"
)

// Transition applies one event. Pause and resume are idempotent; close is terminal.
func Transition(current State, event Event) (State, error) {
	if event == EventClose {
		return StateClosed, nil
	}

	switch current {
	case StateCapturing:
		switch event {
		case EventPause:
			return StatePaused, nil
		case EventResume:
			return StateCapturing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePaused:
		switch event {
		case EventPause:
			return StatePaused, nil
		case EventResume:
			return StateCapturing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateClosed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
