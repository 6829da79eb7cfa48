package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionPauseResumeCycle(t *testing.T) {
	s := StateCapturing

	next, err := Transition(s, EventPause)
	require.NoError(t, err)
	require.Equal(t, StatePaused, next)

	next, err = Transition(next, EventResume)
	require.NoError(t, err)
	require.Equal(t, StateCapturing, next)
}

func TestTransitionDoublePauseSingleResume(t *testing.T) {
	s, err := Transition(StateCapturing, EventPause)
	require.NoError(t, err)
	s, err = Transition(s, EventPause)
	require.NoError(t, err)
	require.Equal(t, StatePaused, s)

	s, err = Transition(s, EventResume)
	require.NoError(t, err)
	require.Equal(t, StateCapturing, s)
}

func TestTransitionCloseFromAnyStateGoesClosed(t *testing.T) {
	states := []State{StateCapturing, StatePaused, StateClosed}
	for _, state := range states {
		next, err := Transition(state, EventClose)
		require.NoError(t, err)
		require.Equal(t, StateClosed, next)
	}
}

func TestTransitionMatrix(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "capturing resume is noop", state: StateCapturing, event: EventResume, want: StateCapturing},
		{name: "paused pause is noop", state: StatePaused, event: EventPause, want: StatePaused},
		{name: "closed pause invalid", state: StateClosed, event: EventPause, want: StateClosed, wantErr: true},
		{name: "closed resume invalid", state: StateClosed, event: EventResume, want: StateClosed, wantErr: true},
		{name: "capturing unknown event invalid", state: StateCapturing, event: Event("rewind"), want: StateCapturing, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventPause)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}
