package voice

import "testing"

// TestStateTypeString tests the String() method for StateType.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    StateType
		expected string
	}{
		{StateUninitialized, "uninitialized"},
		{StateInitializing, "initializing"},
		{StateReady, "ready"},
		{StateUnusable, "unusable"},
		{StateShutdown, "shutdown"},
		{StateType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.state.String(); result != tt.expected {
				t.Errorf("StateType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestStateMachineTransitions tests valid and invalid transitions.
func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []StateType
		valid []bool
		final StateType
	}{
		{
			name:  "successful init then shutdown",
			path:  []StateType{StateInitializing, StateReady, StateShutdown},
			valid: []bool{true, true, true},
			final: StateShutdown,
		},
		{
			name:  "failed init is permanent",
			path:  []StateType{StateInitializing, StateUnusable, StateReady},
			valid: []bool{true, true, false},
			final: StateUnusable,
		},
		{
			name:  "shutdown during init",
			path:  []StateType{StateInitializing, StateShutdown, StateReady, StateUnusable},
			valid: []bool{true, true, false, false},
			final: StateShutdown,
		},
		{
			name:  "cannot skip initialization",
			path:  []StateType{StateReady},
			valid: []bool{false},
			final: StateUninitialized,
		},
		{
			name:  "ready cannot become unusable",
			path:  []StateType{StateInitializing, StateReady, StateUnusable},
			valid: []bool{true, true, false},
			final: StateReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for i, to := range tt.path {
				if got := sm.Transition(to); got != tt.valid[i] {
					t.Errorf("Transition(%v) = %v, want %v", to, got, tt.valid[i])
				}
			}
			if sm.Current() != tt.final {
				t.Errorf("Current() = %v, want %v", sm.Current(), tt.final)
			}
		})
	}
}

// TestStateMachineOnEnter tests enter callbacks.
func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()

	entered := 0
	sm.OnEnter(StateReady, func() { entered++ })

	sm.Transition(StateInitializing)
	if entered != 0 {
		t.Errorf("OnEnter called for wrong state")
	}
	sm.Transition(StateReady)
	if entered != 1 {
		t.Errorf("Expected OnEnter once, got %d", entered)
	}
	sm.Transition(StateReady)
	if entered != 1 {
		t.Errorf("Invalid transition should not call OnEnter, got %d", entered)
	}
}
