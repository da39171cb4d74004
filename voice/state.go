package voice

import "sync"

// StateType represents the lifecycle state of a SpeechPlayer.
type StateType int

const (
	// StateUninitialized indicates the engine has not been created.
	StateUninitialized StateType = iota
	// StateInitializing indicates the engine is starting up.
	StateInitializing
	// StateReady indicates the engine can speak.
	StateReady
	// StateUnusable indicates initialization failed. It is permanent.
	StateUnusable
	// StateShutdown indicates the engine has been released.
	StateShutdown
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateUnusable:
		return "unusable"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// StateMachine manages lifecycle transitions. It is safe for concurrent use.
type StateMachine struct {
	mu          sync.Mutex
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
}

// NewStateMachine creates a new state machine with valid transitions.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateUninitialized,
		transitions: map[StateType][]StateType{
			StateUninitialized: {StateInitializing, StateUnusable, StateShutdown},
			StateInitializing:  {StateReady, StateUnusable, StateShutdown},
			StateReady:         {StateShutdown},
			StateUnusable:      {StateShutdown},
		},
		onEnter: make(map[StateType]func()),
	}
}

// Transition attempts to transition to the specified state.
func (sm *StateMachine) Transition(to StateType) bool {
	sm.mu.Lock()

	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		sm.mu.Unlock()
		return false
	}

	sm.current = to
	enterFn := sm.onEnter[to]
	sm.mu.Unlock()

	if enterFn != nil {
		enterFn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = fn
}
