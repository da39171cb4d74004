package voice

// ListenerFuncs adapts plain functions to InstructionListener. Nil fields
// are ignored.
type ListenerFuncs struct {
	Start func()
	Done  func()
	Error func(interrupted bool)
}

// OnStart implements InstructionListener.
func (f ListenerFuncs) OnStart() {
	if f.Start != nil {
		f.Start()
	}
}

// OnDone implements InstructionListener.
func (f ListenerFuncs) OnDone() {
	if f.Done != nil {
		f.Done()
	}
}

// OnError implements InstructionListener.
func (f ListenerFuncs) OnError(interrupted bool) {
	if f.Error != nil {
		f.Error(interrupted)
	}
}
