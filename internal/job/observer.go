package job

// Observer receives job events on the job's goroutine. Implementations must not block.
type Observer interface {
	OnState(id string, state State)
	OnProgress(id string, progress Progress)
	OnOutcome(outcome Outcome)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	State    func(id string, state State)
	Progress func(id string, progress Progress)
	Outcome  func(outcome Outcome)
}

// OnState implements Observer.
func (f ObserverFuncs) OnState(id string, state State) {
	if f.State != nil {
		f.State(id, state)
	}
}

// OnProgress implements Observer.
func (f ObserverFuncs) OnProgress(id string, progress Progress) {
	if f.Progress != nil {
		f.Progress(id, progress)
	}
}

// OnOutcome implements Observer.
func (f ObserverFuncs) OnOutcome(outcome Outcome) {
	if f.Outcome != nil {
		f.Outcome(outcome)
	}
}
