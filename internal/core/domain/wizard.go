package domain

// StepState is the derived state of one onboarding wizard step
type StepState string

const (
	StepNotStarted StepState = "not_started"
	StepInProgress StepState = "in_progress"
	StepComplete   StepState = "complete"
)

// StepStates holds the derived state of the three wizard steps
type StepStates struct {
	Connect   StepState `json:"connect"`
	Configure StepState `json:"configure"`
	Sync      StepState `json:"sync"`
}

// DeriveStepStates computes the wizard step states from the two state
// primitives: whether a source was created and whether configuration
// was completed. Step states are always derived, never stored.
//
// The Sync step has no reachable complete state: the wizard resets and
// closes on the sync component's completion callback instead.
func DeriveStepStates(hasSource, configured bool) StepStates {
	states := StepStates{
		Connect:   StepInProgress,
		Configure: StepNotStarted,
		Sync:      StepNotStarted,
	}
	if !hasSource {
		return states
	}
	states.Connect = StepComplete
	if configured {
		states.Configure = StepComplete
		states.Sync = StepInProgress
	} else {
		states.Configure = StepInProgress
	}
	return states
}
