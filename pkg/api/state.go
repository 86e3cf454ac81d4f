package api

import "time"

type (
	// StepState is the observable state of one step
	StepState struct {
		Step
		Call      *CallRecord `json:"last_call,omitempty"`
		Request   *Request    `json:"request,omitempty"`
		CallState CallState   `json:"call_state"`
		Completed bool        `json:"completed"`
		Open      bool        `json:"open"`
		Copied    bool        `json:"copied"`
	}

	// WizardState is a point-in-time snapshot of the whole wizard
	WizardState struct {
		Captures      map[CaptureKey]string `json:"captures"`
		Steps         []*StepState          `json:"steps"`
		OpenStep      StepID                `json:"open_step,omitempty"`
		RedirectURI   string                `json:"redirect_uri,omitempty"`
		Challenge     string                `json:"challenge,omitempty"`
		CompletionURL string                `json:"completion_url,omitempty"`
	}

	// Transcript is the archived record of a finished onboarding session
	Transcript struct {
		CompletedAt   time.Time             `json:"completed_at"`
		Captures      map[CaptureKey]string `json:"captures"`
		ID            string                `json:"id"`
		RedirectURI   string                `json:"redirect_uri"`
		CompletionURL string                `json:"completion_url"`
		Calls         []*CallRecord         `json:"calls"`
	}
)

// StepState returns the state of the step with the given ID, or nil
func (s *WizardState) StepState(id StepID) *StepState {
	for _, st := range s.Steps {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// AllCompleted reports whether every step is marked complete
func (s *WizardState) AllCompleted() bool {
	for _, st := range s.Steps {
		if !st.Completed {
			return false
		}
	}
	return true
}
