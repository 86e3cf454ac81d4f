package api

type (
	// StateMessage is pushed to WebSocket clients after every change
	StateMessage struct {
		Type      string       `json:"type"`
		Data      *WizardState `json:"data"`
		Timestamp int64        `json:"timestamp"`
	}
)

const StateMessageType = "state"
