package api

import (
	"encoding/json"
	"time"
)

type (
	// CallState is the lifecycle of a step's latest API call
	CallState string

	// Request is a step's call rendered against the current captures. It
	// is what the API call adapter sends
	Request struct {
		Headers     map[string]string `json:"headers,omitempty"`
		Body        json.RawMessage   `json:"body,omitempty"`
		StepID      StepID            `json:"step_id"`
		Endpoint    string            `json:"endpoint"`
		Method      string            `json:"method"`
		AccessToken string            `json:"access_token,omitempty"`
	}

	// Response is whatever the external API answered, whatever the status
	Response struct {
		Body   json.RawMessage `json:"body"`
		Status int             `json:"status"`
	}

	// CallRecord is the latest invocation of a step's call. A new
	// invocation replaces the record; records are never mutated once
	// handed out
	CallRecord struct {
		StartedAt   time.Time       `json:"started_at"`
		FinishedAt  time.Time       `json:"finished_at,omitzero"`
		Request     json.RawMessage `json:"request,omitempty"`
		Response    json.RawMessage `json:"response,omitempty"`
		ID          string          `json:"id"`
		StepID      StepID          `json:"step_id"`
		Endpoint    string          `json:"endpoint"`
		Method      string          `json:"method"`
		AccessToken string          `json:"access_token,omitempty"`
		State       CallState       `json:"state"`
		Error       string          `json:"error,omitempty"`
		Status      int             `json:"status,omitempty"`
	}

	// ProviderConfig locates the external API
	ProviderConfig struct {
		BaseURL        string `json:"base_url"`
		VersionSegment string `json:"version_segment"`
		VersionHeader  string `json:"version_header"`
		APIVersion     string `json:"api_version"`
	}

	// Credentials are the client identifier and secret used for Basic auth
	Credentials struct {
		ClientID     string `json:"-"`
		ClientSecret string `json:"-"`
	}
)

const (
	CallIdle      CallState = "idle"
	CallInFlight  CallState = "in_flight"
	CallSucceeded CallState = "succeeded"
	CallFailed    CallState = "failed"
)

const (
	Millisecond int64 = 1
	Second            = Millisecond * 1000
	Minute            = Second * 60
)

// IsSuccessStatus reports whether the recorded HTTP status is 2xx. A
// succeeded call may still carry a non-2xx status
func (r *CallRecord) IsSuccessStatus() bool {
	return r.State == CallSucceeded && r.Status >= 200 && r.Status < 300
}
