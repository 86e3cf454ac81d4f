package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

type (
	StepID     string
	CaptureKey string

	// Step describes one entry of the wizard manifest
	Step struct {
		Call         *CallSpec `json:"call,omitempty"`
		ID           StepID    `json:"id"`
		Title        string    `json:"title"`
		Description  string    `json:"description,omitempty"`
		Prerequisite bool      `json:"prerequisite,omitempty"`
	}

	// CallSpec describes the external API call bound to a step. Body is a
	// JSON template; Bindings substitute captured values into it at render
	// time, and Captures extract values from a successful response
	CallSpec struct {
		Headers   map[string]string `json:"headers,omitempty"`
		Body      json.RawMessage   `json:"body,omitempty"`
		Endpoint  string            `json:"endpoint"`
		Method    string            `json:"method"`
		TokenFrom CaptureKey        `json:"token_from,omitempty"`
		Bindings  []Binding         `json:"bindings,omitempty"`
		Captures  []Capture         `json:"captures,omitempty"`
	}

	// Binding writes the value of a capture into the request body at Path
	Binding struct {
		Capture CaptureKey `json:"capture"`
		Path    string     `json:"path"`
	}

	// Capture reads the value at Path of a response body into Key
	Capture struct {
		Key  CaptureKey `json:"key"`
		Path string     `json:"path"`
	}
)

const (
	CaptureRedirectURI        CaptureKey = "redirect_uri"
	CaptureAccessToken        CaptureKey = "access_token"
	CaptureConnectionID       CaptureKey = "connection_id"
	CaptureBankFeedAccountID  CaptureKey = "bank_feed_account_id"
	CaptureOTP                CaptureKey = "otp"
	CaptureOTPExpiresAt       CaptureKey = "otp_expires_at"
	CaptureTransactionsSynced CaptureKey = "transactions_synced"
)

var (
	ErrStepIDEmpty       = errors.New("step ID empty")
	ErrStepTitleEmpty    = errors.New("step title empty")
	ErrStepEndpointEmpty = errors.New("step endpoint empty")
	ErrInvalidMethod     = errors.New("invalid HTTP method")
	ErrInvalidBody       = errors.New("step body is not valid JSON")
	ErrBindingInvalid    = errors.New("binding requires capture and path")
	ErrCaptureInvalid    = errors.New("capture requires key and path")
)

var validMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
}

// Validate checks that the step descriptor is well formed, defaulting the
// call method to POST when it is empty
func (s *Step) Validate() error {
	if s.ID == "" {
		return ErrStepIDEmpty
	}
	if s.Title == "" {
		return fmt.Errorf("%w: %s", ErrStepTitleEmpty, s.ID)
	}
	if s.Call == nil {
		return nil
	}
	return s.Call.validate(s.ID)
}

// Produces reports whether the step's call declares a capture for key
func (s *Step) Produces(key CaptureKey) bool {
	if s.Call == nil {
		return false
	}
	for _, c := range s.Call.Captures {
		if c.Key == key {
			return true
		}
	}
	return false
}

func (c *CallSpec) validate(id StepID) error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: %s", ErrStepEndpointEmpty, id)
	}
	if c.Method == "" {
		c.Method = http.MethodPost
	}
	if _, ok := validMethods[c.Method]; !ok {
		return fmt.Errorf("%w: %s for step %s", ErrInvalidMethod, c.Method, id)
	}
	if len(c.Body) > 0 && !gjson.ValidBytes(c.Body) {
		return fmt.Errorf("%w: %s", ErrInvalidBody, id)
	}
	for _, b := range c.Bindings {
		if b.Capture == "" || b.Path == "" {
			return fmt.Errorf("%w: %s", ErrBindingInvalid, id)
		}
	}
	for _, cp := range c.Captures {
		if cp.Key == "" || cp.Path == "" {
			return fmt.Errorf("%w: %s", ErrCaptureInvalid, id)
		}
	}
	return nil
}
