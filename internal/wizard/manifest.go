package wizard

import (
	"errors"
	"fmt"

	"github.com/kode4food/feedlink/pkg/api"
)

// Manifest is the fixed, ordered list of wizard steps. Its order is both
// the display order and the transition order
type Manifest []*api.Step

var (
	ErrManifestEmpty  = errors.New("manifest has no steps")
	ErrDuplicateStep  = errors.New("duplicate step ID")
	ErrUnknownStep    = errors.New("unknown step")
	ErrUnboundCapture = errors.New("capture is not produced by any step")
)

// NewManifest validates the steps and returns them as a Manifest
func NewManifest(steps ...*api.Step) (Manifest, error) {
	if len(steps) == 0 {
		return nil, ErrManifestEmpty
	}
	seen := map[api.StepID]struct{}{}
	for _, s := range steps {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	m := Manifest(steps)
	if err := m.checkCaptures(); err != nil {
		return nil, err
	}
	return m, nil
}

// Contains reports whether id names a step of the manifest
func (m Manifest) Contains(id api.StepID) bool {
	return m.indexOf(id) >= 0
}

// Index returns the position of id. An unknown step is a programming error
// against a closed manifest and panics
func (m Manifest) Index(id api.StepID) int {
	idx := m.indexOf(id)
	if idx < 0 {
		panic(fmt.Errorf("%w: %s", ErrUnknownStep, id))
	}
	return idx
}

// Step returns the descriptor for id, panicking when id is unknown
func (m Manifest) Step(id api.StepID) *api.Step {
	return m[m.Index(id)]
}

// Next returns the step that follows id. The last step is followed by
// itself
func (m Manifest) Next(id api.StepID) api.StepID {
	idx := m.Index(id)
	if idx == len(m)-1 {
		return id
	}
	return m[idx+1].ID
}

// First returns the first step that is not a prerequisite, or the last
// step when every step is a prerequisite
func (m Manifest) First() api.StepID {
	for _, s := range m {
		if !s.Prerequisite {
			return s.ID
		}
	}
	return m.Last()
}

// Last returns the final step of the manifest
func (m Manifest) Last() api.StepID {
	return m[len(m)-1].ID
}

func (m Manifest) indexOf(id api.StepID) int {
	for i, s := range m {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// checkCaptures requires every capture a call reads to be produced by some
// step. The redirect URI is recorded by the redirect flow, not by a call
func (m Manifest) checkCaptures() error {
	for _, s := range m {
		if s.Call == nil {
			continue
		}
		if k := s.Call.TokenFrom; k != "" && !m.produces(k) {
			return fmt.Errorf("%w: %s reads %s", ErrUnboundCapture, s.ID, k)
		}
		for _, b := range s.Call.Bindings {
			if !m.produces(b.Capture) {
				return fmt.Errorf("%w: %s reads %s",
					ErrUnboundCapture, s.ID, b.Capture)
			}
		}
	}
	return nil
}

func (m Manifest) produces(key api.CaptureKey) bool {
	if key == api.CaptureRedirectURI {
		return true
	}
	for _, s := range m {
		if s.Produces(key) {
			return true
		}
	}
	return false
}
