package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/kode4food/feedlink/pkg/api"
)

var (
	ErrNothingToCopy     = errors.New("nothing to copy")
	ErrInvalidCopyTarget = errors.New("invalid copy target")
)

// Copy returns the indented JSON of the step's rendered request body or of
// its latest response, and sets the step's copied indicator. The indicator
// resets after the configured delay; a later copy restarts the delay
func (w *Wizard) Copy(id api.StepID, target api.CopyTarget) (string, error) {
	idx := w.manifest.Index(id)
	step := w.manifest[idx]

	w.mu.Lock()
	text, err := w.copyText(step, idx, target)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.markCopied(w.steps[id])
	w.mu.Unlock()

	w.notify()
	return text, nil
}

// Copied reports whether the copied indicator of id is set
func (w *Wizard) Copied(id api.StepID) bool {
	w.manifest.Index(id)

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[id].copied
}

func (w *Wizard) copyText(
	step *api.Step, idx int, target api.CopyTarget,
) (string, error) {
	switch target {
	case api.CopyTargetRequest:
		if step.Call == nil {
			return "", fmt.Errorf("%w: %s", ErrNoCall, step.ID)
		}
		req, err := renderRequest(step, w.captures.visibleTo(idx))
		if err != nil {
			return "", err
		}
		if len(req.Body) == 0 {
			return "", fmt.Errorf("%w: %s has no request body",
				ErrNothingToCopy, step.ID)
		}
		return prettyJSON(req.Body)

	case api.CopyTargetResponse:
		call := w.steps[step.ID].call
		if call == nil || call.State != api.CallSucceeded {
			return "", fmt.Errorf("%w: %s has no response",
				ErrNothingToCopy, step.ID)
		}
		return prettyJSON(call.Response)

	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCopyTarget, target)
	}
}

func (w *Wizard) markCopied(st *stepState) {
	if st.copyTimer != nil {
		st.copyTimer.Stop()
	}
	st.copied = true
	st.copyGen++
	gen := st.copyGen
	st.copyTimer = time.AfterFunc(w.opts.CopyResetDelay, func() {
		w.resetCopied(st, gen)
	})
}

func (w *Wizard) resetCopied(st *stepState, gen uint64) {
	w.mu.Lock()
	if st.copyGen != gen {
		w.mu.Unlock()
		return
	}
	st.copied = false
	st.copyTimer = nil
	w.mu.Unlock()

	w.notify()
}
