package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/feedlink/internal/client"
	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/log"
)

type (
	// Wizard is the step orchestrator. All mutations are serialized; the
	// external call of Invoke runs outside the lock, guarded by the step's
	// in-flight state
	Wizard struct {
		manifest  Manifest
		client    client.Client
		steps     map[api.StepID]*stepState
		captures  captureSet
		states    topic.Topic[*api.WizardState]
		prod      topic.Producer[*api.WizardState]
		opts      *Options
		open      api.StepID
		redirect  string
		challenge string
		completed string
		closed    bool
		mu        sync.Mutex
	}

	// StateConsumer receives a fresh snapshot after every change
	StateConsumer = topic.Consumer[*api.WizardState]

	stepState struct {
		call      *api.CallRecord
		copyTimer *time.Timer
		copyGen   uint64
		completed bool
		copied    bool
	}
)

var (
	ErrNoCall       = errors.New("step has no API call")
	ErrCallInFlight = errors.New("call already in flight")
)

// New constructs a Wizard over the manifest. Prerequisite steps start
// complete and the first non-prerequisite step starts open
func New(m Manifest, cl client.Client, apps ...Applier) *Wizard {
	states := caravan.NewTopic[*api.WizardState]()
	w := &Wizard{
		manifest: m,
		client:   cl,
		steps:    make(map[api.StepID]*stepState, len(m)),
		captures: captureSet{},
		states:   states,
		prod:     states.NewProducer(),
		opts:     DefaultOptions(apps...),
		open:     m.First(),
	}
	for _, s := range m {
		w.steps[s.ID] = &stepState{completed: s.Prerequisite}
	}
	if w.opts.RedirectURI != "" {
		w.setRedirect(w.opts.RedirectURI)
	}
	return w
}

// Manifest returns the wizard's fixed step list
func (w *Wizard) Manifest() Manifest {
	return w.manifest
}

// Subscribe returns a consumer of the snapshots published after every
// change, in the order the changes were made. The caller must Close it
func (w *Wizard) Subscribe() StateConsumer {
	return w.states.NewConsumer()
}

// Open makes id the open step, or collapses the wizard if id is already
// open. Completion flags are untouched
func (w *Wizard) Open(id api.StepID) {
	w.manifest.Index(id)

	w.mu.Lock()
	if w.open == id {
		w.open = ""
	} else {
		w.open = id
	}
	w.mu.Unlock()

	w.notify()
}

// Advance marks id complete and opens the step after it. Marking is
// idempotent, and the last step is followed by itself. Only the open step
// or an already completed step can be advanced; any other step is left
// untouched and the currently open step is returned
func (w *Wizard) Advance(id api.StepID) api.StepID {
	next := w.manifest.Next(id)

	w.mu.Lock()
	st := w.steps[id]
	if !st.completed && w.open != id {
		open := w.open
		w.mu.Unlock()
		slog.Warn("Advance ignored for step that is not open",
			log.StepID(id))
		return open
	}
	if !st.completed {
		st.completed = true
		slog.Info("Step completed", log.StepID(id))
	}
	w.open = next
	w.mu.Unlock()

	w.notify()
	return next
}

// Render evaluates the request template of id against the current
// captures. Templates are never cached
func (w *Wizard) Render(id api.StepID) (*api.Request, error) {
	idx := w.manifest.Index(id)
	step := w.manifest[idx]
	if step.Call == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCall, id)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return renderRequest(step, w.captures.visibleTo(idx))
}

// Invoke performs the call bound to id and records the outcome as the
// step's latest call. A transport failure yields a failed record rather
// than an error; a non-2xx status yields a succeeded record. Invoking a
// step whose call is in flight returns ErrCallInFlight
func (w *Wizard) Invoke(
	ctx context.Context, id api.StepID,
) (*api.CallRecord, error) {
	idx := w.manifest.Index(id)
	step := w.manifest[idx]
	if step.Call == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCall, id)
	}

	w.mu.Lock()
	st := w.steps[id]
	if st.call != nil && st.call.State == api.CallInFlight {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrCallInFlight, id)
	}
	req, err := renderRequest(step, w.captures.visibleTo(idx))
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	pending := &api.CallRecord{
		ID:          uuid.NewString(),
		StepID:      id,
		Endpoint:    req.Endpoint,
		Method:      req.Method,
		Request:     req.Body,
		AccessToken: req.AccessToken,
		State:       api.CallInFlight,
		StartedAt:   w.opts.Now(),
	}
	st.call = pending
	w.mu.Unlock()
	w.notify()

	slog.Info("Invoking step call",
		log.StepID(id),
		log.CallID(pending.ID),
		log.Endpoint(req.Endpoint))

	res, err := w.client.Invoke(ctx, req)

	done := *pending
	done.FinishedAt = w.opts.Now()
	if err != nil {
		done.State = api.CallFailed
		done.Error = fmt.Sprintf(
			"An error occurred while making the API call: %v", err,
		)
	} else {
		done.State = api.CallSucceeded
		done.Status = res.Status
		done.Response = res.Body
	}

	w.mu.Lock()
	st.call = &done
	if done.State == api.CallSucceeded {
		w.storeCaptures(idx, extractCaptures(step.Call, done.Response))
	}
	w.mu.Unlock()
	w.notify()

	level := slog.LevelInfo
	if !done.IsSuccessStatus() {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "Step call finished",
		log.StepID(id),
		log.CallID(done.ID),
		log.State(done.State),
		log.StatusCode(done.Status))

	out := done
	return &out, nil
}

// LastCall returns the latest call record of id, or nil
func (w *Wizard) LastCall(id api.StepID) *api.CallRecord {
	w.manifest.Index(id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if c := w.steps[id].call; c != nil {
		res := *c
		return &res
	}
	return nil
}

// Captures returns a copy of every captured value
func (w *Wizard) Captures() map[api.CaptureKey]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.captures.all()
}

// State returns a snapshot of the wizard, rendering every step's request
// against the captures currently visible to it
func (w *Wizard) State() *api.WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// Transcript builds the archivable record of the session's calls
func (w *Wizard) Transcript() *api.Transcript {
	w.mu.Lock()
	defer w.mu.Unlock()

	calls := make([]*api.CallRecord, 0, len(w.manifest))
	for _, s := range w.manifest {
		if c := w.steps[s.ID].call; c != nil {
			rec := *c
			calls = append(calls, &rec)
		}
	}
	return &api.Transcript{
		ID:            uuid.NewString(),
		CompletedAt:   w.opts.Now(),
		Captures:      w.captures.all(),
		RedirectURI:   w.redirect,
		CompletionURL: w.completed,
		Calls:         calls,
	}
}

// Close stops any pending copied-indicator timers and ends the state
// stream
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.prod.Close()
	}
	for _, st := range w.steps {
		if st.copyTimer != nil {
			st.copyTimer.Stop()
			st.copyTimer = nil
		}
	}
}

func (w *Wizard) storeCaptures(idx int, values map[api.CaptureKey]string) {
	for k, v := range values {
		w.captures[k] = captured{value: v, producer: idx}
		slog.Debug("Value captured",
			log.StepID(w.manifest[idx].ID),
			log.Capture(k))
	}
}

func (w *Wizard) stateLocked() *api.WizardState {
	res := &api.WizardState{
		Captures:      w.captures.all(),
		Steps:         make([]*api.StepState, 0, len(w.manifest)),
		OpenStep:      w.open,
		RedirectURI:   w.redirect,
		Challenge:     w.challenge,
		CompletionURL: w.completed,
	}

	for idx, s := range w.manifest {
		st := w.steps[s.ID]
		view := &api.StepState{
			Step:      *s,
			Completed: st.completed,
			Open:      w.open == s.ID,
			Copied:    st.copied,
			CallState: api.CallIdle,
		}
		if st.call != nil {
			rec := *st.call
			view.Call = &rec
			view.CallState = rec.State
		}
		if s.Call != nil {
			req, err := renderRequest(s, w.captures.visibleTo(idx))
			if err != nil {
				slog.Warn("Failed to render step request",
					log.StepID(s.ID),
					log.Error(err))
			} else {
				view.Request = req
			}
		}
		res.Steps = append(res.Steps, view)
	}
	return res
}

// notify publishes a snapshot. Snapshot and send share one critical
// section, so consumers see snapshots in mutation order
func (w *Wizard) notify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	message.Send(w.prod, w.stateLocked())
}
