package helpers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kode4food/feedlink/pkg/api"
)

// MockClient is a simple mock implementation of client.Client for testing
type MockClient struct {
	responses map[api.StepID]*api.Response
	errors    map[api.StepID]error
	gates     map[api.StepID]chan struct{}
	started   map[api.StepID]chan struct{}
	requests  []*api.Request
	mu        sync.Mutex
}

// NewMockClient creates a mock client that allows setting responses and
// errors for specific step IDs
func NewMockClient() *MockClient {
	return &MockClient{
		responses: map[api.StepID]*api.Response{},
		errors:    map[api.StepID]error{},
		gates:     map[api.StepID]chan struct{}{},
		started:   map[api.StepID]chan struct{}{},
	}
}

// Invoke records the request and returns the configured response or error.
// A gated step blocks until Release is called
func (c *MockClient) Invoke(
	_ context.Context, req *api.Request,
) (*api.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	gate := c.gates[req.StepID]
	started := c.started[req.StepID]
	c.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.errors[req.StepID]; ok {
		return nil, err
	}
	if res, ok := c.responses[req.StepID]; ok {
		return res, nil
	}
	return &api.Response{Status: 200, Body: json.RawMessage("{}")}, nil
}

// SetResponse configures the mock to answer a step with status and body
func (c *MockClient) SetResponse(stepID api.StepID, status int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[stepID] = &api.Response{
		Status: status,
		Body:   json.RawMessage(body),
	}
}

// SetError configures the mock to return an error for a step
func (c *MockClient) SetError(stepID api.StepID, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[stepID] = err
}

// ClearError removes any configured error for a step
func (c *MockClient) ClearError(stepID api.StepID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.errors, stepID)
}

// Gate makes calls for stepID block until Release. The returned channel
// receives once a gated call has started
func (c *MockClient) Gate(stepID api.StepID) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gates[stepID] = make(chan struct{})
	started := make(chan struct{}, 1)
	c.started[stepID] = started
	return started
}

// Release unblocks every call waiting on the gate for stepID
func (c *MockClient) Release(stepID api.StepID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gate, ok := c.gates[stepID]; ok {
		close(gate)
		delete(c.gates, stepID)
	}
}

// Requests returns every request received, in order
func (c *MockClient) Requests() []*api.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]*api.Request, len(c.requests))
	copy(res, c.requests)
	return res
}

// LastRequest returns the latest request for stepID, or nil
func (c *MockClient) LastRequest(stepID api.StepID) *api.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.requests) - 1; i >= 0; i-- {
		if c.requests[i].StepID == stepID {
			return c.requests[i]
		}
	}
	return nil
}
