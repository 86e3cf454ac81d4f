package wizard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/kode4food/feedlink/pkg/api"
)

type (
	// captured remembers which manifest position produced a value
	captured struct {
		value    string
		producer int
	}

	captureSet map[api.CaptureKey]captured
)

var ErrBindingFailed = errors.New("failed to bind capture into request body")

// visibleTo returns the captures produced strictly before position idx
func (c captureSet) visibleTo(idx int) map[api.CaptureKey]string {
	res := map[api.CaptureKey]string{}
	for k, v := range c {
		if v.producer < idx {
			res[k] = v.value
		}
	}
	return res
}

func (c captureSet) all() map[api.CaptureKey]string {
	res := make(map[api.CaptureKey]string, len(c))
	for k, v := range c {
		res[k] = v.value
	}
	return res
}

// renderRequest evaluates a step's call template against the captures
// visible to it. Missing captures render as empty strings
func renderRequest(
	step *api.Step, visible map[api.CaptureKey]string,
) (*api.Request, error) {
	spec := step.Call
	body := bytes.Clone(spec.Body)
	if len(body) == 0 && len(spec.Bindings) > 0 {
		body = []byte("{}")
	}

	for _, b := range spec.Bindings {
		var err error
		body, err = sjson.SetBytes(body, b.Path, visible[b.Capture])
		if err != nil {
			return nil, fmt.Errorf("%w: %s at %s: %w",
				ErrBindingFailed, b.Capture, b.Path, err)
		}
	}

	var headers map[string]string
	if len(spec.Headers) > 0 {
		headers = maps.Clone(spec.Headers)
	}

	req := &api.Request{
		StepID:   step.ID,
		Endpoint: spec.Endpoint,
		Method:   spec.Method,
		Headers:  headers,
		Body:     json.RawMessage(body),
	}
	if spec.TokenFrom != "" {
		req.AccessToken = visible[spec.TokenFrom]
	}
	return req, nil
}

// extractCaptures reads every declared capture that is present in body.
// Absent or null paths are skipped
func extractCaptures(
	spec *api.CallSpec, body json.RawMessage,
) map[api.CaptureKey]string {
	res := map[api.CaptureKey]string{}
	for _, c := range spec.Captures {
		r := gjson.GetBytes(body, c.Path)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		res[c.Key] = r.String()
	}
	return res
}

func prettyJSON(data json.RawMessage) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: invalid JSON", ErrNothingToCopy)
	}
	return strings.TrimRight(string(pretty.Pretty(data)), "\n"), nil
}
