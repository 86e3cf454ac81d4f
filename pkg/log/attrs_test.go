package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/log"
)

type errStub string

func TestStepID(t *testing.T) {
	attr := log.StepID(api.StepID("create-connection"))
	assertAttrEqual(t, attr, "step_id", "create-connection")
}

func TestCallID(t *testing.T) {
	attr := log.CallID("call-123")
	assertAttrEqual(t, attr, "call_id", "call-123")
}

func TestState(t *testing.T) {
	attr := log.State(api.CallSucceeded)
	assertAttrEqual(t, attr, "state", "succeeded")
}

func TestCapture(t *testing.T) {
	attr := log.Capture(api.CaptureAccessToken)
	assertAttrEqual(t, attr, "capture", "access_token")
}

func TestEndpoint(t *testing.T) {
	attr := log.Endpoint("/bank_feeds/otp")
	assertAttrEqual(t, attr, "endpoint", "/bank_feeds/otp")
}

func TestStatusCode(t *testing.T) {
	attr := log.StatusCode(404)
	assert.Equal(t, "status_code", attr.Key)
	assert.Equal(t, int64(404), attr.Value.Int64())
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
