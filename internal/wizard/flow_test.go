package wizard_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/feedlink/internal/assert/helpers"
	"github.com/kode4food/feedlink/internal/client"
	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
)

type sentRequest struct {
	path  string
	token string
	body  map[string]any
}

type fakeProvider struct {
	sent []sentRequest
	mu   sync.Mutex
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	p.mu.Lock()
	p.sent = append(p.sent, sentRequest{
		path:  r.URL.Path,
		token: r.URL.Query().Get("access_token"),
		body:  body,
	})
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/versioned/connections/create":
		_, _ = fmt.Fprintf(w,
			`{"connection":{"id":"conn_1","access_token":%q}}`,
			helpers.TestAccessToken)
	case "/versioned/bank_feeds/accounts":
		_, _ = fmt.Fprintf(w, `{"bank_feed_account":{"id":%q}}`,
			helpers.TestAccountID)
	case "/versioned/bank_feeds/transactions":
		_, _ = w.Write([]byte(`{"success":true,"transactions_synced":1}`))
	case "/versioned/bank_feeds/otp":
		_, _ = fmt.Fprintf(w, `{"bank_feed_otp":{"otp":%q}}`, helpers.TestOTP)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}
}

func (p *fakeProvider) last(path string) sentRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.sent) - 1; i >= 0; i-- {
		if p.sent[i].path == path {
			return p.sent[i]
		}
	}
	return sentRequest{}
}

func newLiveWizard(t *testing.T) (*wizard.Wizard, *fakeProvider) {
	t.Helper()
	provider := &fakeProvider{}
	server := httptest.NewServer(provider)
	t.Cleanup(server.Close)

	cl := client.NewHTTPClient(api.ProviderConfig{
		BaseURL:        server.URL,
		VersionSegment: "versioned",
		VersionHeader:  "X-Rutter-Version",
		APIVersion:     "2024-08-31",
	}, api.Credentials{
		ClientID:     "fake-id",
		ClientSecret: "fake-secret",
	}, 5*time.Second)

	w := wizard.New(wizard.DefaultManifest(), cl,
		wizard.WithRedirectURI(helpers.TestRedirectURI),
	)
	t.Cleanup(w.Close)
	return w, provider
}

func TestTokenFlowsIntoAccountsRequest(t *testing.T) {
	w, provider := newLiveWizard(t)
	ctx := context.Background()

	rec, err := w.Invoke(ctx, wizard.StepCreateConnection)
	require.NoError(t, err)
	require.Equal(t, api.CallSucceeded, rec.State)
	assert.Equal(t, helpers.TestAccessToken,
		w.Captures()[api.CaptureAccessToken])
	w.Advance(wizard.StepCreateConnection)

	rec, err = w.Invoke(ctx, wizard.StepAccounts)
	require.NoError(t, err)
	assert.Equal(t, helpers.TestAccessToken, rec.AccessToken)

	sent := provider.last("/versioned/bank_feeds/accounts")
	assert.Equal(t, helpers.TestAccessToken, sent.token)
	assert.Contains(t, sent.body, "bank_feed_account")
}

func TestFullOnboardingFlow(t *testing.T) {
	w, provider := newLiveWizard(t)
	ctx := context.Background()

	for _, s := range w.Manifest() {
		if s.Call != nil {
			rec, err := w.Invoke(ctx, s.ID)
			require.NoError(t, err)
			require.Equal(t, api.CallSucceeded, rec.State, "step %s", s.ID)
			require.Equal(t, http.StatusOK, rec.Status, "step %s", s.ID)
		}
		w.Advance(s.ID)
	}

	sent := provider.last("/versioned/bank_feeds/transactions")
	txs, ok := sent.body["bank_feed_transactions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, helpers.TestAccountID, txs["bank_feed_account_id"])
	assert.Equal(t, helpers.TestAccessToken, sent.token)

	url, err := w.Complete()
	require.NoError(t, err)
	assert.Equal(t,
		"https://link.example.com/ibf_redirect?challenge=test-challenge"+
			"&otp=01HMQZP",
		url,
	)

	state := w.State()
	assert.True(t, state.AllCompleted())
	assert.Equal(t, wizard.StepComplete, state.OpenStep)
}

func TestLiveTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	cl := client.NewHTTPClient(api.ProviderConfig{
		BaseURL:        base,
		VersionSegment: "versioned",
	}, api.Credentials{ClientID: "a", ClientSecret: "b"}, time.Second)
	w := wizard.New(wizard.DefaultManifest(), cl)

	rec, err := w.Invoke(context.Background(), wizard.StepCreateConnection)
	require.NoError(t, err)
	assert.Equal(t, api.CallFailed, rec.State)
	assert.Contains(t, rec.Error, "An error occurred while making the API call")
	assert.NotContains(t, w.Captures(), api.CaptureAccessToken)
}

func TestLiveEmptyBodyFailsCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	))
	t.Cleanup(server.Close)

	cl := client.NewHTTPClient(api.ProviderConfig{
		BaseURL:        server.URL,
		VersionSegment: "versioned",
	}, api.Credentials{ClientID: "a", ClientSecret: "b"}, time.Second)
	w := wizard.New(wizard.DefaultManifest(), cl)
	t.Cleanup(w.Close)

	rec, err := w.Invoke(context.Background(), wizard.StepCreateConnection)
	require.NoError(t, err)
	assert.Equal(t, api.CallFailed, rec.State)
	assert.Contains(t, rec.Error, client.ErrInvalidResponse.Error())
	assert.Empty(t, rec.Response)
	assert.NotContains(t, w.Captures(), api.CaptureAccessToken)
}
