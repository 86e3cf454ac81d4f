package wizard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/feedlink/internal/assert/helpers"
	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
)

func TestCompletionURL(t *testing.T) {
	assert.Equal(t,
		"https://link.example.com/ibf_redirect?challenge=test-challenge"+
			"&otp=01HMQZP",
		wizard.CompletionURL(helpers.TestRedirectURI, "01HMQZP"),
	)
	assert.Equal(t, "https://x.test/cb?otp=abc",
		wizard.CompletionURL("https://x.test/cb", "abc"))
	assert.Equal(t, "https://x.test/cb?otp=abc",
		wizard.CompletionURL("https://x.test/cb?", "abc"))
	assert.Equal(t, "https://x.test/cb?a=1&otp=",
		wizard.CompletionURL("https://x.test/cb?a=1", ""))
}

func TestChallenge(t *testing.T) {
	assert.Equal(t, "test-challenge", wizard.Challenge(helpers.TestRedirectURI))
	assert.Empty(t, wizard.Challenge("https://x.test/cb"))
	assert.Empty(t, wizard.Challenge("%zz"))
}

func TestCompleteUsesCapturedOTP(t *testing.T) {
	cl := helpers.NewMockClient()
	helpers.SetHappyPath(cl)
	w := helpers.NewTestWizard(cl)

	_, err := w.Invoke(context.Background(), wizard.StepOTP)
	require.NoError(t, err)

	url, err := w.Complete()
	require.NoError(t, err)
	assert.Equal(t,
		"https://link.example.com/ibf_redirect?challenge=test-challenge"+
			"&otp=01HMQZP",
		url,
	)
	assert.Equal(t, url, w.State().CompletionURL)
}

func TestCompleteWithoutOTPIsPermitted(t *testing.T) {
	w := helpers.NewTestWizard(helpers.NewMockClient())

	url, err := w.Complete()
	require.NoError(t, err)
	assert.Equal(t, helpers.TestRedirectURI+"&otp=", url)
}

func TestCompleteRequiresRedirect(t *testing.T) {
	w := wizard.New(wizard.DefaultManifest(), helpers.NewMockClient())

	_, err := w.Complete()
	assert.ErrorIs(t, err, wizard.ErrNoRedirect)

	w.SetRedirect("https://link.example.com/ibf_redirect?challenge=other")
	state := w.State()
	assert.Equal(t, "other", state.Challenge)
	assert.Equal(t,
		"https://link.example.com/ibf_redirect?challenge=other",
		state.Captures[api.CaptureRedirectURI],
	)

	_, err = w.Complete()
	assert.NoError(t, err)
}
