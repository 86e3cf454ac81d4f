package wizard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/feedlink/internal/assert/helpers"
	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
)

func TestCopyRequestBody(t *testing.T) {
	w := helpers.NewTestWizard(helpers.NewMockClient())
	defer w.Close()

	text, err := w.Copy(wizard.StepCreateConnection, api.CopyTargetRequest)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"platform\": \"INTUIT_BANK_FEEDS\"\n}", text)
	assert.True(t, w.Copied(wizard.StepCreateConnection))
}

func TestCopyResponseRequiresSuccess(t *testing.T) {
	cl := helpers.NewMockClient()
	helpers.SetHappyPath(cl)
	w := helpers.NewTestWizard(cl)
	defer w.Close()

	_, err := w.Copy(wizard.StepOTP, api.CopyTargetResponse)
	assert.ErrorIs(t, err, wizard.ErrNothingToCopy)
	assert.False(t, w.Copied(wizard.StepOTP))

	_, err = w.Invoke(context.Background(), wizard.StepOTP)
	require.NoError(t, err)

	text, err := w.Copy(wizard.StepOTP, api.CopyTargetResponse)
	require.NoError(t, err)
	assert.Contains(t, text, "\"otp\": \""+helpers.TestOTP+"\"")
}

func TestCopyErrors(t *testing.T) {
	w := helpers.NewTestWizard(helpers.NewMockClient())
	defer w.Close()

	_, err := w.Copy(wizard.StepOTP, api.CopyTargetRequest)
	assert.ErrorIs(t, err, wizard.ErrNothingToCopy)

	_, err = w.Copy(wizard.StepAuth, api.CopyTargetRequest)
	assert.ErrorIs(t, err, wizard.ErrNoCall)

	_, err = w.Copy(wizard.StepAccounts, "clipboard")
	assert.ErrorIs(t, err, wizard.ErrInvalidCopyTarget)
}

func TestCopiedIndicatorResets(t *testing.T) {
	w := helpers.NewTestWizard(helpers.NewMockClient(),
		wizard.WithCopyResetDelay(30*time.Millisecond),
	)
	defer w.Close()

	_, err := w.Copy(wizard.StepAccounts, api.CopyTargetRequest)
	require.NoError(t, err)
	assert.True(t, w.Copied(wizard.StepAccounts))

	assert.Eventually(t, func() bool {
		return !w.Copied(wizard.StepAccounts)
	}, time.Second, 5*time.Millisecond)
}

func TestCopySupersedesTimer(t *testing.T) {
	w := helpers.NewTestWizard(helpers.NewMockClient(),
		wizard.WithCopyResetDelay(200*time.Millisecond),
	)
	defer w.Close()

	_, err := w.Copy(wizard.StepAccounts, api.CopyTargetRequest)
	require.NoError(t, err)
	time.Sleep(120 * time.Millisecond)

	_, err = w.Copy(wizard.StepAccounts, api.CopyTargetRequest)
	require.NoError(t, err)
	time.Sleep(120 * time.Millisecond)

	assert.True(t, w.Copied(wizard.StepAccounts))
	assert.Eventually(t, func() bool {
		return !w.Copied(wizard.StepAccounts)
	}, time.Second, 5*time.Millisecond)
}
