package helpers

import (
	"net/http"
	"time"

	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
)

const (
	TestRedirectURI = "https://link.example.com/ibf_redirect" +
		"?challenge=test-challenge"
	TestAccessToken = "at_01HMQZP46WQDZ9JBZJS52TN5GE"
	TestAccountID   = "bfa_01HMQZP46BS69PN4PKTGYK6HMQ"
	TestOTP         = "01HMQZP"
)

// NewTestWizard builds a wizard over the default manifest, reached through
// TestRedirectURI, with a short copied-indicator delay
func NewTestWizard(cl *MockClient, apps ...wizard.Applier) *wizard.Wizard {
	opts := append([]wizard.Applier{
		wizard.WithRedirectURI(TestRedirectURI),
		wizard.WithCopyResetDelay(50 * time.Millisecond),
	}, apps...)
	return wizard.New(wizard.DefaultManifest(), cl, opts...)
}

// SetHappyPath configures cl with successful responses for every call of
// the default manifest
func SetHappyPath(cl *MockClient) {
	cl.SetResponse(wizard.StepCreateConnection, http.StatusOK, `{
		"connection": {
			"id": "conn_01HMQZP46BS69PN4PKTGYK6HMQ",
			"access_token": "`+TestAccessToken+`",
			"name": "Example Connection"
		}
	}`)
	cl.SetResponse(wizard.StepAccounts, http.StatusOK, `{
		"bank_feed_account": {
			"id": "`+TestAccountID+`",
			"feed_status": "active"
		}
	}`)
	cl.SetResponse(wizard.StepTransactions, http.StatusOK,
		`{"success": true, "transactions_synced": 1}`,
	)
	cl.SetResponse(wizard.StepOTP, http.StatusOK, `{
		"bank_feed_otp": {
			"expires_at": "2024-02-29T00:00:00.000Z",
			"otp": "`+TestOTP+`"
		}
	}`)
}

// StepIDs returns the IDs of a state's steps in manifest order
func StepIDs(state *api.WizardState) []api.StepID {
	res := make([]api.StepID, 0, len(state.Steps))
	for _, s := range state.Steps {
		res = append(res, s.ID)
	}
	return res
}
