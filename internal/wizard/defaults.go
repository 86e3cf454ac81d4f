package wizard

import (
	"encoding/json"
	"net/http"

	"github.com/kode4food/feedlink/pkg/api"
)

const (
	StepRedirect         api.StepID = "rutter-redirect"
	StepAuth             api.StepID = "auth"
	StepCreateConnection api.StepID = "create-connection"
	StepAccounts         api.StepID = "accounts"
	StepTransactions     api.StepID = "transactions"
	StepOTP              api.StepID = "otp"
	StepComplete         api.StepID = "complete"
)

const accountBody = `{
  "bank_feed_account": {
    "account_id": "account-id",
    "internal_bank_account_id": "bank-account-id",
    "transaction_start_date": "2024-02-02T00:00:00.000Z",
    "bank_account_type": "bank",
    "currency_code": "USD",
    "name": "Example Bank Account",
    "available_balance": 1546.23,
    "bank_account_number": "182237382",
    "current_balance": 1833.21,
    "routing_number": "123456789"
  }
}`

const transactionsBody = `{
  "bank_feed_transactions": {
    "bank_feed_account_id": "",
    "current_balance": 1234.56,
    "transactions": [
      {
        "transaction_id": "ACRAF23DB3C4",
        "posted_at": "2024-02-02T02:34:56.000Z",
        "transaction_date": "2024-02-02T02:34:56.000Z",
        "amount": -300,
        "description": "Office supplies",
        "memo": "Staples",
        "transaction_type": "debit",
        "debit_credit_memo": "DEBIT"
      }
    ]
  }
}`

// DefaultManifest returns the seven-step bank feed onboarding flow
func DefaultManifest() Manifest {
	m, err := NewManifest(
		&api.Step{
			ID:    StepRedirect,
			Title: "Rutter Redirects to Your Login Page",
			Description: "The customer selected your institution and was " +
				"redirected here with a redirect URI and challenge",
			Prerequisite: true,
		},
		&api.Step{
			ID:           StepAuth,
			Title:        "Customer Logs In",
			Description:  "The customer authenticated with your system",
			Prerequisite: true,
		},
		&api.Step{
			ID:          StepCreateConnection,
			Title:       "Create a Bank Feeds Connection",
			Description: "Create a connection holding the customer's data",
			Call: &api.CallSpec{
				Endpoint: "/connections/create",
				Method:   http.MethodPost,
				Body:     json.RawMessage(`{"platform":"INTUIT_BANK_FEEDS"}`),
				Captures: []api.Capture{
					{
						Key:  api.CaptureAccessToken,
						Path: "connection.access_token",
					},
					{Key: api.CaptureConnectionID, Path: "connection.id"},
				},
			},
		},
		&api.Step{
			ID:          StepAccounts,
			Title:       "Create Bank Feed Accounts",
			Description: "Register the customer's bank account",
			Call: &api.CallSpec{
				Endpoint:  "/bank_feeds/accounts",
				Method:    http.MethodPost,
				Body:      json.RawMessage(accountBody),
				TokenFrom: api.CaptureAccessToken,
				Captures: []api.Capture{
					{
						Key:  api.CaptureBankFeedAccountID,
						Path: "bank_feed_account.id",
					},
				},
			},
		},
		&api.Step{
			ID:          StepTransactions,
			Title:       "Send Bank Feed Transactions",
			Description: "Sync transactions for the bank feed account",
			Call: &api.CallSpec{
				Endpoint:  "/bank_feeds/transactions",
				Method:    http.MethodPost,
				Body:      json.RawMessage(transactionsBody),
				TokenFrom: api.CaptureAccessToken,
				Bindings: []api.Binding{
					{
						Capture: api.CaptureBankFeedAccountID,
						Path:    "bank_feed_transactions.bank_feed_account_id",
					},
				},
				Captures: []api.Capture{
					{
						Key:  api.CaptureTransactionsSynced,
						Path: "transactions_synced",
					},
				},
			},
		},
		&api.Step{
			ID:    StepOTP,
			Title: "Generate OTP",
			Description: "Generate a one-time passcode signalling that " +
				"authentication succeeded",
			Call: &api.CallSpec{
				Endpoint:  "/bank_feeds/otp",
				Method:    http.MethodPost,
				TokenFrom: api.CaptureAccessToken,
				Captures: []api.Capture{
					{Key: api.CaptureOTP, Path: "bank_feed_otp.otp"},
					{
						Key:  api.CaptureOTPExpiresAt,
						Path: "bank_feed_otp.expires_at",
					},
				},
			},
		},
		&api.Step{
			ID:    StepComplete,
			Title: "Complete Login",
			Description: "Redirect back to Rutter with the OTP appended " +
				"to the redirect URI",
		},
	)
	if err != nil {
		panic(err)
	}
	return m
}
