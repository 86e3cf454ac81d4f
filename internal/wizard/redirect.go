package wizard

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kode4food/feedlink/pkg/api"
)

const (
	challengeParam = "challenge"
	otpParam       = "otp"
)

var ErrNoRedirect = errors.New("no redirect_uri was provided")

// SetRedirect records the redirect target the wizard was reached with. It
// is captured as produced by the first step
func (w *Wizard) SetRedirect(uri string) {
	w.mu.Lock()
	w.setRedirect(uri)
	w.mu.Unlock()

	w.notify()
}

// Complete builds the handoff URL by appending the captured OTP to the
// redirect target. A missing OTP renders empty
func (w *Wizard) Complete() (string, error) {
	w.mu.Lock()
	if w.redirect == "" {
		w.mu.Unlock()
		return "", ErrNoRedirect
	}
	otp := w.captures[api.CaptureOTP].value
	w.completed = CompletionURL(w.redirect, otp)
	res := w.completed
	w.mu.Unlock()

	slog.Info("Onboarding handoff built",
		slog.String("completion_url", res))
	w.notify()
	return res, nil
}

// CompletionURL appends the otp query parameter to redirectURI, keeping
// the existing query exactly as given
func CompletionURL(redirectURI, otp string) string {
	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
		if strings.HasSuffix(redirectURI, "?") ||
			strings.HasSuffix(redirectURI, "&") {
			sep = ""
		}
	}
	return redirectURI + sep + otpParam + "=" + url.QueryEscape(otp)
}

// Challenge extracts the challenge token carried by a redirect target
func Challenge(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return ""
	}
	return u.Query().Get(challengeParam)
}

func (w *Wizard) setRedirect(uri string) {
	w.redirect = uri
	w.challenge = Challenge(uri)
	w.captures[api.CaptureRedirectURI] = captured{value: uri, producer: 0}
}
