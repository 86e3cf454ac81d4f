package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/log"
)

type (
	// Client performs a single call against the external API. Any HTTP
	// status is a Response; errors are reserved for calls that never
	// produced a usable response
	Client interface {
		Invoke(context.Context, *api.Request) (*api.Response, error)
	}

	// HTTPClient is the Client for the versioned provider REST API
	HTTPClient struct {
		rest     *resty.Client
		provider api.ProviderConfig
	}
)

const (
	accessTokenParam = "access_token"
	contentTypeJSON  = "application/json"
)

var (
	ErrRequestFailed   = errors.New("API request failed")
	ErrInvalidResponse = errors.New("API returned a malformed response body")
)

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a Client for the given provider. Credentials are
// injected here and never read from the environment
func NewHTTPClient(
	provider api.ProviderConfig, creds api.Credentials, timeout time.Duration,
) *HTTPClient {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(provider.BaseURL, "/")).
		SetTimeout(timeout).
		SetBasicAuth(creds.ClientID, creds.ClientSecret)

	return &HTTPClient{
		rest:     rest,
		provider: provider,
	}
}

// Invoke performs exactly one call with no automatic retry
func (c *HTTPClient) Invoke(
	ctx context.Context, req *api.Request,
) (*api.Response, error) {
	r := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeJSON).
		SetHeader("Accept", contentTypeJSON)

	if c.provider.VersionHeader != "" {
		r.SetHeader(c.provider.VersionHeader, c.provider.APIVersion)
	}
	r.SetHeaders(req.Headers)

	if req.AccessToken != "" {
		r.SetQueryParam(accessTokenParam, req.AccessToken)
	}
	if len(req.Body) > 0 {
		r.SetBody([]byte(req.Body))
	}

	path := c.Path(req.Endpoint)
	start := time.Now()
	resp, err := r.Execute(req.Method, path)
	dur := time.Since(start)

	if err != nil {
		slog.Error("API request failed",
			log.StepID(req.StepID),
			log.Endpoint(req.Endpoint),
			slog.Duration("duration", dur),
			log.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	body, err := parseBody(resp.Body())
	if err != nil {
		slog.Error("Failed to parse API response",
			log.StepID(req.StepID),
			log.Endpoint(req.Endpoint),
			log.StatusCode(resp.StatusCode()),
			log.Error(err))
		return nil, err
	}

	if !resp.IsSuccess() {
		slog.Warn("API returned non-success status",
			log.StepID(req.StepID),
			log.Endpoint(req.Endpoint),
			log.StatusCode(resp.StatusCode()),
			slog.Duration("duration", dur))
	} else {
		slog.Debug("API request completed",
			log.StepID(req.StepID),
			log.Endpoint(req.Endpoint),
			log.StatusCode(resp.StatusCode()),
			slog.Duration("duration", dur))
	}

	return &api.Response{
		Status: resp.StatusCode(),
		Body:   body,
	}, nil
}

// Path returns the versioned request path for an endpoint, relative to
// the provider base URL
func (c *HTTPClient) Path(endpoint string) string {
	segment := strings.Trim(c.provider.VersionSegment, "/")
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	if segment == "" {
		return endpoint
	}
	return "/" + segment + endpoint
}

// parseBody requires a JSON document; an empty body is malformed
func parseBody(body []byte) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}
	if !gjson.Valid(trimmed) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResponse, truncate(trimmed))
	}
	return json.RawMessage(trimmed), nil
}

func truncate(s string) string {
	const maxLen = 64
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
