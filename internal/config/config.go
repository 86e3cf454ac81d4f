package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/feedlink/pkg/api"
)

type (
	// Config holds configuration settings for the onboarding service
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// External API
		Provider    api.ProviderConfig
		Credentials api.Credentials
		CallTimeout int64

		// Wizard
		CopyResetDelay int64

		// Transcript archive
		ArchiveBucketURL string
		ArchivePrefix    string

		ShutdownTimeout time.Duration
	}
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultBaseURL        = "https://api.rutter.com"
	DefaultVersionSegment = "versioned"
	DefaultVersionHeader  = "X-Rutter-Version"
	DefaultAPIVersion     = "2024-08-31"

	DefaultCallTimeout     = 30 * api.Second
	DefaultCopyResetDelay  = 2 * api.Second
	DefaultArchivePrefix   = "transcripts/"
	DefaultShutdownTimeout = 10 * time.Second

	MaxCallTimeout    = 10 * api.Minute
	MaxCopyResetDelay = api.Minute
)

var (
	ErrInvalidAPIPort        = errors.New("invalid API port")
	ErrInvalidCallTimeout    = errors.New("call timeout must be positive")
	ErrInvalidCopyResetDelay = errors.New("copy reset delay must be positive")
	ErrInvalidBaseURL        = errors.New("invalid provider base URL")
	ErrVersionSegmentEmpty   = errors.New("provider version segment empty")
	ErrMissingCredentials    = errors.New(
		"client ID and client secret are required",
	)
)

// NewDefaultConfig creates a configuration pointed at the production
// provider endpoint, with no credentials and no transcript archive
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:  DefaultAPIHost,
		APIPort:  DefaultAPIPort,
		LogLevel: "info",
		Provider: api.ProviderConfig{
			BaseURL:        DefaultBaseURL,
			VersionSegment: DefaultVersionSegment,
			VersionHeader:  DefaultVersionHeader,
			APIVersion:     DefaultAPIVersion,
		},
		CallTimeout:     DefaultCallTimeout,
		CopyResetDelay:  DefaultCopyResetDelay,
		ArchivePrefix:   DefaultArchivePrefix,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("RUTTER_BASE_URL", &c.Provider.BaseURL)
	loadEnvString("RUTTER_VERSION_SEGMENT", &c.Provider.VersionSegment)
	loadEnvString("RUTTER_VERSION_HEADER", &c.Provider.VersionHeader)
	loadEnvString("RUTTER_API_VERSION", &c.Provider.APIVersion)
	loadEnvString("RUTTER_CLIENT_ID", &c.Credentials.ClientID)
	loadEnvString("RUTTER_CLIENT_SECRET", &c.Credentials.ClientSecret)
	loadEnvString("ARCHIVE_BUCKET_URL", &c.ArchiveBucketURL)
	loadEnvString("ARCHIVE_PREFIX", &c.ArchivePrefix)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"CALL_TIMEOUT", &c.CallTimeout, 0, MaxCallTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"COPY_RESET_DELAY", &c.CopyResetDelay, 0, MaxCopyResetDelay,
	); err != nil {
		return err
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.CallTimeout <= 0 {
		return ErrInvalidCallTimeout
	}

	if c.CopyResetDelay <= 0 {
		return ErrInvalidCopyResetDelay
	}

	u, err := url.Parse(c.Provider.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Provider.BaseURL)
	}

	if c.Provider.VersionSegment == "" {
		return ErrVersionSegmentEmpty
	}

	if c.Credentials.ClientID == "" || c.Credentials.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// CallTimeoutDuration returns the external call timeout as a Duration
func (c *Config) CallTimeoutDuration() time.Duration {
	return time.Duration(c.CallTimeout) * time.Millisecond
}

// CopyResetDuration returns the copied-indicator reset delay as a Duration
func (c *Config) CopyResetDuration() time.Duration {
	return time.Duration(c.CopyResetDelay) * time.Millisecond
}

func loadEnvString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
