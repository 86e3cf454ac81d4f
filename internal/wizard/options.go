package wizard

import "time"

type (
	// Options contains optional parameters for constructing a Wizard
	Options struct {
		RedirectURI    string
		CopyResetDelay time.Duration
		Now            func() time.Time
	}

	// Applier mutates Options during New
	Applier func(*Options)
)

// DefaultCopyResetDelay is how long a copied indicator stays set
const DefaultCopyResetDelay = 2 * time.Second

// DefaultOptions returns an Options instance with defaults applied
func DefaultOptions(apps ...Applier) *Options {
	opt := &Options{
		CopyResetDelay: DefaultCopyResetDelay,
		Now:            time.Now,
	}
	for _, app := range apps {
		app(opt)
	}
	return opt
}

// WithRedirectURI seeds the wizard with the redirect target it was reached
// with
func WithRedirectURI(uri string) Applier {
	return func(opt *Options) {
		opt.RedirectURI = uri
	}
}

// WithCopyResetDelay sets how long the copied indicator stays set
func WithCopyResetDelay(d time.Duration) Applier {
	return func(opt *Options) {
		if d > 0 {
			opt.CopyResetDelay = d
		}
	}
}

// WithClock overrides the time source used to stamp call records
func WithClock(now func() time.Time) Applier {
	return func(opt *Options) {
		opt.Now = now
	}
}
