package profile

import (
	"iter"
	"maps"

	"github.com/pkg/profile"

	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// ErrUnknownMode is returned by [Start] for a mode not listed by [Modes].
var ErrUnknownMode = pkg.MakeErrorf("unknown profiling mode")

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns an iterator over the supported profiling modes in no
// particular order.
func Modes() iter.Seq[string] {
	return maps.Keys(mode)
}

// Profiler stops a running profile and flushes its output.
type Profiler interface {
	Stop()
}

// Config holds the profiler settings.
type Config struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option modifies a [Config].
type Option func(Config) Config

// WithMode returns an option setting the profiling mode.
func WithMode(m string) Option {
	return func(c Config) Config {
		c.Mode = m

		return c
	}
}

// WithPath returns an option setting the profile output directory.
func WithPath(p string) Option {
	return func(c Config) Config {
		c.Path = p

		return c
	}
}

// WithQuiet returns an option that silences the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

// Start starts profiling as configured by opts.
//
// With no mode, Start returns a Profiler whose Stop does nothing. Only one
// profile may run at a time.
func Start(opts ...Option) (Profiler, error) {
	var c Config

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c.Start()
}

// Start starts profiling as configured by c. See [Start].
func (c Config) Start() (Profiler, error) {
	if c.Mode == "" {
		return ignore{}, nil
	}

	fn, ok := mode[c.Mode]
	if !ok {
		return nil, ErrUnknownMode.Wrapf("%q", c.Mode)
	}

	// The caller stops the profile, so pkg/profile must not install its own
	// interrupt handler.
	with := []func(*profile.Profile){fn, profile.NoShutdownHook}

	if c.Path != "" {
		with = append(with, profile.ProfilePath(c.Path))
	}

	if c.Quiet {
		with = append(with, profile.Quiet)
	}

	return profile.Start(with...), nil
}

type ignore struct{}

func (ignore) Stop() {}
