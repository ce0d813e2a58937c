package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/MOARdV/AvionicsSystems-sub005/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// Kong calls it while parsing --log-format, early enough to affect error
// messages reported during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
// Kong calls it while parsing --log-level, early enough to affect error
// messages reported during parsing.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies the parsed logger configuration to the default logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to extract and
// apply logger configuration before Kong begins parsing, regardless of flag
// position.
//
// Boolean flags such as --log-pretty never reach a TextUnmarshaler, so they
// are only applied early by this pass.
func (f *logConfig) scan(args []string) {
	// value returns the flag's value: the text after '=', or else the next
	// argument if it is not a flag itself.
	value := func(i *int, v string, assigned bool) string {
		if !assigned && *i+1 < len(args) && !strings.HasPrefix(args[*i+1], "-") {
			*i++

			return args[*i]
		}

		return v
	}

	// boolean returns the flag's value, true when not assigned, and ok false
	// for an invalid assignment.
	boolean := func(v string, assigned bool) (b, ok bool) {
		if !assigned {
			return true, true
		}

		b, err := strconv.ParseBool(v)

		return b, err == nil
	}

	for i := 0; i < len(args); i++ {
		name, v, assigned := strings.Cut(args[i], "=")

		negate := false
		if rest, ok := strings.CutPrefix(name, "--no-log-"); ok {
			name, negate = "--log-"+rest, true
		}

		if negate && (name == "--log-level" || name == "--log-format") {
			continue
		}

		switch name {
		case "--log-level":
			_ = f.Level.UnmarshalText([]byte(value(&i, v, assigned)))

		case "--log-format":
			_ = f.Format.UnmarshalText([]byte(value(&i, v, assigned)))

		case "--log-pretty":
			if b, ok := boolean(v, assigned); ok {
				f.Pretty = b != negate
				log.Config(log.WithPretty(f.Pretty))
			}

		case "--log-caller":
			if b, ok := boolean(v, assigned); ok {
				f.Caller = b != negate
				log.Config(log.WithCaller(f.Caller))
			}
		}
	}
}
