package lang

import "github.com/MOARdV/AvionicsSystems-sub005/log"

// DefaultMaxDepth is the default maximum nesting depth of an expression.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 200

// options holds compilation options.
type options struct {
	scanner  *Scanner
	grammar  *Grammar
	logger   log.Logger // outside the cache key, doesn't affect results
	maxDepth int
}

// Option configures scanning, parsing, or compilation behavior.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth of parsed expressions.
// A depth less than 1 disables the limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithScanner sets the scanner used to tokenize source.
// A nil scanner selects [DefaultScanner].
func WithScanner(s *Scanner) Option {
	return func(o *options) {
		if s == nil {
			s = DefaultScanner
		}

		o.scanner = s
	}
}

// WithGrammar sets the grammar used to parse tokens.
// A nil grammar selects [DefaultGrammar].
func WithGrammar(g *Grammar) Option {
	return func(o *options) {
		if g == nil {
			g = DefaultGrammar
		}

		o.grammar = g
	}
}

// WithLogger sets the structured logger for trace-level debugging and
// compile failure reports.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// makeOptions returns the default options overridden by opts.
func makeOptions(opts ...Option) options {
	o := options{
		scanner:  DefaultScanner,
		grammar:  DefaultGrammar,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
