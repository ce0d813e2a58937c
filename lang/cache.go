package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// globalCache stores compile results keyed by a hash of the source text and
// the options that affect the result.
var globalCache sync.Map

// entry holds a cached compile result and the source it was compiled from.
type entry struct {
	once   sync.Once
	source string
	result Result
}

// hashOptions encodes the options that affect compile results using gob and
// hashes them with xxh3. The logger does not participate.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(o.maxDepth)
	_ = enc.Encode(o.scanner.hash)

	return xxh3.Hash(buf.Bytes())
}

// CompileCached is like [Compile] but memoizes results.
//
// Concurrent calls with the same source and options compile it only once.
// Results for a custom grammar are never cached.
func CompileCached(ctx context.Context, source string, opts ...Option) Result {
	cfg := makeOptions(opts...)

	if cfg.grammar != DefaultGrammar {
		cfg.logger.TraceContext(ctx, "cache bypass",
			slog.Bool("custom_grammar", true))

		return Compile(ctx, source, opts...)
	}

	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(cfg)

	value, hit := globalCache.LoadOrStore(cacheKey(sourceHash, optsHash),
		&entry{source: source})

	cached, ok := value.(*entry)
	if !ok {
		return failed(ctx, cfg, source, ErrInternal.
			With(slog.String("issue", "invalid entry type in cache")))
	}

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	// A different source with the same key keeps the existing entry.
	if cached.source != source {
		cfg.logger.TraceContext(ctx, "cache collision",
			slog.String("source", source),
			slog.String("cached_source", cached.source))

		return Compile(ctx, source, opts...)
	}

	compiled := false

	cached.once.Do(func() {
		cached.result = Compile(ctx, source, opts...)
		compiled = true
	})

	if !compiled && cached.result.Kind == ResultError {
		cfg.logger.ErrorContext(ctx, "compile failed",
			slog.String("source", source),
			slog.Any("error", cached.result.Err),
			slog.Bool("cached", true))
	}

	return cached.result
}

// cacheKey combines the source and options hashes into a cache key.
func cacheKey(sourceHash, optsHash uint64) string {
	return strconv.FormatUint(sourceHash^optsHash, 36)
}

// CacheLen returns the number of cached compile results.
func CacheLen() int {
	n := 0

	globalCache.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

// ClearCache removes all cached compile results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
