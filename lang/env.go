package lang

// This file defines the built-in evaluation environment, a subset of the Lua
// math library. The environment is lazily initialized once per process via
// envCache and cloned on every access so callers may mutate the returned map
// without affecting the shared cache.

import (
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
)

// Private singleton cache.
//
//nolint:gochecknoglobals
var (
	envCacheOnce sync.Once
	envCache     map[string]any
)

// Builtins returns a copy of the built-in environment. Names bound by the
// caller after copying shadow the built-ins.
func Builtins() Env {
	envCacheOnce.Do(func() {
		envCache = map[string]any{
			"math": map[string]any{
				"pi":    math.Pi,
				"huge":  math.Inf(1),
				"abs":   math.Abs,
				"ceil":  math.Ceil,
				"floor": math.Floor,
				"sqrt":  math.Sqrt,
				"exp":   math.Exp,
				"log":   mathLog,
				"sin":   math.Sin,
				"cos":   math.Cos,
				"tan":   math.Tan,
				"asin":  math.Asin,
				"acos":  math.Acos,
				"atan":  mathAtan,
				"deg":   mathDeg,
				"rad":   mathRad,
				"fmod":  math.Mod,
				"max":   mathMax,
				"min":   mathMin,
			},
		}
	})

	return maps.Clone(envCache)
}

// BuiltinKeys returns the sorted top-level keys of the built-in environment.
func BuiltinKeys() []string {
	return slices.Sorted(maps.Keys(Builtins()))
}

// BuiltinLookup looks up a dot-separated path in env and returns the sorted
// keys of the map found at that path. It returns nil if the path does not
// exist or does not name a map. An empty path returns the top-level keys.
func BuiltinLookup(env Env, path string) []string {
	var current any = map[string]any(env)

	if path != "" {
		for _, seg := range strings.Split(path, ".") {
			m, ok := current.(map[string]any)
			if !ok {
				return nil
			}

			if current, ok = m[seg]; !ok {
				return nil
			}
		}
	}

	if m, ok := current.(map[string]any); ok {
		return slices.Sorted(maps.Keys(m))
	}

	return nil
}

func mathLog(x float64, base ...float64) float64 {
	if len(base) == 0 {
		return math.Log(x)
	}

	return math.Log(x) / math.Log(base[0])
}

func mathAtan(y float64, x ...float64) float64 {
	if len(x) == 0 {
		return math.Atan(y)
	}

	return math.Atan2(y, x[0])
}

func mathDeg(x float64) float64 { return x * 180 / math.Pi }
func mathRad(x float64) float64 { return x * math.Pi / 180 }

func mathMax(x float64, rest ...float64) float64 {
	for _, y := range rest {
		x = math.Max(x, y)
	}

	return x
}

func mathMin(x float64, rest ...float64) float64 {
	for _, y := range rest {
		x = math.Min(x, y)
	}

	return x
}
