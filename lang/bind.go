package lang

import (
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// Lookup returns the value bound to a dotted name, following nested maps.
func (e Env) Lookup(name string) (any, bool) {
	var current any = map[string]any(e)

	for _, seg := range strings.Split(name, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		if current, ok = m[seg]; !ok {
			return nil, false
		}
	}

	return current, true
}

// Set binds value to a dotted name, creating nested maps as needed. Maps
// along the path are copied before they are modified, so maps shared with
// [Builtins] or another Env are never changed.
func (e Env) Set(name string, value any) error {
	path := strings.Split(name, ".")
	for _, seg := range path {
		if !isIdent(seg) {
			return ErrBinding.With(slog.String("name", name))
		}
	}

	table := map[string]any(e)

	for i, seg := range path[:len(path)-1] {
		next, ok := table[seg].(map[string]any)
		if !ok {
			if _, exists := table[seg]; exists {
				return ErrBinding.With(
					slog.String("name", name),
					slog.String("not_a_table", strings.Join(path[:i+1], ".")),
				)
			}
		}

		next = maps.Clone(next)
		if next == nil {
			next = map[string]any{}
		}

		table[seg] = next
		table = next
	}

	table[path[len(path)-1]] = value

	return nil
}

// Delete removes the binding of a dotted name. It reports whether the name
// was bound.
func (e Env) Delete(name string) bool {
	if _, ok := e.Lookup(name); !ok {
		return false
	}

	parent, leaf := "", name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		parent, leaf = name[:i], name[i+1:]
	}

	if parent == "" {
		delete(e, leaf)

		return true
	}

	table, _ := e.Lookup(parent)
	m, _ := table.(map[string]any)

	m = maps.Clone(m)
	delete(m, leaf)

	return e.Set(parent, m) == nil
}

// Bind parses a binding of the form name=value and sets it. See
// [ParseValue] for the accepted values.
func (e Env) Bind(binding string) error {
	name, raw, ok := strings.Cut(binding, "=")
	if !ok {
		return ErrBinding.With(slog.String("binding", binding))
	}

	return e.Set(strings.TrimSpace(name), ParseValue(strings.TrimSpace(raw)))
}

// ParseValue converts the text of a binding to a value. Numbers become
// float64, true and false become booleans, text enclosed in matching single
// or double quotes becomes the enclosed string, and anything else is kept
// as is.
func ParseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}

	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}

	return raw
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
