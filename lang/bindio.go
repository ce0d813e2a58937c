package lang

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
)

// LoadYAML reads a YAML mapping of bindings and sets each entry in e. Keys
// may be dotted names, nested mappings become tables, and every number
// becomes a float64.
func (e Env) LoadYAML(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return ErrReadInput.Wrap(err)
	}

	var doc map[string]any
	if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
		return ErrBinding.Wrap(err)
	}

	for _, name := range slices.Sorted(maps.Keys(doc)) {
		if err := e.Set(name, normalizeValue(doc[name])); err != nil {
			return err
		}
	}

	return nil
}

// WriteYAML writes the data bindings of e as a YAML mapping. Functions,
// tables left empty without them, and the top-level built-in names are
// omitted, so the output can be read back with [Env.LoadYAML] on top of
// [Builtins].
func (e Env) WriteYAML(ctx context.Context, w io.Writer) error {
	builtin := Builtins()
	data := map[string]any{}

	for name, value := range e {
		if _, ok := builtin[name]; ok {
			continue
		}

		if v, ok := dataOnly(value); ok {
			data[name] = v
		}
	}

	if len(data) == 0 {
		return nil
	}

	out, err := yaml.MarshalContext(ctx, data, yaml.Indent(2))
	if err != nil {
		return err
	}

	_, err = w.Write(out)

	return err
}

// dataOnly returns value with functions removed. It reports false when
// nothing remains.
func dataOnly(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))

		for k, item := range v {
			if d, ok := dataOnly(item); ok {
				out[k] = d
			}
		}

		return out, len(out) > 0
	case float64, string, bool, []any:
		return v, true
	default:
		return nil, false
	}
}

// normalizeValue converts every number in a decoded YAML value to float64.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeValue(item)
		}

		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeValue(item)
		}

		return v
	default:
		return v
	}
}

// FormatValue renders an evaluated value for display. Numbers use the same
// shortest form as canonical names.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case float64:
		return FormatNumber(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
