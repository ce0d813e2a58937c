package lang

import "encoding/json"

// MarshalJSON implements json.Marshaler for Result.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// ToMap converts the result to a native Go map structure.
//
// The map always holds "kind", "canonical", and "source". A constant result
// adds "value", a tree result adds "tree" (see [ToMap]), and an error result
// adds "error" with the error message.
func (r Result) ToMap() map[string]any {
	m := map[string]any{
		"kind":      r.Kind.String(),
		"canonical": r.Canonical,
		"source":    r.Source,
	}

	switch r.Kind {
	case ResultNumber:
		m["value"] = r.Number
	case ResultString:
		m["value"] = r.String
	case ResultTree:
		m["type"] = r.Tree.Type().String()
		m["tree"] = ToMap(r.Tree)
	case ResultError:
		if r.Err != nil {
			m["error"] = r.Err.Error()
		}
	}

	return m
}

// ToMap converts an expression tree to nested native Go maps.
//
// Every node has "node" (its [Variant]), "type", and "canonical" keys.
// Literal and name nodes add "value"; operators add "op" and their operands;
// calls add "callee" and "args".
func ToMap(e Expr) map[string]any {
	if e == nil {
		return nil
	}

	m := map[string]any{
		"node":      e.Variant().String(),
		"type":      e.Type().String(),
		"canonical": e.Canonical(),
	}

	switch n := e.(type) {
	case *Number:
		m["value"] = n.Value()
	case *String:
		m["value"] = n.Value()
	case *Name:
		m["value"] = n.Ident()
	case *Prefix:
		m["op"] = n.Op().String()
		m["operand"] = ToMap(n.Operand())
	case *Binary:
		m["op"] = n.Op().String()
		m["left"] = ToMap(n.Left())
		m["right"] = ToMap(n.Right())
	case *Dot:
		m["left"] = ToMap(n.Left())
		m["right"] = ToMap(n.Right())
	case *Call:
		args := make([]any, 0, n.NumArgs())
		for _, arg := range n.Args() {
			args = append(args, ToMap(arg))
		}

		m["callee"] = ToMap(n.Callee())
		m["args"] = args
	case *Group:
		m["inner"] = ToMap(n.Inner())
	}

	return m
}
