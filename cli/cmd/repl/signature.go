package repl

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
)

// Styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // dotted callee name, e.g. "math.max"
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports whether the cursor is inside the argument list
// of a call, and if so the callee name and the index of the argument under
// the cursor. Parentheses inside string literals are not distinguished.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := -1
	depth := 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// lookupFunc resolves a dotted name in env to a function value. The last
// segment may also name a method of the value bound to the parent path.
func lookupFunc(env lang.Env, name string) (reflect.Value, bool) {
	if v, ok := env.Lookup(name); ok {
		fn := reflect.ValueOf(v)

		return fn, fn.Kind() == reflect.Func
	}

	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return reflect.Value{}, false
	}

	recv, ok := env.Lookup(name[:i])
	if !ok || recv == nil {
		return reflect.Value{}, false
	}

	method := reflect.ValueOf(recv).MethodByName(name[i+1:])

	return method, method.IsValid()
}

// isFunc reports whether name is bound to a callable value in env.
func isFunc(env lang.Env, name string) bool {
	_, ok := lookupFunc(env, name)

	return ok
}

// signatureOf returns the call signature of the function bound to name, with
// one entry per parameter type. A variadic parameter is prefixed with "...".
func signatureOf(env lang.Env, name string) (signature string, params []string) {
	fn, ok := lookupFunc(env, name)
	if !ok {
		return "", nil
	}

	t := fn.Type()
	params = make([]string, t.NumIn())

	for i := range t.NumIn() {
		if t.IsVariadic() && i == t.NumIn()-1 {
			params[i] = "..." + formatTypeName(t.In(i).Elem())
		} else {
			params[i] = formatTypeName(t.In(i))
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// formatTypeName converts a reflect.Type to a readable parameter name.
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "list"
	case reflect.Map:
		return "table"
	case reflect.Pointer:
		return formatTypeName(t.Elem())
	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "any"
	}
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted. A variadic parameter stays highlighted for every
// argument it absorbs.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		if currentArgIdx == i || (variadic && currentArgIdx > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
