package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the canonical name of the result to the writer, followed by
// a newline. Error results write the error message instead.
func (r Result) Format(_ context.Context, w io.Writer) error {
	if r.Kind == ResultError {
		_, err := fmt.Fprintln(w, r.Err)

		return err
	}

	_, err := fmt.Fprintln(w, r.Canonical)

	return err
}

// FormatJSON writes the result as JSON to the writer.
func (r Result) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(r, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(r)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the result as YAML to the writer.
func (r Result) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, r.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatTree writes the result as an indented outline of its expression
// tree, one node per line. Constant and error results write a single line.
func (r Result) FormatTree(_ context.Context, w io.Writer, indent int) error {
	switch r.Kind {
	case ResultNumber:
		_, err := fmt.Fprintf(w, "number %s\n", FormatNumber(r.Number))

		return err
	case ResultString:
		_, err := fmt.Fprintf(w, "string %q\n", r.String)

		return err
	case ResultError:
		_, err := fmt.Fprintf(w, "error %v\n", r.Err)

		return err
	}

	if indent <= 0 {
		indent = 2
	}

	return formatNode(w, "", r.Tree, indent, 0)
}

// formatNode writes one line for e and recurses into its children.
func formatNode(w io.Writer, label string, e Expr, indent, depth int) error {
	pad := strings.Repeat(" ", indent*depth)
	if label != "" {
		label += ": "
	}

	var detail string

	switch n := e.(type) {
	case *Number, *String, *Name:
		detail = n.Canonical()
	case *Prefix:
		detail = n.Op().String()
	case *Binary:
		detail = n.Op().String()
	case *Dot:
		detail = n.Right().Ident()
	case *Call:
		detail = fmt.Sprintf("%d args", n.NumArgs())
	}

	_, err := fmt.Fprintf(w, "%s%s%s %s <%s>\n",
		pad, label, e.Variant(), detail, e.Type())
	if err != nil {
		return err
	}

	switch n := e.(type) {
	case *Prefix:
		return formatNode(w, "operand", n.Operand(), indent, depth+1)

	case *Binary:
		if err := formatNode(w, "left", n.Left(), indent, depth+1); err != nil {
			return err
		}

		return formatNode(w, "right", n.Right(), indent, depth+1)

	case *Dot:
		return formatNode(w, "left", n.Left(), indent, depth+1)

	case *Call:
		if err := formatNode(w, "callee", n.Callee(), indent, depth+1); err != nil {
			return err
		}

		for i, arg := range n.Args() {
			label := fmt.Sprintf("arg %d", i)
			if err := formatNode(w, label, arg, indent, depth+1); err != nil {
				return err
			}
		}

	case *Group:
		return formatNode(w, "inner", n.Inner(), indent, depth+1)
	}

	return nil
}
