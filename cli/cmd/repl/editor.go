package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/log"
)

const defaultEditor = "vi"

// editEnvCommand implements [tea.ExecCommand] for the edit-parse-retry loop
// over the variable bindings. It writes the bindings as YAML to a temporary
// file, opens the user's editor, and loads the result. On a load error the
// user is prompted to re-edit; declining exits the program.
type editEnvCommand struct {
	env     lang.Env
	ctxFunc func() context.Context
	newEnv  lang.Env
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editEnvCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editEnvCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editEnvCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. If the user declines to re-edit after an
// error, it returns [ErrEditDeclined]. An emptied file leaves newEnv nil.
func (c *editEnvCommand) Run() error {
	ctx := c.ctxFunc()

	var buf bytes.Buffer
	if err := c.env.WriteYAML(ctx, &buf); err != nil {
		return fmt.Errorf("format variables: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "masexpr-vars-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := buf.Bytes()

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		env := c.baseEnv()
		loadErr := env.LoadYAML(ctx, bytes.NewReader(data))

		c.logger.TraceContext(ctx, "editor load attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", loadErr == nil))

		if loadErr == nil {
			c.newEnv = env

			return nil
		}

		fmt.Fprintf(c.stderr, "\nLoad error: %s\n", loadErr)

		if !confirm(c.stdin, c.stdout, "Re-edit? [Y/n] ") {
			return ErrEditDeclined
		}

		content = data
	}
}

// baseEnv returns the built-in environment plus every function bound in the
// current environment, which the YAML file cannot express.
func (c *editEnvCommand) baseEnv() lang.Env {
	env := lang.Builtins()

	for name, value := range c.env {
		if _, ok := env[name]; ok || value == nil {
			continue
		}

		if reflect.TypeOf(value).Kind() == reflect.Func {
			env[name] = value
		}
	}

	return env
}

// confirm prints prompt and reports whether the answer is not "n" or "no".
// End of input declines.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	default:
		return true
	}
}

// runEditor opens path in $EDITOR and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
