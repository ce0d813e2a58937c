package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/log"
)

// editEnvMsg is sent when editing the bindings completes successfully.
type editEnvMsg struct{ env lang.Env }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this message
  vars [TABLE]      List variables, or the entries of a table
  set NAME=VALUE    Bind a variable; dotted names create nested tables
  unset NAME        Remove a binding
  tree              Show the tree of the last expression
  symbols           Print the active symbol table
  edit              Edit variables as YAML in $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type an expression to compile and evaluate it
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the echo of an expression.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the echo of a control command.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// Config configures a REPL session.
type Config struct {
	// Env is the initial evaluation environment. It is modified by the set,
	// unset, and edit commands.
	Env lang.Env
	// Options are passed to every compile.
	Options []lang.Option
	// Symbols is printed by the symbols command.
	Symbols lang.SymbolTable
	// HistoryPath is the history file. Empty keeps history in memory.
	HistoryPath string
	Logger      log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	env          lang.Env
	gen          *lang.Generator
	opts         []lang.Option
	symbols      lang.SymbolTable
	last         *lang.Result // most recent compiled expression
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session and blocks until the user quits.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Env == nil {
		cfg.Env = lang.Builtins()
	}

	if cfg.Symbols == nil {
		cfg.Symbols = lang.DefaultSymbols()
	}

	if cfg.Logger.Logger == nil {
		cfg.Logger = log.Default()
	}

	history := NewHistory(cfg.HistoryPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "history not loaded",
			slog.String("path", cfg.HistoryPath),
			slog.Any("error", err))
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.HistoryPath),
		slog.Int("history_len", history.Len()),
		slog.Int("bindings", len(cfg.Env)))

	p := tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		env:        cfg.Env,
		gen:        lang.NewGenerator(cfg.Env, cfg.Options...),
		opts:       cfg.Options,
		symbols:    cfg.Symbols,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editEnvMsg:
		m = m.setEnv(msg.env)

		return m, tea.Println(resultStyle.Render("variables updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type an expression or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width,
			func(name string) bool { return isFunc(m.env, m.qualify(name)) }))

	case call.inCall && m.mode == modeEval:
		signature, params := signatureOf(m.env, call.name)
		b.WriteString(renderSignatureHint(signature, params, call.argIndex))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected candidate by step, starting a tab cycle if none
// is active. A single candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with replacement
// and moves the cursor to its end.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion once the typed
// word equals the only remaining candidate.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if _, err := m.history.WriteWithMode(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m, lines := m.evaluate(input)

	cmds := []tea.Cmd{tea.Println(formatCommand(input))}
	for _, line := range lines {
		cmds = append(cmds, tea.Println(line))
	}

	return m, tea.Sequence(cmds...)
}

// evaluate compiles and evaluates input, returning the styled lines to
// print. The compile result is kept for the tree command.
func (m model) evaluate(input string) (model, []string) {
	ctx := m.ctxFunc()

	res := lang.CompileCached(ctx, input, m.opts...)
	m.last = &res

	m.logger.TraceContext(ctx, "repl eval",
		slog.String("input", input),
		slog.String("kind", res.Kind.String()))

	if res.Kind == lang.ResultError {
		return m, errorLines(input, res.Err)
	}

	header := hintStyle.Render(res.Kind.String() + "  " + res.Canonical)

	eval, err := m.gen.Generate(ctx, res)
	if err != nil {
		return m, append([]string{header}, errorLines(input, err)...)
	}

	value, err := eval()
	if err != nil {
		return m, append([]string{header}, errorLines(input, err)...)
	}

	return m, []string{header, resultStyle.Render("= " + lang.FormatValue(value))}
}

// errorLines renders err, followed by the offending source line when err
// carries a position.
func errorLines(source string, err error) []string {
	lines := []string{errorStyle.Render("error: " + err.Error())}

	if pos, ok := lang.ErrorPosition(err); ok {
		if snippet := lang.Snippet(source, pos); snippet != "" {
			lines = append(lines, hintStyle.Render(strings.TrimRight(snippet, "\n")))
		}
	}

	return lines
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(formatCtrlCommand(input))

	name, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("args", args))

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())
	}

	m, out, err := m.command(name, args)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// command runs a control command that produces text output.
func (m model) command(name, args string) (model, string, error) {
	switch name {
	case "h", "help":
		return m, helpMessage(), nil

	case "v", "vars":
		return m, m.listVars(args), nil

	case "s", "set":
		if err := m.env.Bind(args); err != nil {
			return m, "", err
		}

		m = m.setEnv(m.env)
		bound, _, _ := strings.Cut(args, "=")
		bound = strings.TrimSpace(bound)
		value, _ := m.env.Lookup(bound)

		return m, resultStyle.Render(bound + " = " + formatPreview(value)), nil

	case "u", "unset":
		if !m.env.Delete(args) {
			return m, "", fmt.Errorf("%w: %s", ErrUnknownVar, args)
		}

		m = m.setEnv(m.env)

		return m, hintStyle.Render("removed " + args), nil

	case "t", "tree":
		if m.last == nil || m.last.Kind == lang.ResultError {
			return m, "", ErrNoTree
		}

		var buf bytes.Buffer
		if err := m.last.FormatTree(m.ctxFunc(), &buf, 2); err != nil {
			return m, "", err
		}

		return m, strings.TrimRight(buf.String(), "\n"), nil

	case "symbols":
		var buf bytes.Buffer
		if err := m.symbols.WriteYAML(m.ctxFunc(), &buf); err != nil {
			return m, "", err
		}

		return m, strings.TrimRight(buf.String(), "\n"), nil

	default:
		return m, "", errors.New("unknown command: " + name + " (try 'help')")
	}
}

// setEnv replaces the environment and rebuilds the generator over it.
func (m model) setEnv(env lang.Env) model {
	m.env = env
	m.gen = lang.NewGenerator(env, m.opts...)

	m.logger.TraceContext(m.ctxFunc(), "repl env updated",
		slog.Int("bindings", len(env)))

	return m
}

// listVars lists the bindings of the table at path with a short preview of
// each value.
func (m model) listVars(path string) string {
	table := map[string]any(m.env)

	if path != "" {
		v, _ := m.env.Lookup(path)

		t, ok := v.(map[string]any)
		if !ok {
			return errorStyle.Render("not a table: " + path)
		}

		table = t
	}

	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(table)) {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(formatPreview(table[name])))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) edit() tea.Cmd {
	cmd := &editEnvCommand{
		env:     m.env,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.newEnv == nil:
			return editCancelledMsg{}
		default:
			return editEnvMsg{env: cmd.newEnv}
		}
	})
}

// historyStep moves through history by dir (-1 older, +1 newer). With
// sameMode only entries of the current mode are visited. Otherwise the mode
// follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.GetEntry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, saving the input of the current mode and
// restoring that of the target.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
