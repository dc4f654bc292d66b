package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	quill "go.quill.dev/pkg"
)

var (
	inkColor   = lipgloss.Color("63")
	okColor    = lipgloss.Color("42")
	failColor  = lipgloss.Color("196")
	faintColor = lipgloss.Color("245")
	markColor  = lipgloss.Color("214")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(inkColor).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(inkColor)
	resultStyle = lipgloss.NewStyle().Foreground(okColor)
	errorStyle  = lipgloss.NewStyle().Foreground(failColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(faintColor)
	keyStyle    = lipgloss.NewStyle().Foreground(markColor)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(inkColor).
			Padding(0, 1)
)

type entryKind int

const (
	entryResult entryKind = iota
	entryError
	entryInfo
)

type historyEntry struct {
	input  string
	output string
	kind   entryKind
}

type replModel struct {
	textInput   textinput.Model
	engine      *quill.Engine
	logger      *log.Logger
	logs        *bytes.Buffer
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	lastInput   string
	width       int
	height      int
	showHelp    bool
	showVars    bool
	debug       bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Run   key.Binding
	Quit  key.Binding
	Clear key.Binding
	Vars  key.Binding
	Help  key.Binding
}

var keys = keyMap{
	Prev:  key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
	Next:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
	Run:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Clear: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Vars:  key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "vars")),
	Help:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
}

// replCommands lists the ':' commands in the order :help prints them.
var replCommands = []struct {
	name string
	desc string
}{
	{":help", "toggle this help"},
	{":vars", "toggle variables of the last run"},
	{":scope", "show scopes of the last check"},
	{":ir", "show LLVM IR of the last run"},
	{":debug", "toggle debug logging"},
	{":clear", "clear history"},
	{":quit", "exit"},
}

func newREPLModel(cfg config) replModel {
	ti := textinput.New()
	ti.Placeholder = "a := 1 + 2; return a * 3;"
	ti.Prompt = cfg.Prompt
	ti.PromptStyle = promptStyle
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()

	// Debug output is collected per input and shown in the history.
	logs := new(bytes.Buffer)
	logger := cfg.logger(logs)

	return replModel{
		textInput:  ti,
		engine:     cfg.engine(logger),
		logger:     logger,
		logs:       logs,
		historyIdx: -1,
		debug:      cfg.Debug,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.history = nil
			return m, nil
		case key.Matches(msg, keys.Vars):
			m.showVars = !m.showVars
			return m, nil
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, keys.Prev):
			m.recall(-1)
			return m, nil
		case key.Matches(msg, keys.Next):
			m.recall(1)
			return m, nil
		case key.Matches(msg, keys.Run):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// recall moves through earlier inputs. Stepping past the newest one leaves
// an empty line.
func (m *replModel) recall(step int) {
	if len(m.cmdHistory) == 0 {
		return
	}

	idx := m.historyIdx
	switch {
	case idx == -1 && step < 0:
		idx = len(m.cmdHistory) - 1
	case idx == -1:
		return
	default:
		idx += step
	}

	switch {
	case idx < 0:
		idx = 0
	case idx >= len(m.cmdHistory):
		m.historyIdx = -1
		m.textInput.SetValue("")
		return
	}

	m.historyIdx = idx
	m.textInput.SetValue(m.cmdHistory[idx])
	m.textInput.CursorEnd()
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textInput.Value())
	if input == "" {
		return m, nil
	}

	m.textInput.SetValue("")
	m.historyIdx = -1

	if strings.HasPrefix(input, ":") {
		return m.handleCommand(input)
	}

	output, isErr := m.evaluate(input)
	if isErr {
		m.info(input, output, true)
	} else {
		m.history = append(m.history, historyEntry{input: input, output: output, kind: entryResult})
	}

	m.flushLogs()
	m.cmdHistory = append(m.cmdHistory, input)
	return m, nil
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	switch cmd := strings.Fields(input)[0]; cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":scope", ":s":
		if scopes := m.engine.Scopes(); scopes != nil {
			m.info(input, strings.TrimRight(scopes.String(), "\n"), false)
		} else {
			m.info(input, "No scopes yet", false)
		}
	case ":ir":
		if m.lastInput == "" {
			m.info(input, "Nothing run yet", true)
			break
		}

		out, err := m.engine.EmitIR(m.lastInput)
		if err != nil {
			m.info(input, err.Error(), true)
		} else {
			m.info(input, strings.TrimRight(out, "\n"), false)
		}
		m.flushLogs()
	case ":debug", ":d":
		m.debug = !m.debug
		if m.debug {
			m.logger.SetLevel(log.DebugLevel)
			m.info(input, "Debug logging on", false)
		} else {
			m.logger.SetLevel(log.InfoLevel)
			m.info(input, "Debug logging off", false)
		}
	case ":clear", ":c":
		m.history = nil
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.info(input, fmt.Sprintf("Unknown command: %s", cmd), true)
	}

	return m, nil
}

// evaluate runs input as one program unit. A successful input becomes the
// subject of :ir.
func (m *replModel) evaluate(input string) (string, bool) {
	out, err := evaluate(m.engine, input)
	if err != nil {
		return err.Error(), true
	}

	m.lastInput = input
	return out, false
}

func (m *replModel) info(input, output string, isErr bool) {
	kind := entryInfo
	if isErr {
		kind = entryError
	}

	m.history = append(m.history, historyEntry{input: input, output: output, kind: kind})
}

func (m *replModel) flushLogs() {
	if m.logs.Len() == 0 {
		return
	}

	m.info("", strings.TrimRight(m.logs.String(), "\n"), false)
	m.logs.Reset()
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Bye.\n")
	}

	var panels []string
	if m.showVars {
		panels = append(panels, renderVarsPanel(m.engine.Globals()))
	}
	if m.showHelp {
		panels = append(panels, renderHelpPanel())
	}

	mode := "debug off"
	if m.debug {
		mode = "debug on"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quill") + mutedStyle.Render(mode) + "\n\n")

	// Panels and chrome take their height from the history.
	used := 6
	for _, p := range panels {
		used += lipgloss.Height(p)
	}
	b.WriteString(m.renderHistory(m.height - used))

	for _, p := range panels {
		b.WriteString(p + "\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")
	b.WriteString(renderFooter(keys.Help, keys.Vars, keys.Clear, keys.Quit))

	return b.String()
}

// renderHistory renders the newest entries that fit in lines.
func (m replModel) renderHistory(lines int) string {
	var rendered []string
	for _, entry := range m.history {
		var s strings.Builder
		if entry.input != "" {
			s.WriteString(mutedStyle.Render("› ") + entry.input + "\n")
		}

		switch entry.kind {
		case entryError:
			s.WriteString(errorStyle.Render("✗ " + entry.output))
		case entryInfo:
			s.WriteString(mutedStyle.Render(entry.output))
		default:
			s.WriteString(resultStyle.Render("→ " + entry.output))
		}

		rendered = append(rendered, s.String()+"\n")
	}

	start := len(rendered)
	for height := 0; start > 0; start-- {
		height += lipgloss.Height(rendered[start-1])
		if height > lines {
			break
		}
	}

	return strings.Join(rendered[start:], "")
}

func renderFooter(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, keyStyle.Render(b.Help().Key)+" "+mutedStyle.Render(b.Help().Desc))
	}

	return strings.Join(parts, "  ")
}

// renderVarsPanel shows the program record of the last run.
func renderVarsPanel(globals *quill.ActivationRecord) string {
	if globals == nil || globals.Len() == 0 {
		return panelStyle.Render(mutedStyle.Render("No variables defined"))
	}

	rows := make([][]string, 0, globals.Len())
	for _, name := range globals.Names() {
		v, _ := globals.Get(name)
		rows = append(rows, []string{name, v.Kind().String(), v.String()})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(inkColor)).
		Headers("NAME", "TYPE", "VALUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return titleStyle
			case col == 0:
				return keyStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		Render()
}

func renderHelpPanel() string {
	lines := []string{titleStyle.Render("Commands")}
	for _, c := range replCommands {
		lines = append(lines, keyStyle.Render(fmt.Sprintf("%-8s", c.name))+mutedStyle.Render(c.desc))
	}

	lines = append(lines, "", mutedStyle.Render("↑/↓ walk through earlier inputs"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func runREPL(cfg config) error {
	_, err := tea.NewProgram(newREPLModel(cfg), tea.WithAltScreen()).Run()
	return err
}
