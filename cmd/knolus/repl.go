package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/knolus/knolus"
	"github.com/spf13/cobra"
)

var (
	accent = lipgloss.Color("#3B82F6")
	muted  = lipgloss.Color("#6B7280")

	promptStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
)

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// replModel evaluates one JSON node per input. A node with a "type" is a
// line; a node with a "kind" is a value whose flattened result is shown.
// Every input runs in the same context, so declarations persist.
type replModel struct {
	textInput   textinput.Model
	engine      *knolus.Engine
	root        *knolus.Context
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	height      int
	showHelp    bool
	showVars    bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
	Clear key.Binding
	Tab   key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up")),
	Down:  key.NewBinding(key.WithKeys("down")),
	Enter: key.NewBinding(key.WithKeys("enter")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d")),
	Clear: key.NewBinding(key.WithKeys("ctrl+l")),
	Tab:   key.NewBinding(key.WithKeys("tab")),
}

func replCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate JSON nodes interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newREPLModel(engine), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

func newREPLModel(engine *knolus.Engine) replModel {
	ti := textinput.New()
	ti.Placeholder = `{"kind": "int", "text": "1"}`
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "knolus> "

	return replModel{
		textInput:  ti,
		engine:     engine,
		root:       engine.NewRoot(knolus.RunOptions{}),
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Clear):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, isErr := m.evaluate(input)
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
				isErr:  isErr,
			})
			m.cmdHistory = append(m.cmdHistory, input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":reset", ":r":
		m.root = m.engine.NewRoot(knolus.RunOptions{})
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Context reset",
		})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

// handleAutocomplete completes the quoted word under the cursor against
// function and variable names.
func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	start := strings.LastIndexByte(input, '"')
	if start < 0 {
		return m
	}
	partial := input[start+1:]
	if partial == "" {
		return m
	}

	var completions []string
	candidates := append(m.engine.FunctionNames(), m.variableNames()...)
	for _, name := range candidates {
		if strings.HasPrefix(name, partial) {
			completions = append(completions, name)
		}
	}

	if len(completions) == 1 {
		m.textInput.SetValue(input[:start+1] + completions[0] + `"`)
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(completions, ", "),
		})
	}

	return m
}

func (m replModel) variableNames() []string {
	vars := m.root.Variables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// evaluate wraps input into a one-line document and runs it in the
// persistent root.
func (m replModel) evaluate(input string) (string, bool) {
	var probe struct {
		Type string `json:"type"`
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(input), &probe); err != nil {
		return fmt.Sprintf("invalid JSON: %v", err), true
	}

	var doc string
	switch {
	case probe.Type != "":
		doc = `{"lines": [` + input + `]}`
	case probe.Kind != "":
		doc = `{"lines": [{"type": "return", "value": ` + input + `}]}`
	default:
		return `input needs a "type" (line) or a "kind" (value)`, true
	}

	scope, err := knolus.DecodeDocument([]byte(doc), knolus.FormatJSON, m.root.Restrictions()).Unpack()
	if err != nil {
		return err.Error(), true
	}
	result, err := m.root.Execute(context.Background(), scope).Unpack()
	if err != nil {
		return err.Error(), true
	}
	return result.Value.String(), false
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder
	b.WriteString(promptStyle.Render("Knolus REPL") + " " + mutedStyle.Render(m.engine.ConfigSummary()) + "\n\n")

	vars := m.root.Variables()
	reserved := 6
	if m.showHelp {
		reserved += 3
	}
	if m.showVars {
		reserved += len(vars) + 3
	}
	start := max(len(m.history)-(m.height-reserved), 0)
	for _, entry := range m.history[start:] {
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("› ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString(errorStyle.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString(resultStyle.Render("→ "+entry.output) + "\n")
		}
	}

	if m.showVars {
		b.WriteString(renderVarsPanel(m.variableNames(), vars) + "\n")
	}
	if m.showHelp {
		b.WriteString(panelStyle.Render(replHelp) + "\n")
	}
	b.WriteString("\n" + m.textInput.View() + "\n")
	b.WriteString(mutedStyle.Render(":help  :vars  :reset  :clear  :quit  (tab completes a quoted name)"))
	return b.String()
}

const replHelp = `Enter a line node ({"type": ...}) to run it, or a value node
({"kind": ...}) to print its flattened value. Declarations persist
until :reset.`

func renderVarsPanel(names []string, vars map[string]knolus.VariableValue) string {
	if len(names) == 0 {
		return panelStyle.Render(mutedStyle.Render("No variables defined"))
	}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		stored := vars[name]
		op := "="
		if stored.IsLazy() {
			op = "by"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", nameStyle.Render(name), op, stored.Value().String()))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
