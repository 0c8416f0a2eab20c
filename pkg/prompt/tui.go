package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

type styles struct {
	title    lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	item     lipgloss.Style
	answer   lipgloss.Style
	help     lipgloss.Style
}

var defaultStyles = styles{
	title:    lipgloss.NewStyle().Bold(true),
	cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("63")).SetString(">"),
	selected: lipgloss.NewStyle().Foreground(lipgloss.Color("211")),
	item:     lipgloss.NewStyle(),
	answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("esc", "cancel")),
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return defaultStyles.help.Render(strings.Join(parts, " • "))
}

// SelectModel is a single-choice menu.
type SelectModel struct {
	title     string
	options   []Option
	cursor    int
	chosen    bool
	cancelled bool
}

func NewSelectModel(title string, options []Option, def int) *SelectModel {
	return &SelectModel{
		title:   title,
		options: options,
		cursor:  clamp(def, len(options)),
	}
}

// Choice returns the chosen index and whether a choice was made.
func (m *SelectModel) Choice() (int, bool) {
	return m.cursor, m.chosen && !m.cancelled
}

func (m *SelectModel) Init() tea.Cmd {
	return nil
}

//nolint:ireturn // Third-party.
func (m *SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Cancel):
		m.cancelled = true

		return m, tea.Quit

	case key.Matches(km, keys.Choose):
		m.chosen = true

		return m, tea.Quit

	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(km, keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	}

	return m, nil
}

func (m *SelectModel) View() string {
	title := defaultStyles.title.Render(m.title)

	if m.chosen {
		return fmt.Sprintf("%s %s\n", title, defaultStyles.answer.Render(m.options[m.cursor].Label))
	}
	if m.cancelled {
		return fmt.Sprintf("%s %s\n", title, defaultStyles.help.Render("cancelled"))
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(defaultStyles.cursor.String() + " " + defaultStyles.selected.Render(o.Label) + "\n")
			continue
		}
		b.WriteString("  " + defaultStyles.item.Render(o.Label) + "\n")
	}
	b.WriteString("\n" + helpLine(keys.Up, keys.Down, keys.Choose, keys.Cancel) + "\n")

	return b.String()
}

// ConfirmModel is a yes/no question.
type ConfirmModel struct {
	question  string
	def       bool
	answer    bool
	answered  bool
	cancelled bool
}

func NewConfirmModel(question string, def bool) *ConfirmModel {
	return &ConfirmModel{question: question, def: def}
}

// Answer returns the answer and whether one was given.
func (m *ConfirmModel) Answer() (bool, bool) {
	return m.answer, m.answered && !m.cancelled
}

func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

//nolint:ireturn // Third-party.
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Cancel):
		m.cancelled = true

		return m, tea.Quit

	case key.Matches(km, keys.Yes):
		m.answer, m.answered = true, true

		return m, tea.Quit

	case key.Matches(km, keys.No):
		m.answer, m.answered = false, true

		return m, tea.Quit

	case key.Matches(km, keys.Choose):
		m.answer, m.answered = m.def, true

		return m, tea.Quit
	}

	return m, nil
}

func (m *ConfirmModel) View() string {
	question := defaultStyles.title.Render(m.question)

	switch {
	case m.answered:
		text := "no"
		if m.answer {
			text = "yes"
		}

		return fmt.Sprintf("%s %s\n", question, defaultStyles.answer.Render(text))
	case m.cancelled:
		return fmt.Sprintf("%s %s\n", question, defaultStyles.help.Render("cancelled"))
	}

	hint := "y/N"
	if m.def {
		hint = "Y/n"
	}

	return fmt.Sprintf("%s %s\n", question, defaultStyles.help.Render("("+hint+")"))
}

// TUI prompts through bubbletea programs.
type TUI struct {
	in  io.Reader
	out io.Writer
}

func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out}
}

func (t *TUI) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, ErrCancelled
	}
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}

	return final, nil
}

func (t *TUI) Select(ctx context.Context, title string, options []Option, def int) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to select from")
	}

	final, err := t.run(ctx, NewSelectModel(title, options, def))
	if err != nil {
		return 0, err
	}

	m, ok := final.(*SelectModel)
	if !ok {
		return 0, fmt.Errorf("prompt: unexpected model %T", final)
	}
	i, chosen := m.Choice()
	if !chosen {
		return 0, ErrCancelled
	}

	return i, nil
}

func (t *TUI) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	final, err := t.run(ctx, NewConfirmModel(question, def))
	if err != nil {
		return false, err
	}

	m, ok := final.(*ConfirmModel)
	if !ok {
		return false, fmt.Errorf("prompt: unexpected model %T", final)
	}
	answer, answered := m.Answer()
	if !answered {
		return false, ErrCancelled
	}

	return answer, nil
}
