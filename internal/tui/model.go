package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxTranscript bounds the number of entries kept on screen.
const maxTranscript = 500

type entryKind int

const (
	entryCommand entryKind = iota
	entryReply
)

type entry struct {
	kind entryKind
	text string
}

// Model is the Bubble Tea model for an interactive command session.
type Model struct {
	eval        Evaluator
	input       textinput.Model
	greeting    string
	transcript  []entry
	height      int
	done        bool
	interrupted bool
}

// ModelOption configures optional Model fields.
type ModelOption func(*Model)

// WithGreeting sets the banner shown above the transcript.
func WithGreeting(s string) ModelOption {
	return func(m *Model) { m.greeting = s }
}

// WithPrompt sets the input prompt.
func WithPrompt(s string) ModelOption {
	return func(m *Model) {
		if s != "" {
			m.input.Prompt = s
		}
	}
}

// NewModel creates a Model that sends each submitted line to eval.
func NewModel(eval Evaluator, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "help"
	ti.PromptStyle = promptStyle
	ti.Focus()

	m := Model{eval: eval, input: ti}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			m.done = true
			m.interrupted = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit evaluates the current input line.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	out, quit := m.eval(line)
	m.transcript = append(m.transcript,
		entry{kind: entryCommand, text: m.input.Prompt + line},
		entry{kind: entryReply, text: out},
	)
	if n := len(m.transcript); n > maxTranscript {
		m.transcript = m.transcript[n-maxTranscript:]
	}

	if quit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the greeting, the transcript tail, and the input line.
func (m Model) View() string {
	var lines []string
	for _, e := range m.transcript {
		switch e.kind {
		case entryCommand:
			lines = append(lines, commandStyle.Render(e.text))
		case entryReply:
			for _, l := range strings.Split(e.text, "\n") {
				lines = append(lines, replyStyle.Render(l))
			}
		}
	}

	// Reserve rows for the greeting, the input, and the help line.
	if m.height > 0 {
		room := m.height - 4
		if room < 1 {
			room = 1
		}
		if len(lines) > room {
			lines = lines[len(lines)-room:]
		}
	}

	var b strings.Builder
	if m.greeting != "" {
		b.WriteString(titleStyle.Render(m.greeting))
		b.WriteString("\n")
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if m.done {
		return b.String()
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: run · help: commands · esc/ctrl+c: save and quit"))
	b.WriteString("\n")
	return b.String()
}
