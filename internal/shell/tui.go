package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/view"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // Magenta
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// isTerminal reports whether both ends of the session are a terminal.
func isTerminal(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok {
		return false
	}
	fout, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(fin.Fd())) && term.IsTerminal(int(fout.Fd()))
}

// outputBuffer collects what commands print while the program owns the
// terminal. It is flushed above the prompt after each command.
type outputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *outputBuffer) take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	b.buf.Reset()
	return s
}

// runProgram hands the terminal to bubbletea until quit or ctx is done.
func (s *Shell) runProgram(ctx context.Context) error {
	buf := &outputBuffer{}
	screen := s.out
	prevOut, prevErr := logging.Output()
	logging.SetOutput(buf, buf)
	s.out = buf
	defer func() {
		s.out = screen
		logging.SetOutput(prevOut, prevErr)
		_, _ = io.WriteString(screen, buf.take())
	}()

	p := tea.NewProgram(newModel(ctx, s, buf),
		tea.WithContext(ctx),
		tea.WithInput(s.in),
		tea.WithOutput(screen),
	)
	s.send = p.Send
	defer func() { s.send = nil }()

	_, err := p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// ----------------------------------------------------------------------------
// Model
// ----------------------------------------------------------------------------

type uiState int

const (
	uiInput uiState = iota
	uiRunning
	uiEditing
)

// execDoneMsg reports a finished command.
type execDoneMsg struct {
	err      error
	canceled bool
}

// phaseMsg carries generator progress into the status line.
type phaseMsg workflow.Phase

type model struct {
	sh  *Shell
	ctx context.Context
	buf *outputBuffer
	// println prints above the program's view.
	println func(string) tea.Cmd

	input   textarea.Model
	editor  textarea.Model
	spinner spinner.Model

	state   uiState
	status  string
	started time.Time
	cancel  context.CancelFunc
}

func newModel(ctx context.Context, sh *Shell, buf *outputBuffer) model {
	in := textarea.New()
	in.Placeholder = "type 'help' for commands"
	in.Prompt = ""
	in.ShowLineNumbers = false
	in.CharLimit = 0
	in.SetHeight(1)
	in.SetWidth(80)
	in.FocusedStyle.CursorLine = lipgloss.NewStyle()
	in.BlurredStyle.CursorLine = lipgloss.NewStyle()
	in.KeyMap.InsertNewline.SetEnabled(false)
	in.Focus()

	ed := textarea.New()
	ed.Placeholder = "Which page, which steps, what should happen?"
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetHeight(6)
	ed.SetWidth(80)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return model{
		sh:      sh,
		ctx:     ctx,
		buf:     buf,
		println: func(s string) tea.Cmd { return tea.Println(s) },
		input:   in,
		editor:  ed,
		spinner: sp,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := max(msg.Width-4, 20)
		m.input.SetWidth(width)
		m.editor.SetWidth(width)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case uiRunning:
			if (msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC) && m.cancel != nil {
				m.cancel()
				m.status = "Cancelling..."
			}
			return m, nil
		case uiEditing:
			return m.updateEditor(msg)
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.sh.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.submit(line)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.state != uiRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case phaseMsg:
		if status := phaseStatus(workflow.Phase(msg)); status != "" {
			m.status = status
		}
		return m, nil

	case execDoneMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.state = uiInput
		switch {
		case msg.canceled:
			fmt.Fprintln(m.buf, warnStyle.Render("-- Interrupted --"))
		case msg.err != nil:
			view.Failure(m.buf, view.ErrorMessage(msg.err))
		}
		if m.sh.quit {
			return m, tea.Sequence(m.flush(), tea.Quit)
		}
		m.sh.redraw()
		focus := m.input.Focus()
		return m, tea.Batch(m.flush(), focus)
	}

	if m.state == uiEditing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit echoes line and runs it in the background with the spinner going.
// "edit" opens the description editor instead.
func (m model) submit(line string) (tea.Model, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	fmt.Fprintln(m.buf, promptStyle.Render(m.sh.prompt())+line)

	cmd, _, err := m.sh.resolve(line)
	if err != nil {
		view.Failure(m.buf, view.ErrorMessage(err))
		return m, m.flush()
	}
	if cmd != nil && cmd.name == "edit" {
		m.state = uiEditing
		m.input.Blur()
		m.editor.SetValue(m.sh.app.Generator.Description())
		focus := m.editor.Focus()
		return m, tea.Batch(m.flush(), focus)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.state = uiRunning
	m.status = line
	m.started = time.Now()
	m.input.Blur()
	sh := m.sh
	run := func() tea.Msg {
		err := sh.Exec(ctx, line)
		return execDoneMsg{err: err, canceled: ctx.Err() != nil}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeEditor()
		fmt.Fprintln(m.buf, dimStyle.Render("Description unchanged."))
		focus := m.input.Focus()
		return m, tea.Batch(m.flush(), focus)
	case tea.KeyCtrlS:
		text := strings.TrimSpace(m.editor.Value())
		m.closeEditor()
		if err := m.sh.setDescription(text); err != nil {
			view.Failure(m.buf, view.ErrorMessage(err))
		}
		focus := m.input.Focus()
		return m, tea.Batch(m.flush(), focus)
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *model) closeEditor() {
	m.state = uiInput
	m.editor.Blur()
	m.editor.Reset()
}

// flush prints what commands wrote since the last flush.
func (m model) flush() tea.Cmd {
	text := strings.TrimRight(m.buf.take(), "\n")
	if text == "" {
		return nil
	}
	return m.println(text)
}

func (m model) View() string {
	switch m.state {
	case uiRunning:
		elapsed := time.Since(m.started).Seconds()
		return m.spinner.View() + " " + m.status + " " +
			dimStyle.Render(fmt.Sprintf("(esc to cancel · %.0fs)", elapsed))
	case uiEditing:
		n := utf8.RuneCountInString(m.editor.Value())
		count := dimStyle.Render(fmt.Sprintf("%d/%d characters", n, workflow.MaxInputChars))
		if n > workflow.MaxInputChars {
			count = errorStyle.Render(fmt.Sprintf("%d/%d characters, too long", n, workflow.MaxInputChars))
		}
		return titleStyle.Render("Test description") + "\n" +
			m.editor.View() + "\n" +
			count + "  " + dimStyle.Render("ctrl+s save · esc cancel")
	default:
		return promptStyle.Render(m.sh.prompt()) + m.input.View()
	}
}
