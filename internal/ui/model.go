// Package ui provides the Bubbletea prompt shown after the existing-tag dump
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the user cancels at the prompt.
var ErrAborted = errors.New("aborted at prompt")

// DefaultPrompt is shown while waiting for the user.
const DefaultPrompt = "Press <Enter> to continue..."

// PromptModel is the Bubbletea model waiting for Enter
type PromptModel struct {
	Message string

	Done    bool
	Aborted bool
}

// NewPromptModel creates a prompt showing message
func NewPromptModel(message string) PromptModel {
	if message == "" {
		message = DefaultPrompt
	}
	return PromptModel{Message: message}
}

// Init initializes the model
func (m PromptModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses: Enter continues, Ctrl+C or Esc aborts
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "ctrl+j":
			m.Done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the UI
func (m PromptModel) View() string {
	return renderPrompt(m)
}

// Pause shows the prompt on out and blocks until the user presses Enter.
// A terminal gets the interactive prompt; any other input is read up to
// the first newline or end of input.
func Pause(in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return runPrompt(in, out)
	}

	if _, err := fmt.Fprint(out, DefaultPrompt); err != nil {
		return err
	}
	_, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read from input: %w", err)
	}
	return nil
}

func runPrompt(in io.Reader, out io.Writer) error {
	p := tea.NewProgram(NewPromptModel(DefaultPrompt), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if m, ok := final.(PromptModel); ok && m.Aborted {
		return ErrAborted
	}
	return nil
}
