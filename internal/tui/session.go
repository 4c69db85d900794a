// Package tui runs the interactive command session, either as a plain
// line loop or as a Bubble Tea terminal UI.
package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Evaluator runs one command line and returns the text to show and whether
// the session should end.
type Evaluator func(line string) (output string, quit bool)

// Session reads command lines until the evaluator asks to quit, input ends,
// or ctx is cancelled.
type Session interface {
	Run(ctx context.Context, eval Evaluator) error
}

// Options configures session creation.
type Options struct {
	Input      io.Reader // Command source (default: os.Stdin).
	Output     io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force the line loop even on a TTY.
	Greeting   string    // Printed once before the first prompt.
	Prompt     string    // Shown before each command.
}

// NewSession returns a TUI session when both input and output are terminals,
// or a plain line session otherwise. ForcePlain overrides TTY detection.
func NewSession(opts Options) Session {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	plain := &PlainSession{r: opts.Input, w: opts.Output, greeting: opts.Greeting, prompt: opts.Prompt}
	if opts.ForcePlain || !isTTY(opts.Input) || !isTTY(opts.Output) {
		return plain
	}
	return &TUISession{in: opts.Input, w: opts.Output, greeting: opts.Greeting, prompt: opts.Prompt, fallback: plain}
}

// isTTY reports whether v is a file connected to a terminal.
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainSession prompts and reads one line at a time.
type PlainSession struct {
	r        io.Reader
	w        io.Writer
	greeting string
	prompt   string
}

// NewPlainSession creates a PlainSession over r and w.
func NewPlainSession(r io.Reader, w io.Writer, greeting, prompt string) *PlainSession {
	return &PlainSession{r: r, w: w, greeting: greeting, prompt: prompt}
}

// Run loops until a quit reply or end of input, returning nil, or until ctx
// is cancelled, returning ctx.Err(). A read error from the input is returned.
func (s *PlainSession) Run(ctx context.Context, eval Evaluator) error {
	if s.greeting != "" {
		_, _ = fmt.Fprintln(s.w, s.greeting)
	}

	// Reading happens on its own goroutine so cancellation is not stuck
	// behind a blocking read.
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	var scanErr error
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		scanErr = sc.Err()
	}()

	for {
		_, _ = fmt.Fprint(s.w, s.prompt)
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(s.w)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(s.w)
				return scanErr
			}
			out, quit := eval(line)
			_, _ = fmt.Fprintln(s.w, out)
			if quit {
				return nil
			}
		}
	}
}

// TUISession runs the session as a Bubble Tea program.
// Falls back to PlainSession if the program fails to start.
type TUISession struct {
	in       io.Reader
	w        io.Writer
	greeting string
	prompt   string
	fallback Session
}

// Run starts the Bubble Tea program and blocks until it exits.
func (s *TUISession) Run(ctx context.Context, eval Evaluator) error {
	model := NewModel(eval, WithGreeting(s.greeting), WithPrompt(s.prompt))
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(s.in),
		tea.WithOutput(s.w),
	)

	final, err := p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		// The terminal could not be driven; keep the session alive in plain mode.
		return s.fallback.Run(ctx, eval)
	}
	if m, ok := final.(Model); ok && m.interrupted {
		return context.Canceled
	}
	return nil
}
