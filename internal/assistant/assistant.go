// Package assistant turns command lines into operations on a contact
// directory and renders each outcome as a reply for the user.
package assistant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smileynet/addressbook/internal/contact"
)

// Fixed replies.
const (
	Greeting       = "Welcome to the assistant bot!"
	Farewell       = "Good bye!"
	InvalidCommand = "Invalid command."
)

// ErrMissingArgs indicates a command received too few arguments.
var ErrMissingArgs = errors.New("missing arguments")

// argsError carries the prompt shown when arguments are missing.
type argsError struct {
	prompt string
}

func (e *argsError) Error() string        { return e.prompt }
func (e *argsError) Is(target error) bool { return target == ErrMissingArgs }

func needArgs(prompt string) error {
	return &argsError{prompt: prompt}
}

// Reply is the outcome of one command line.
type Reply struct {
	Text string
	// Quit is set when the session should end.
	Quit bool
}

// handlerFunc runs a command. Returned errors are rendered by Handle.
type handlerFunc func(a *Assistant, args []string) (string, error)

type command struct {
	name    string
	aliases []string
	usage   string
	summary string
	run     handlerFunc
	quit    bool
}

// Assistant dispatches commands against a directory.
type Assistant struct {
	book     *contact.Directory
	now      func() time.Time
	window   time.Duration
	logger   *zap.Logger
	commands []command
	index    map[string]int
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithClock sets the time source used by the birthdays command.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// WithWindow sets the look-ahead span of the birthdays command.
func WithWindow(d time.Duration) Option {
	return func(a *Assistant) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// New creates an Assistant operating on book.
func New(book *contact.Directory, opts ...Option) *Assistant {
	a := &Assistant{
		book:   book,
		now:    time.Now,
		window: contact.DefaultWindow,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	a.commands = commandTable()
	a.index = make(map[string]int)
	for i, c := range a.commands {
		a.index[c.name] = i
		for _, alias := range c.aliases {
			a.index[alias] = i
		}
	}
	return a
}

// Parse splits line on whitespace. The command token is lower-cased;
// arguments are returned as typed.
func Parse(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// Handle runs one command line. It never returns an error: validation
// failures and missing arguments become the reply text.
func (a *Assistant) Handle(line string) Reply {
	name, args := Parse(line)
	i, ok := a.index[name]
	if !ok {
		a.logger.Debug("unknown command", zap.String("command", name))
		return Reply{Text: InvalidCommand}
	}
	c := a.commands[i]
	a.logger.Debug("dispatch", zap.String("command", c.name), zap.Int("args", len(args)))

	text, err := c.run(a, args)
	if err != nil {
		text = describe(err)
		a.logger.Debug("command rejected", zap.String("command", c.name), zap.Error(err))
	}
	return Reply{Text: text, Quit: c.quit}
}

// describe renders a handler error for the user.
func describe(err error) string {
	var ae *argsError
	if errors.As(err, &ae) {
		return ae.prompt
	}
	var ife *contact.InvalidFormatError
	if errors.As(err, &ife) {
		return ife.Message
	}
	return fmt.Sprintf("Error: %v", err)
}

// Help lists the available commands.
func (a *Assistant) Help() string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, c := range a.commands {
		usage := c.name
		if c.usage != "" {
			usage += " " + c.usage
		}
		for _, alias := range c.aliases {
			usage += " | " + alias
		}
		fmt.Fprintf(&b, "\n  %-36s %s", usage, c.summary)
	}
	return b.String()
}
