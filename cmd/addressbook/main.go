package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/addressbook"
	"github.com/smileynet/addressbook/internal/assistant"
	"github.com/smileynet/addressbook/internal/config"
	"github.com/smileynet/addressbook/internal/contact"
	"github.com/smileynet/addressbook/internal/store"
	"github.com/smileynet/addressbook/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	ConfigFile string `help:"Project config file." name:"config" default:".addressbook.yaml" type:"path"`
	File       string `help:"Address book file (overrides config)." short:"f"`
	LogFile    string `help:"Write diagnostic logs to this file." name:"log-file"`
	Verbose    bool   `help:"Log at debug level." short:"v"`
}

// CLI is the top-level command structure for addressbook.
type CLI struct {
	Globals

	Version    kong.VersionFlag `help:"Show version." short:"V"`
	Session    SessionCmd       `cmd:"" default:"1" help:"Start an interactive session (default)."`
	Exec       ExecCmd          `cmd:"" help:"Run a single assistant command and save."`
	Birthdays  BirthdaysCmd     `cmd:"" help:"List upcoming birthdays."`
	ShowConfig ConfigCmd        `cmd:"" name:"config" help:"Print configuration."`
}

// bookStore abstracts address book persistence for testing.
type bookStore interface {
	Load(dir *contact.Directory) (bool, error)
	Save(dir *contact.Directory) error
	Quarantine() (string, error)
	Path() string
}

// SaveError reports that the address book could not be written on exit.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return fmt.Sprintf("saving address book: %v", e.Err) }
func (e *SaveError) Unwrap() error { return e.Err }

// loadConfig loads layered config from user and project paths with env and
// flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/addressbook/config.yaml"),
		g.ConfigFile,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.File != "" {
		cfg.Storage.Path = g.File
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if g.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads config and builds the logger and store shared by commands.
// The returned func flushes the logger.
func (g *Globals) setup() (*config.Config, *zap.Logger, *store.FileStore, func(), error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	opts := []store.Option{store.WithLogger(logger)}
	if cfg.Storage.Format != "" {
		opts = append(opts, store.WithFormat(store.Format(cfg.Storage.Format)))
	}
	st := store.New(cfg.Storage.Path, opts...)
	return cfg, logger, st, func() { _ = logger.Sync() }, nil
}

// newLogger builds a JSON file logger, or a no-op logger when no file is set.
func newLogger(lc config.Log) (*zap.Logger, error) {
	if lc.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{lc.File}
	zc.ErrorOutputPaths = []string{lc.File}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("log: opening %s: %w", lc.File, err)
	}
	return logger, nil
}

// loadBook reads the saved address book. A corrupt file is reported to w and
// yields an empty book along with the error. Any other read failure returns a
// nil book, since nothing can be said about what the file holds.
func loadBook(w io.Writer, st bookStore) (*contact.Directory, error) {
	book := contact.NewDirectory()
	_, err := st.Load(book)
	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, store.ErrCorrupt):
		_, _ = fmt.Fprintf(w, "warning: %v; starting with an empty address book\n", err)
		return book, err
	default:
		return nil, fmt.Errorf("reading address book: %w", err)
	}
}

// withBook loads the address book, runs fn, and saves the book exactly once
// however fn ends, including by panic. A save failure is reported to w and
// returned as *SaveError unless fn already failed. A read failure other than
// corruption is returned before fn runs and nothing is saved.
func withBook(w io.Writer, st bookStore, fn func(*contact.Directory) error) (err error) {
	book, loadErr := loadBook(w, st)
	if book == nil {
		return loadErr
	}
	if errors.Is(loadErr, store.ErrCorrupt) {
		// Keep the unreadable file; the save below would replace it.
		if moved, qerr := st.Quarantine(); qerr != nil {
			_, _ = fmt.Fprintf(w, "warning: %v\n", qerr)
		} else {
			_, _ = fmt.Fprintf(w, "warning: unreadable address book moved to %s\n", moved)
		}
	}

	defer func() {
		if serr := st.Save(book); serr != nil {
			_, _ = fmt.Fprintf(w, "warning: could not save address book: %v\n", serr)
			if err == nil {
				err = &SaveError{Err: serr}
			}
		}
	}()

	return fn(book)
}

// --- Session command ---

// SessionCmd runs the interactive command loop.
type SessionCmd struct {
	NoTUI bool `help:"Force plain line input even if stdin is a TTY." name:"no-tui"`
}

// Run executes the session command.
func (s *SessionCmd) Run(g *Globals) error {
	cfg, logger, st, flush, err := g.setup()
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := tui.NewSession(tui.Options{
		ForcePlain: s.NoTUI || cfg.Session.Plain,
		Greeting:   assistant.Greeting,
		Prompt:     cfg.Session.Prompt,
	})

	logger.Info("session started", zap.String("book", st.Path()))
	return s.run(ctx, os.Stderr, st, sess,
		assistant.WithWindow(cfg.Birthdays.Window),
		assistant.WithLogger(logger),
	)
}

// run executes the session against st, enabling testable wiring.
func (s *SessionCmd) run(ctx context.Context, w io.Writer, st bookStore, sess tui.Session, opts ...assistant.Option) error {
	return withBook(w, st, func(book *contact.Directory) error {
		a := assistant.New(book, opts...)
		err := sess.Run(ctx, func(line string) (string, bool) {
			r := a.Handle(line)
			return r.Text, r.Quit
		})
		// An interrupt ends the session like exit does.
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
		return nil
	})
}

// --- Exec command ---

// ExecCmd runs one assistant command, e.g. `addressbook exec add John 1234567890`.
type ExecCmd struct {
	Command []string `arg:"" passthrough:"" help:"Command and arguments."`
}

// Run executes the exec command.
func (e *ExecCmd) Run(g *Globals) error {
	cfg, logger, st, flush, err := g.setup()
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	defer flush()

	return e.run(os.Stdout, os.Stderr, st,
		assistant.WithWindow(cfg.Birthdays.Window),
		assistant.WithLogger(logger),
	)
}

// run executes the command against st, enabling testable wiring.
func (e *ExecCmd) run(w, errw io.Writer, st bookStore, opts ...assistant.Option) error {
	return withBook(errw, st, func(book *contact.Directory) error {
		r := assistant.New(book, opts...).Handle(strings.Join(e.Command, " "))
		_, _ = fmt.Fprintln(w, r.Text)
		return nil
	})
}

// --- Birthdays command ---

// BirthdaysCmd prints upcoming birthdays without modifying the book.
type BirthdaysCmd struct {
	Days int    `help:"Look-ahead in days (default from config)."`
	Date string `help:"Reference date as DD.MM.YYYY (default today)."`
}

// Run executes the birthdays command.
func (b *BirthdaysCmd) Run(g *Globals) error {
	cfg, _, st, flush, err := g.setup()
	if err != nil {
		return fmt.Errorf("birthdays: %w", err)
	}
	defer flush()

	ref, window, err := b.resolve(time.Now(), cfg.Birthdays.Window)
	if err != nil {
		return fmt.Errorf("birthdays: %w", err)
	}
	if err := b.run(os.Stdout, os.Stderr, st, ref, window); err != nil {
		return fmt.Errorf("birthdays: %w", err)
	}
	return nil
}

// resolve applies the --date and --days flags over now and the configured window.
func (b *BirthdaysCmd) resolve(now time.Time, window time.Duration) (time.Time, time.Duration, error) {
	if b.Days < 0 {
		return time.Time{}, 0, fmt.Errorf("--days must be non-negative, got %d", b.Days)
	}
	if b.Days > 0 {
		window = time.Duration(b.Days) * 24 * time.Hour
	}
	if b.Date == "" {
		return now, window, nil
	}
	d, err := time.ParseInLocation(contact.BirthdayLayout, b.Date, now.Location())
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid --date %q, use DD.MM.YYYY", b.Date)
	}
	return d, window, nil
}

// run prints the upcoming birthdays found in st.
func (b *BirthdaysCmd) run(w, errw io.Writer, st bookStore, ref time.Time, window time.Duration) error {
	book, err := loadBook(errw, st)
	if book == nil {
		return err
	}
	_, _ = fmt.Fprintln(w, assistant.FormatUpcoming(book.UpcomingBirthdays(ref, window), window))
	return nil
}

// --- Config command ---

// ConfigCmd prints the example or the effective configuration.
type ConfigCmd struct {
	Effective bool `help:"Print the merged configuration instead of the annotated example."`
}

// Run executes the config command.
func (c *ConfigCmd) Run(g *Globals) error {
	if !c.Effective {
		_, err := os.Stdout.Write(addressbook.ExampleConfig())
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return writeConfig(os.Stdout, cfg)
}

// writeConfig encodes cfg as YAML.
func writeConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	return enc.Close()
}

// Exit codes.
const (
	exitSuccess = 0
	exitSave    = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *SaveError
	if errors.As(err, &se) {
		return exitSave
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("addressbook"),
		kong.Description("A command-line contact manager."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
