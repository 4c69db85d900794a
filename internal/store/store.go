// Package store persists a contact directory as a single self-describing
// document on the filesystem.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/addressbook/internal/contact"
)

// DefaultPath is the address book location used when none is configured.
const DefaultPath = "address_book.json"

// formatVersion is written into every document.
const formatVersion = 1

// ErrCorrupt indicates the address book file exists but cannot be decoded.
var ErrCorrupt = errors.New("store: corrupt address book")

// CorruptError reports an undecodable address book file.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("store: parsing %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Is reports a match against ErrCorrupt.
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension. Unknown extensions use JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// document is the persisted shape of a directory.
type document struct {
	Version  int            `json:"version" yaml:"version"`
	Contacts []contactEntry `json:"contacts" yaml:"contacts"`
}

type contactEntry struct {
	Name     string          `json:"name" yaml:"name"`
	Phones   []contact.Phone `json:"phones" yaml:"phones"`
	Birthday string          `json:"birthday,omitempty" yaml:"birthday,omitempty"`
}

// FileStore saves and loads a whole directory at one path.
type FileStore struct {
	path   string
	format Format
	logger *zap.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithFormat overrides extension-based format detection.
func WithFormat(f Format) Option {
	return func(s *FileStore) { s.format = f }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) { s.logger = l }
}

// New creates a FileStore for path.
func New(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, format: FormatFor(path), logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Save writes every record in dir, replacing the file atomically.
func (s *FileStore) Save(dir *contact.Directory) error {
	doc := document{Version: formatVersion, Contacts: make([]contactEntry, 0, dir.Len())}
	for _, r := range dir.Records() {
		e := contactEntry{Name: r.Name(), Phones: r.Phones()}
		if b, ok := r.Birthday(); ok {
			e.Birthday = b.String()
		}
		doc.Contacts = append(doc.Contacts, e)
	}

	data, err := s.marshal(doc)
	if err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}

	if d := filepath.Dir(s.path); d != "." {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("store: creating directory: %w", err)
		}
	}

	// Write to a sibling temp file and rename so a failed write never
	// truncates the previous address book.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}

	s.logger.Debug("address book saved",
		zap.String("path", s.path),
		zap.String("format", string(s.format)),
		zap.Int("contacts", len(doc.Contacts)))
	return nil
}

// Load replaces dir's contents with the saved records.
// Returns (true, nil) if the file was read, (false, nil) if it does not exist.
// On any error dir is left untouched.
func (s *FileStore) Load(dir *contact.Directory) (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no address book yet", zap.String("path", s.path))
			return false, nil
		}
		return false, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	var doc document
	if err := s.unmarshal(data, &doc); err != nil {
		return false, &CorruptError{Path: s.path, Err: err}
	}
	if doc.Version != formatVersion {
		return false, &CorruptError{Path: s.path, Err: fmt.Errorf("unsupported version %d", doc.Version)}
	}

	records := make([]*contact.Record, 0, len(doc.Contacts))
	for i, e := range doc.Contacts {
		r, err := e.record()
		if err != nil {
			return false, &CorruptError{Path: s.path, Err: fmt.Errorf("contact %d: %w", i, err)}
		}
		records = append(records, r)
	}
	dir.Replace(records)

	s.logger.Debug("address book loaded",
		zap.String("path", s.path),
		zap.Int("contacts", len(records)))
	return true, nil
}

// Quarantine renames the address book file out of the way so a later Save
// does not overwrite data that could not be read. It returns the new path.
func (s *FileStore) Quarantine() (string, error) {
	dst := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, dst); err != nil {
		return "", fmt.Errorf("store: quarantining %s: %w", s.path, err)
	}
	s.logger.Warn("address book quarantined", zap.String("path", s.path), zap.String("moved_to", dst))
	return dst, nil
}

func (e contactEntry) record() (*contact.Record, error) {
	r, err := contact.NewRecord(e.Name)
	if err != nil {
		return nil, err
	}
	for _, p := range e.Phones {
		if err := r.AddPhone(p.String()); err != nil {
			return nil, err
		}
	}
	if e.Birthday != "" {
		if err := r.SetBirthday(e.Birthday); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *FileStore) marshal(doc document) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *FileStore) unmarshal(data []byte, doc *document) error {
	if s.format == FormatYAML {
		return yaml.Unmarshal(data, doc)
	}
	return json.Unmarshal(data, doc)
}
