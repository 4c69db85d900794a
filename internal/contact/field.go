// Package contact implements the address book data model: validated field
// values, contact records, and the directory that owns them.
package contact

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// BirthdayLayout is the DD.MM.YYYY layout used to parse and render birthdays.
const BirthdayLayout = "02.01.2006"

var (
	// ErrInvalidFormat is matched by every field validation failure.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrEmptyName indicates a record was created without a name.
	ErrEmptyName = errors.New("contact: name cannot be empty")
)

// InvalidFormatError carries the user-facing message for a rejected field value.
type InvalidFormatError struct {
	Field   string
	Value   string
	Message string
}

func (e *InvalidFormatError) Error() string {
	return e.Message
}

// Is reports a match against ErrInvalidFormat.
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

const (
	phoneMessage    = "Phone number must be 10 digits long."
	birthdayMessage = "Invalid date format. Use DD.MM.YYYY"
)

var (
	phonePattern    = regexp.MustCompile(`^[0-9]{10}$`)
	birthdayPattern = regexp.MustCompile(`^[0-9]{2}\.[0-9]{2}\.[0-9]{4}$`)
)

// Name is a contact's identity. Any non-blank text is accepted.
type Name struct {
	value string
}

// NewName returns a Name, rejecting empty or whitespace-only input.
func NewName(raw string) (Name, error) {
	if strings.TrimSpace(raw) == "" {
		return Name{}, ErrEmptyName
	}
	return Name{value: raw}, nil
}

func (n Name) String() string { return n.value }

// Phone is a 10-digit phone number.
type Phone struct {
	value string
}

// NewPhone validates raw as exactly ten decimal digits.
func NewPhone(raw string) (Phone, error) {
	if !phonePattern.MatchString(raw) {
		return Phone{}, &InvalidFormatError{Field: "phone", Value: raw, Message: phoneMessage}
	}
	return Phone{value: raw}, nil
}

func (p Phone) String() string { return p.value }

// MarshalText implements encoding.TextMarshaler.
func (p Phone) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, applying NewPhone's rule.
func (p *Phone) UnmarshalText(text []byte) error {
	v, err := NewPhone(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Birthday is a calendar date entered as DD.MM.YYYY.
// Only the year, month and day are meaningful.
type Birthday struct {
	date time.Time
	set  bool
}

// NewBirthday parses raw as DD.MM.YYYY. Impossible dates such as 31.02.2000 fail.
func NewBirthday(raw string) (Birthday, error) {
	// time.Parse tolerates single-digit day and month for "02"/"01"; the
	// pattern pins the exact width.
	if !birthdayPattern.MatchString(raw) {
		return Birthday{}, &InvalidFormatError{Field: "birthday", Value: raw, Message: birthdayMessage}
	}
	d, err := time.Parse(BirthdayLayout, raw)
	if err != nil {
		return Birthday{}, &InvalidFormatError{Field: "birthday", Value: raw, Message: birthdayMessage}
	}
	return Birthday{date: d, set: true}, nil
}

// IsZero reports whether the birthday is unset. 01.01.0001 is a set birthday.
func (b Birthday) IsZero() bool { return !b.set }

func (b Birthday) String() string {
	if b.IsZero() {
		return ""
	}
	return b.date.Format(BirthdayLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (b Birthday) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, applying NewBirthday's rule.
func (b *Birthday) UnmarshalText(text []byte) error {
	v, err := NewBirthday(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
