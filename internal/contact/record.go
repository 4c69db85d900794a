package contact

import (
	"strings"
)

// Record is one person's entry: a fixed name, phones in insertion order,
// and an optional birthday.
type Record struct {
	name     Name
	phones   []Phone
	birthday Birthday
}

// NewRecord creates a Record with no phones and no birthday.
func NewRecord(name string) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n}, nil
}

// Name returns the record's name.
func (r *Record) Name() string { return r.name.String() }

// Phones returns a copy of the record's phones.
func (r *Record) Phones() []Phone {
	out := make([]Phone, len(r.phones))
	copy(out, r.phones)
	return out
}

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (Birthday, bool) {
	return r.birthday, !r.birthday.IsZero()
}

// AddPhone validates raw and appends it. Duplicates are kept.
func (r *Record) AddPhone(raw string) error {
	p, err := NewPhone(raw)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// RemovePhone removes the first phone equal to raw and reports whether one was removed.
func (r *Record) RemovePhone(raw string) bool {
	i := r.indexOf(raw)
	if i < 0 {
		return false
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return true
}

// EditPhone replaces the first phone equal to oldRaw with newRaw.
// newRaw is validated before anything else, so an invalid replacement leaves
// the record unchanged. A missing oldRaw returns false with a nil error.
func (r *Record) EditPhone(oldRaw, newRaw string) (bool, error) {
	p, err := NewPhone(newRaw)
	if err != nil {
		return false, err
	}
	i := r.indexOf(oldRaw)
	if i < 0 {
		return false, nil
	}
	r.phones[i] = p
	return true, nil
}

// FindPhone returns the first phone equal to raw.
func (r *Record) FindPhone(raw string) (Phone, bool) {
	i := r.indexOf(raw)
	if i < 0 {
		return Phone{}, false
	}
	return r.phones[i], true
}

// SetBirthday validates raw and overwrites any existing birthday.
func (r *Record) SetBirthday(raw string) error {
	b, err := NewBirthday(raw)
	if err != nil {
		return err
	}
	r.birthday = b
	return nil
}

func (r *Record) indexOf(raw string) int {
	for i, p := range r.phones {
		if p.value == raw {
			return i
		}
	}
	return -1
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("Contact name: ")
	b.WriteString(r.name.String())
	b.WriteString(", phones: ")
	for i, p := range r.phones {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(p.String())
	}
	if !r.birthday.IsZero() {
		b.WriteString(", birthday: ")
		b.WriteString(r.birthday.String())
	}
	return b.String()
}
