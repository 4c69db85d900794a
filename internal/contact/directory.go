package contact

import (
	"strings"
)

// EmptyListing is returned by Directory.String when there are no records.
const EmptyListing = "No contacts found."

// Directory maps contact names to records. At most one record exists per
// name. Iteration follows insertion order; overwriting a name keeps its slot.
type Directory struct {
	records map[string]*Record
	order   []string
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{records: make(map[string]*Record)}
}

// Add stores r under its name, discarding any previous record for that name.
func (d *Directory) Add(r *Record) {
	name := r.Name()
	if _, ok := d.records[name]; !ok {
		d.order = append(d.order, name)
	}
	d.records[name] = r
}

// Find returns the record stored under name.
func (d *Directory) Find(name string) (*Record, bool) {
	r, ok := d.records[name]
	return r, ok
}

// Delete removes the record stored under name and reports whether it existed.
func (d *Directory) Delete(name string) bool {
	if _, ok := d.records[name]; !ok {
		return false
	}
	delete(d.records, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of records.
func (d *Directory) Len() int { return len(d.records) }

// Records returns the records in iteration order.
func (d *Directory) Records() []*Record {
	out := make([]*Record, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.records[name])
	}
	return out
}

// Replace discards every record and stores records in their given order.
// A later record with a repeated name overwrites the earlier one.
func (d *Directory) Replace(records []*Record) {
	d.records = make(map[string]*Record, len(records))
	d.order = d.order[:0]
	for _, r := range records {
		d.Add(r)
	}
}

// String lists every record on its own line, or EmptyListing.
func (d *Directory) String() string {
	if len(d.order) == 0 {
		return EmptyListing
	}
	lines := make([]string, 0, len(d.order))
	for _, r := range d.Records() {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}
