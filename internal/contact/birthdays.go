package contact

import (
	"sort"
	"time"
)

// DefaultWindow is the look-ahead span for upcoming birthdays.
const DefaultWindow = 7 * 24 * time.Hour

// Upcoming is a record whose birthday falls inside the look-ahead window.
type Upcoming struct {
	Name string
	// Date is the birthday projected onto the reference year.
	Date time.Time
}

// DateString renders the projected date as DD.MM.YYYY.
func (u Upcoming) DateString() string {
	return u.Date.Format(BirthdayLayout)
}

// ProjectBirthday moves b's month and day onto year in loc at midnight.
// Feb 29 falls on Mar 1 in years without a leap day.
func ProjectBirthday(b Birthday, year int, loc *time.Location) time.Time {
	_, month, day := b.date.Date()
	// time.Date normalises Feb 29 of a common year to Mar 1.
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// UpcomingBirthdays returns records whose birthday, projected onto ref's year,
// lands between the start of ref's day and ref+window inclusive. The result
// is ordered by projected date, then by name.
func (d *Directory) UpcomingBirthdays(ref time.Time, window time.Duration) []Upcoming {
	loc := ref.Location()
	y, m, day := ref.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, loc)
	end := windowEnd(ref, window)

	var out []Upcoming
	for _, r := range d.Records() {
		b, ok := r.Birthday()
		if !ok {
			continue
		}
		projected := ProjectBirthday(b, y, loc)
		if projected.Before(start) || projected.After(end) {
			continue
		}
		out = append(out, Upcoming{Name: r.Name(), Date: projected})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// windowEnd adds the whole days of window to ref on the wall clock, so a DST
// change inside the window does not shorten it. Any remainder is elapsed time.
func windowEnd(ref time.Time, window time.Duration) time.Time {
	const day = 24 * time.Hour
	days := int(window / day)
	return ref.AddDate(0, 0, days).Add(window % day)
}
