package contact

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
)

func withBirthday(t *testing.T, name, birthday string) *Record {
	t.Helper()
	r := newTestRecord(t, name)
	if err := r.SetBirthday(birthday); err != nil {
		t.Fatalf("SetBirthday(%q) error = %v", birthday, err)
	}
	return r
}

func upcomingNames(ups []Upcoming) []string {
	names := make([]string, len(ups))
	for i, u := range ups {
		names[i] = u.Name + " " + u.DateString()
	}
	return names
}

func TestUpcomingBirthdays(t *testing.T) {
	ref := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	tests := []struct {
		name string
		ref  time.Time
		recs map[string]string
		want []string
	}{
		{
			name: "inside and outside the week",
			ref:  ref,
			recs: map[string]string{"Near": "03.06.1990", "Far": "15.06.1990"},
			want: []string{"Near 03.06.2024"},
		},
		{
			name: "window edges are inclusive",
			ref:  ref,
			recs: map[string]string{"Today": "01.06.1980", "Edge": "08.06.1980", "Past": "31.05.1980", "After": "09.06.1980"},
			want: []string{"Today 01.06.2024", "Edge 08.06.2024"},
		},
		{
			name: "birthday today counts later in the day",
			ref:  ref.Add(15 * time.Hour),
			recs: map[string]string{"Today": "01.06.1980"},
			want: []string{"Today 01.06.2024"},
		},
		{
			name: "sorted by projected date then name",
			ref:  ref,
			recs: map[string]string{"Zed": "02.06.1970", "Amy": "05.06.2001", "Bob": "02.06.1999"},
			want: []string{"Bob 02.06.2024", "Zed 02.06.2024", "Amy 05.06.2024"},
		},
		{
			name: "leap day falls on March 1 in common years",
			ref:  time.Date(2023, time.February, 27, 9, 0, 0, 0, time.UTC),
			recs: map[string]string{"Leap": "29.02.2000"},
			want: []string{"Leap 01.03.2023"},
		},
		{
			name: "leap day kept in leap years",
			ref:  time.Date(2024, time.February, 27, 9, 0, 0, 0, time.UTC),
			recs: map[string]string{"Leap": "29.02.2000"},
			want: []string{"Leap 29.02.2024"},
		},
		{
			name: "projection stays in the reference year",
			ref:  time.Date(2024, time.December, 29, 0, 0, 0, 0, time.UTC),
			recs: map[string]string{"NewYear": "02.01.1990", "Eve": "31.12.1990"},
			want: []string{"Eve 31.12.2024"},
		},
		{
			name: "week across the autumn clock change keeps its last day",
			ref:  time.Date(2024, time.October, 27, 0, 0, 0, 0, berlin),
			recs: map[string]string{"Last": "03.11.1990", "Out": "04.11.1990"},
			want: []string{"Last 03.11.2024"},
		},
		{
			name: "week across the spring clock change keeps its last day",
			ref:  time.Date(2024, time.March, 31, 0, 0, 0, 0, berlin),
			recs: map[string]string{"Last": "07.04.1990", "Out": "08.04.1990"},
			want: []string{"Last 07.04.2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirectory()
			for name, bd := range tt.recs {
				d.Add(withBirthday(t, name, bd))
			}
			d.Add(newTestRecord(t, "NoBirthday", "1234567890"))

			got := upcomingNames(d.UpcomingBirthdays(tt.ref, DefaultWindow))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("UpcomingBirthdays() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpcomingBirthdays_Empty(t *testing.T) {
	d := NewDirectory()
	d.Add(newTestRecord(t, "John", "1234567890"))

	if got := d.UpcomingBirthdays(time.Now(), DefaultWindow); len(got) != 0 {
		t.Errorf("UpcomingBirthdays() = %v, want empty", got)
	}
}

func TestWindowEnd(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	ref := time.Date(2024, time.October, 27, 0, 0, 0, 0, berlin)

	tests := []struct {
		window time.Duration
		want   time.Time
	}{
		{DefaultWindow, time.Date(2024, time.November, 3, 0, 0, 0, 0, berlin)},
		{36 * time.Hour, time.Date(2024, time.October, 28, 12, 0, 0, 0, berlin)},
		{90 * time.Minute, ref.Add(90 * time.Minute)},
	}
	for _, tt := range tests {
		if got := windowEnd(ref, tt.window); !got.Equal(tt.want) {
			t.Errorf("windowEnd(%v) = %v, want %v", tt.window, got, tt.want)
		}
	}
}

func TestProjectBirthday_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	b, err := NewBirthday("10.10.1990")
	if err != nil {
		t.Fatal(err)
	}

	got := ProjectBirthday(b, 2026, loc)

	want := time.Date(2026, time.October, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Errorf("ProjectBirthday() = %v, want %v", got, want)
	}
}
