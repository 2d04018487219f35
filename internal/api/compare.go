package api

import (
	"time"

	"github.com/smokyabdulrahman/salah/internal/salah"
)

// Diff is the difference between a locally computed time and the reference.
type Diff struct {
	Name      string        `json:"name"`
	Local     time.Time     `json:"local"`
	Reference time.Time     `json:"reference"`
	Delta     time.Duration `json:"delta"`
}

// Within reports whether |Delta| is at most tolerance.
func (d Diff) Within(tolerance time.Duration) bool {
	delta := d.Delta
	if delta < 0 {
		delta = -delta
	}
	return delta <= tolerance
}

// Compare pairs each local time with its reference. Both sides are truncated
// to the minute because the service reports HH:MM.
func Compare(local, reference salah.PrayerTimes) []Diff {
	pairs := []struct {
		name string
		l, r time.Time
	}{
		{"Fajr", local.Fajr, reference.Fajr},
		{"Sunrise", local.Sunrise, reference.Sunrise},
		{"Dhuhr", local.Dhuhr, reference.Dhuhr},
		{"Asr", local.Asr, reference.Asr},
		{"Maghrib", local.Maghrib, reference.Maghrib},
		{"Isha", local.Isha, reference.Isha},
	}

	diffs := make([]Diff, 0, len(pairs))
	for _, p := range pairs {
		l := p.l.Truncate(time.Minute)
		r := p.r.Truncate(time.Minute)
		diffs = append(diffs, Diff{Name: p.name, Local: l, Reference: r, Delta: l.Sub(r)})
	}
	return diffs
}
