// Package jamaat derives congregation times from prayer start times and a
// per-prayer rule set.
package jamaat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownPrayer is returned when a prayer name is not recognised.
	ErrUnknownPrayer = errors.New("unknown prayer")
	// ErrInvalidRule is returned by ParseRule for malformed input.
	ErrInvalidRule = errors.New("invalid jamaat rule")
)

// Prayer identifies a prayer that has a congregation time. Sunrise is not a
// prayer and has no entry.
type Prayer int

const (
	Fajr Prayer = iota
	Dhuhr
	Asr
	Maghrib
	Isha
	Jumuah
)

// Prayers lists every Prayer in canonical order.
var Prayers = []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha, Jumuah}

var prayerNames = [...]string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha", "Jumuah"}

func (p Prayer) String() string {
	if p < Fajr || p > Jumuah {
		return fmt.Sprintf("Prayer(%d)", int(p))
	}
	return prayerNames[p]
}

// DisplayName returns the name shown to users.
func (p Prayer) DisplayName() string {
	if p == Jumuah {
		return "Jumu'ah"
	}
	return p.String()
}

// ParsePrayer matches a prayer name case-insensitively. "Jumu'ah" and
// "Jummah" are accepted for Jumuah.
func ParsePrayer(s string) (Prayer, error) {
	name := strings.TrimSpace(s)
	for _, p := range Prayers {
		if strings.EqualFold(p.String(), name) || strings.EqualFold(p.DisplayName(), name) {
			return p, nil
		}
	}
	if strings.EqualFold(name, "jummah") || strings.EqualFold(name, "friday") {
		return Jumuah, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPrayer, s)
}

// Rule places a congregation relative to a prayer's start time. It is either
// an Offset or a Fixed clock time.
type Rule interface {
	// Apply returns the congregation time for a prayer starting at start on
	// the civil date of date.
	Apply(date, start time.Time) time.Time
	String() string
	rule()
}

// Offset places the congregation a number of minutes after the start time.
type Offset struct {
	Minutes int
}

// Fixed places the congregation at a wall-clock time on the prayer's date.
type Fixed struct {
	Hour12 int // 1-12
	Minute int // 0-59
	PM     bool
}

func (Offset) rule() {}
func (Fixed) rule()  {}

// Apply adds the offset to start. Negative offsets count as zero.
func (o Offset) Apply(_, start time.Time) time.Time {
	return start.Add(time.Duration(max(o.Minutes, 0)) * time.Minute)
}

func (o Offset) String() string {
	return fmt.Sprintf("+%d min", max(o.Minutes, 0))
}

// Apply returns the fixed clock time on date, in start's location. Only the
// location of start is used, so the result may precede it.
func (f Fixed) Apply(date, start time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, f.Hour24(), clampInt(f.Minute, 0, 59), 0, 0, start.Location())
}

// Hour24 converts the 12-hour clock value to 0-23.
func (f Fixed) Hour24() int {
	h := clampInt(f.Hour12, 1, 12) % 12
	if f.PM {
		h += 12
	}
	return h
}

func (f Fixed) String() string {
	return fmt.Sprintf("%d:%02d %s", clampInt(f.Hour12, 1, 12), clampInt(f.Minute, 0, 59), meridiem(f.PM))
}

func meridiem(pm bool) string {
	if pm {
		return "PM"
	}
	return "AM"
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
