package jamaat

import (
	"time"

	"github.com/smokyabdulrahman/salah/internal/salah"
)

// Times holds the congregation times for one civil date.
//
// On a Friday, Dhuhr is overridden with the Jumuah time so consumers that only
// read Dhuhr see the Friday congregation. Jumuah is the zero time on any other
// day.
type Times struct {
	Fajr    time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
	Jumuah  time.Time
}

// IsFriday reports whether a Jumuah time was computed.
func (t Times) IsFriday() bool {
	return !t.Jumuah.IsZero()
}

// For returns the congregation time for p. For Jumuah on a non-Friday it
// returns the zero time.
func (t Times) For(p Prayer) time.Time {
	switch p {
	case Fajr:
		return t.Fajr
	case Dhuhr:
		return t.Dhuhr
	case Asr:
		return t.Asr
	case Maghrib:
		return t.Maghrib
	case Isha:
		return t.Isha
	case Jumuah:
		return t.Jumuah
	default:
		return time.Time{}
	}
}

// Compute applies rules to the start times of the civil date of date. Only the
// year, month and day of date are used; results are in the start times'
// location. Missing rules fall back to DefaultRule.
func Compute(date time.Time, start salah.PrayerTimes, rules RuleSet) Times {
	t := Times{
		Fajr:    rules.Rule(Fajr).Apply(date, start.Fajr),
		Dhuhr:   rules.Rule(Dhuhr).Apply(date, start.Dhuhr),
		Asr:     rules.Rule(Asr).Apply(date, start.Asr),
		Maghrib: rules.Rule(Maghrib).Apply(date, start.Maghrib),
		Isha:    rules.Rule(Isha).Apply(date, start.Isha),
	}

	if civilWeekday(date) == time.Friday {
		t.Jumuah = rules.Rule(Jumuah).Apply(date, start.Dhuhr)
		t.Dhuhr = t.Jumuah
	}

	return t
}

func civilWeekday(date time.Time) time.Weekday {
	y, m, d := date.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Weekday()
}
