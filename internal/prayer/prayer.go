package prayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

// Prayer represents a single schedule entry with its start and congregation
// time. Jamaat is the zero time for entries without a congregation (Sunrise).
type Prayer struct {
	Name   string
	Time   time.Time
	Jamaat time.Time
}

// HasJamaat reports whether the entry carries a congregation time.
func (p Prayer) HasJamaat() bool {
	return !p.Jamaat.IsZero()
}

// JumuahName is the schedule name of the Friday midday prayer.
const JumuahName = "Jumu'ah"

// AllPrayerNames lists every schedule entry, in chronological order. It is
// also the default selection.
var AllPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha",
}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[string]string{
	"Fajr":     "F",
	"Sunrise":  "S",
	"Dhuhr":    "D",
	JumuahName: "J",
	"Asr":      "A",
	"Maghrib":  "M",
	"Isha":     "I",
}

// Settings bundles everything needed to compute a day's schedule.
type Settings struct {
	Latitude  float64
	Longitude float64
	Location  *time.Location
	Method    salah.Method
	Asr       salah.AsrConvention
	Rules     jamaat.RuleSet
}

// Day is the start and congregation times for one civil date.
type Day struct {
	Date   time.Time
	Start  salah.PrayerTimes
	Jamaat jamaat.Times
}

// Day computes the schedule for the civil date of date as seen in the
// settings' location.
func (s Settings) Day(date time.Time) Day {
	loc := s.location()
	y, m, d := date.In(loc).Date()
	civil := time.Date(y, m, d, 0, 0, 0, 0, loc)

	start := salah.Calculate(civil, s.Latitude, s.Longitude, loc, s.Method, s.Asr)
	return Day{
		Date:   civil,
		Start:  start,
		Jamaat: jamaat.Compute(civil, start, s.Rules),
	}
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Prayers converts the day into schedule entries, filtered to the selected
// names and kept in chronological order. On a Friday the Dhuhr entry is named
// Jumu'ah and carries the Jumuah congregation time.
func (d Day) Prayers(selected []string) ([]Prayer, error) {
	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		if !isKnown(name) {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}
		want[name] = true
	}

	dhuhr := Prayer{Name: "Dhuhr", Time: d.Start.Dhuhr, Jamaat: d.Jamaat.Dhuhr}
	if d.Jamaat.IsFriday() {
		dhuhr = Prayer{Name: JumuahName, Time: d.Start.Dhuhr, Jamaat: d.Jamaat.Jumuah}
	}

	all := []struct {
		key string
		p   Prayer
	}{
		{"Fajr", Prayer{Name: "Fajr", Time: d.Start.Fajr, Jamaat: d.Jamaat.Fajr}},
		{"Sunrise", Prayer{Name: "Sunrise", Time: d.Start.Sunrise}},
		{"Dhuhr", dhuhr},
		{"Asr", Prayer{Name: "Asr", Time: d.Start.Asr, Jamaat: d.Jamaat.Asr}},
		{"Maghrib", Prayer{Name: "Maghrib", Time: d.Start.Maghrib, Jamaat: d.Jamaat.Maghrib}},
		{"Isha", Prayer{Name: "Isha", Time: d.Start.Isha, Jamaat: d.Jamaat.Isha}},
	}

	var prayers []Prayer
	for _, e := range all {
		if want[e.key] {
			prayers = append(prayers, e.p)
		}
	}
	return prayers, nil
}

func isKnown(name string) bool {
	for _, n := range AllPrayerNames {
		if n == name {
			return true
		}
	}
	return false
}

// NormalizeName maps user input such as "asr" or "jumuah" to a schedule key.
func NormalizeName(name string) (string, error) {
	if p, err := jamaat.ParsePrayer(name); err == nil {
		if p == jamaat.Jumuah {
			return "Dhuhr", nil
		}
		return p.String(), nil
	}
	for _, n := range AllPrayerNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer name: %s", name)
}

// NextPrayer finds the next upcoming prayer from the given slice, relative to now.
// If all prayers for the day have passed, it returns nil.
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the latest prayer whose time has been reached, or nil
// before the first one.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var cur *Prayer
	for i := range prayers {
		if prayers[i].Time.After(now) {
			break
		}
		cur = &prayers[i]
	}
	return cur
}

// Upcoming returns the next prayer after now, rolling over to the following
// day's schedule once today's selected prayers have all passed.
func Upcoming(s Settings, now time.Time, selected []string) (Prayer, error) {
	today, err := s.Day(now).Prayers(selected)
	if err != nil {
		return Prayer{}, err
	}
	if next := NextPrayer(today, now); next != nil {
		return *next, nil
	}

	tomorrow, err := s.Day(now.In(s.location()).AddDate(0, 0, 1)).Prayers(selected)
	if err != nil {
		return Prayer{}, err
	}
	if len(tomorrow) == 0 {
		return Prayer{}, fmt.Errorf("no prayers selected")
	}
	return tomorrow[0], nil
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(prayer Prayer, now time.Time) time.Duration {
	return prayer.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
