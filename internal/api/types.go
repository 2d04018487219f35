package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salah/internal/salah"
)

// Response represents the top-level Al Adhan API response.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// Data holds the prayer timings, date info, and metadata.
type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings contains the six daily times as HH:MM strings.
// The API may include a timezone suffix like " (BST)", which Parse strips.
type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

// Parse converts the timings to date-times on the civil date of date in loc.
func (t Timings) Parse(date time.Time, loc *time.Location) (salah.PrayerTimes, error) {
	var pt salah.PrayerTimes
	fields := []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"Fajr", t.Fajr, &pt.Fajr},
		{"Sunrise", t.Sunrise, &pt.Sunrise},
		{"Dhuhr", t.Dhuhr, &pt.Dhuhr},
		{"Asr", t.Asr, &pt.Asr},
		{"Maghrib", t.Maghrib, &pt.Maghrib},
		{"Isha", t.Isha, &pt.Isha},
	}
	for _, f := range fields {
		v, err := parseClock(f.raw, date, loc)
		if err != nil {
			return salah.PrayerTimes{}, fmt.Errorf("failed to parse time for %s (%q): %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	return pt, nil
}

// parseClock parses "15:02" or "15:02 (BST)" into a time on the given date.
func parseClock(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	var hour, minute int
	if n, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil || n != 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time out of range: %q", raw)
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc), nil
}

// DateInfo contains date representations.
type DateInfo struct {
	Readable string    `json:"readable"`
	Hijri    HijriDate `json:"hijri"`
}

// HijriDate represents the Hijri (Islamic) date from the API response.
type HijriDate struct {
	Date        string           `json:"date"` // e.g. "10-08-1447"
	Day         string           `json:"day"`
	Month       HijriMonth       `json:"month"`
	Year        string           `json:"year"`
	Designation HijriDesignation `json:"designation"`
}

// HijriMonth represents the month in the Hijri calendar.
type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"`
}

// HijriDesignation contains the calendar designation labels.
type HijriDesignation struct {
	Abbreviated string `json:"abbreviated"` // "AH"
}

// Format returns the Hijri date as "DD MonthName YYYY AH".
func (h HijriDate) Format() string {
	if h.Day == "" || h.Month.En == "" || h.Year == "" {
		return ""
	}
	abbr := h.Designation.Abbreviated
	if abbr == "" {
		abbr = "AH"
	}
	return h.Day + " " + h.Month.En + " " + h.Year + " " + abbr
}

// Meta contains request metadata returned by the API.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
	School    string     `json:"school"`
}

// MethodInfo identifies the calculation method used.
type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
