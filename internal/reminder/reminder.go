// Package reminder plans the notifications a device would raise ahead of
// prayer start and congregation times. It only computes instants and texts;
// delivering them is left to the caller.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

// Kind classifies a reminder.
type Kind string

const (
	// KindStart fires at (or before) a prayer's start time.
	KindStart Kind = "start"
	// KindPre fires a lead time before a congregation.
	KindPre Kind = "pre"
	// KindJamaat fires at the congregation time itself.
	KindJamaat Kind = "jamaat"
)

// Reminder is one planned notification.
type Reminder struct {
	At     time.Time     `json:"at"`
	Prayer jamaat.Prayer `json:"-"`
	Name   string        `json:"prayer"`
	Kind   Kind          `json:"kind"`
	Title  string        `json:"title"`
	Body   string        `json:"body"`
}

// Prefs holds per-prayer switches and lead times in minutes. Missing entries
// mean disabled and zero lead. Jumuah entries only matter on Fridays, where
// they replace the Dhuhr congregation entries.
type Prefs struct {
	Start      map[jamaat.Prayer]bool
	Jamaat     map[jamaat.Prayer]bool
	StartLead  map[jamaat.Prayer]int
	JamaatLead map[jamaat.Prayer]int
}

// DefaultPrefs enables every reminder with no lead time.
func DefaultPrefs() Prefs {
	return Uniform(0, 0)
}

// Uniform enables every reminder with the same lead times for all prayers.
func Uniform(startLead, jamaatLead int) Prefs {
	p := Prefs{
		Start:      map[jamaat.Prayer]bool{},
		Jamaat:     map[jamaat.Prayer]bool{},
		StartLead:  map[jamaat.Prayer]int{},
		JamaatLead: map[jamaat.Prayer]int{},
	}
	for _, pr := range jamaat.Prayers {
		if pr != jamaat.Jumuah {
			p.Start[pr] = true
			p.StartLead[pr] = startLead
		}
		p.Jamaat[pr] = true
		p.JamaatLead[pr] = jamaatLead
	}
	return p
}

var daily = []jamaat.Prayer{jamaat.Fajr, jamaat.Dhuhr, jamaat.Asr, jamaat.Maghrib, jamaat.Isha}

// Plan returns the reminders for one day that fall strictly after now, sorted
// by instant. Negative lead times count as zero.
func Plan(start salah.PrayerTimes, jt jamaat.Times, prefs Prefs, now time.Time) []Reminder {
	startTimes := map[jamaat.Prayer]time.Time{
		jamaat.Fajr:    start.Fajr,
		jamaat.Dhuhr:   start.Dhuhr,
		jamaat.Asr:     start.Asr,
		jamaat.Maghrib: start.Maghrib,
		jamaat.Isha:    start.Isha,
	}

	var out []Reminder
	for _, p := range daily {
		if prefs.Start[p] {
			out = append(out, startReminder(p, startTimes[p], prefs.StartLead[p]))
		}

		congregation := p
		if p == jamaat.Dhuhr && jt.IsFriday() {
			congregation = jamaat.Jumuah
		}
		if prefs.Jamaat[congregation] {
			out = append(out, jamaatReminder(congregation, jt.For(congregation), prefs.JamaatLead[congregation]))
		}
	}

	kept := out[:0]
	for _, r := range out {
		if !r.At.IsZero() && r.At.After(now) {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].At.Before(kept[j].At) })
	return kept
}

func startReminder(p jamaat.Prayer, at time.Time, lead int) Reminder {
	lead = max(lead, 0)
	name := p.DisplayName()
	r := Reminder{
		At:     at.Add(-time.Duration(lead) * time.Minute),
		Prayer: p,
		Name:   name,
		Kind:   KindStart,
		Title:  name,
		Body:   fmt.Sprintf("It's time for %s", name),
	}
	if lead > 0 {
		r.Body = fmt.Sprintf("Starts in %d min", lead)
	}
	return r
}

func jamaatReminder(p jamaat.Prayer, at time.Time, lead int) Reminder {
	lead = max(lead, 0)
	name := p.DisplayName()
	r := Reminder{
		At:     at.Add(-time.Duration(lead) * time.Minute),
		Prayer: p,
		Name:   name,
		Kind:   KindJamaat,
		Title:  "Jamaat • " + name,
		Body:   fmt.Sprintf("It's time for %s Jamaat", name),
	}
	if lead > 0 {
		r.Kind = KindPre
		r.Body = fmt.Sprintf("Jamaat in %d min", lead)
	}
	return r
}
