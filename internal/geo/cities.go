// Package geo resolves a place label such as "Karachi, Pakistan" to
// coordinates and a time zone using a small built-in table.
package geo

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Location holds geographic coordinates and the IANA time zone of a place.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
}

// Label returns "City, Country", or the coordinates when no city is known.
func (l Location) Label() string {
	if l.City != "" && l.Country != "" {
		return l.City + ", " + l.Country
	}
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

// Zone loads the location's time zone. An empty Timezone means time.Local.
func (l Location) Zone() (*time.Location, error) {
	if l.Timezone == "" || l.Timezone == "Local" {
		return time.Local, nil
	}
	tz, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", l.Timezone, err)
	}
	return tz, nil
}

// cities is keyed by "City, Country".
var cities = map[string]Location{
	"Karachi, Pakistan":   {Latitude: 24.8607, Longitude: 67.0011, Timezone: "Asia/Karachi"},
	"Lahore, Pakistan":    {Latitude: 31.5204, Longitude: 74.3587, Timezone: "Asia/Karachi"},
	"Islamabad, Pakistan": {Latitude: 33.6844, Longitude: 73.0479, Timezone: "Asia/Karachi"},

	"Riyadh, Saudi Arabia":  {Latitude: 24.7136, Longitude: 46.6753, Timezone: "Asia/Riyadh"},
	"Makkah, Saudi Arabia":  {Latitude: 21.3891, Longitude: 39.8579, Timezone: "Asia/Riyadh"},
	"Madinah, Saudi Arabia": {Latitude: 24.5247, Longitude: 39.5692, Timezone: "Asia/Riyadh"},

	"Dubai, United Arab Emirates": {Latitude: 25.2048, Longitude: 55.2708, Timezone: "Asia/Dubai"},
	"Doha, Qatar":                 {Latitude: 25.2854, Longitude: 51.5310, Timezone: "Asia/Qatar"},
	"Istanbul, Türkiye":           {Latitude: 41.0082, Longitude: 28.9784, Timezone: "Europe/Istanbul"},
	"Cairo, Egypt":                {Latitude: 30.0444, Longitude: 31.2357, Timezone: "Africa/Cairo"},

	"Jakarta, Indonesia":     {Latitude: -6.2088, Longitude: 106.8456, Timezone: "Asia/Jakarta"},
	"Kuala Lumpur, Malaysia": {Latitude: 3.1390, Longitude: 101.6869, Timezone: "Asia/Kuala_Lumpur"},

	"London, United Kingdom":  {Latitude: 51.5074, Longitude: -0.1278, Timezone: "Europe/London"},
	"New York, United States": {Latitude: 40.7128, Longitude: -74.0060, Timezone: "America/New_York"},
	"Toronto, Canada":         {Latitude: 43.6532, Longitude: -79.3832, Timezone: "America/Toronto"},
}

// Labels returns every known "City, Country" label, sorted.
func Labels() []string {
	labels := make([]string, 0, len(cities))
	for k := range cities {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// Cities returns every known location, sorted by label.
func Cities() []Location {
	out := make([]Location, 0, len(cities))
	for _, label := range Labels() {
		out = append(out, withLabel(label, cities[label]))
	}
	return out
}

// Lookup finds a location by label. An exact label wins; otherwise the first
// label (in sorted order) that starts with the input or contains ", <input>"
// matches, ignoring case.
func Lookup(label string) (Location, bool) {
	cleaned := strings.TrimSpace(label)
	if cleaned == "" {
		return Location{}, false
	}
	if loc, ok := cities[cleaned]; ok {
		return withLabel(cleaned, loc), true
	}

	needle := strings.ToLower(cleaned)
	for _, k := range Labels() {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, needle) || strings.Contains(lk, ", "+needle) {
			return withLabel(k, cities[k]), true
		}
	}
	return Location{}, false
}

// Resolve is Lookup with a fallback of (0, 0) in the given zone (time.Local
// when nil). The boolean reports whether the label matched.
func Resolve(label string, fallback *time.Location) (Location, bool) {
	if loc, ok := Lookup(label); ok {
		return loc, true
	}
	if fallback == nil {
		fallback = time.Local
	}
	return Location{Timezone: fallback.String()}, false
}

func withLabel(label string, loc Location) Location {
	city, country, _ := strings.Cut(label, ", ")
	loc.City = city
	loc.Country = country
	return loc
}
