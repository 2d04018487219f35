// Package salah computes daily prayer start times from solar geometry.
//
// The model is the standard approximate solar-position method used by prayer
// time calculators, not a full ephemeris. Solar coordinates are evaluated once
// at 00:00 UTC of the civil date and then refined at the estimated local noon.
//
// All functions are pure and safe for concurrent use. At latitudes near or
// beyond the polar circles a twilight angle may never be reached; the hour
// angle cosine is then clamped to [-1, 1], so the corresponding time collapses
// onto solar noon or lies twelve hours from it instead of failing.
package salah

import (
	"math"
	"time"
)

// ClockBias is an empirical correction, in hours (about one minute), added to
// every computed time. Its origin is undocumented.
// TODO: have the bias reviewed against an almanac and drop it if unjustified.
const ClockBias = 0.017

// sunAltitude is the depression used for sunrise and sunset: refraction plus
// the solar semi-diameter.
const sunAltitude = 0.833

// PrayerTimes holds the six daily instants for one civil date at one location.
type PrayerTimes struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// Calculate returns the prayer times for the civil date of date (its clock and
// location are ignored) at the given coordinates. Results are expressed in tz;
// the UTC offset used is the one in effect at local midnight of that date.
//
// Every time except Isha under an interval method is wrapped onto the civil
// date. Interval Isha is exactly Maghrib plus the interval, so at high
// latitudes in summer it can fall after midnight on the following date.
func Calculate(date time.Time, latitude, longitude float64, tz *time.Location, method Method, asr AsrConvention) PrayerTimes {
	if tz == nil {
		tz = time.UTC
	}
	y, m, d := date.Date()

	_, offset := time.Date(y, m, d, 0, 0, 0, 0, tz).Zone()
	tzHours := float64(offset) / 3600

	// Pass 1: solar coordinates at 00:00 UTC.
	jd0 := JulianDay(y, m, d)
	_, eqt := sunPosition(jd0)
	noon := 12 + tzHours - longitude/15 - eqt

	// Pass 2: re-evaluate at the estimated noon.
	decl, eqt := sunPosition(jd0 + noon/24)
	noon = 12 + tzHours - longitude/15 - eqt

	sunriseHA := hourAngle(-sunAltitude, latitude, decl)
	fajrHA := hourAngle(-method.Fajr, latitude, decl)
	asrHA := hourAngle(asrAltitude(asr.ShadowFactor(), latitude, decl), latitude, decl)

	at := func(hours float64) time.Time {
		return clockTime(y, m, d, tz, hours+ClockBias)
	}

	pt := PrayerTimes{
		Fajr:    at(noon - fajrHA),
		Sunrise: at(noon - sunriseHA),
		Dhuhr:   at(noon),
		Asr:     at(noon + asrHA),
		Maghrib: at(noon + sunriseHA),
	}

	isha := method.Isha
	if isha == nil {
		isha = MWL.Isha
	}
	switch isha := isha.(type) {
	case IshaInterval:
		pt.Isha = pt.Maghrib.Add(time.Duration(isha) * time.Minute)
	case IshaAngle:
		pt.Isha = at(noon + hourAngle(-float64(isha), latitude, decl))
	}

	return pt
}

// JulianDay returns the Julian Day number at 00:00 UTC of a Gregorian date.
func JulianDay(year int, month time.Month, day int) float64 {
	y, m := year, int(month)
	if m <= 2 {
		y--
		m += 12
	}
	a := math.Floor(float64(y) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(y+4716)) + math.Floor(30.6001*float64(m+1)) + float64(day) + b - 1524.5
}

// sunPosition returns the solar declination in degrees and the equation of
// time in hours for the given Julian Day. The equation of time is returned in
// (-12, 12] rather than [0, 24), so the second noon pass is evaluated on the
// civil date instead of about a day away from it.
func sunPosition(jd float64) (decl, eqt float64) {
	n := jd - 2451545.0

	g := fixAngle(357.529 + 0.98560028*n) // mean anomaly
	q := fixAngle(280.459 + 0.98564736*n) // mean longitude
	l := fixAngle(q + 1.915*sinDeg(g) + 0.020*sinDeg(2*g))
	e := 23.439 - 0.00000036*n // obliquity

	decl = asinDeg(sinDeg(e) * sinDeg(l))
	ra := fixAngle(degrees(math.Atan2(cosDeg(e)*sinDeg(l), cosDeg(l))))
	eqt = fixHour(q/15 - ra/15)
	if eqt > 12 {
		eqt -= 24
	}
	return decl, eqt
}

// hourAngle returns the time in hours between solar noon and the moment the
// sun reaches the given altitude (negative below the horizon).
func hourAngle(altitude, latitude, decl float64) float64 {
	x := (sinDeg(altitude) - sinDeg(latitude)*sinDeg(decl)) / (cosDeg(latitude) * cosDeg(decl))
	return acosDeg(clamp(x, -1, 1)) / 15
}

// asrAltitude is the sun's altitude when an object's shadow equals factor
// times its height plus its noon shadow.
func asrAltitude(factor, latitude, decl float64) float64 {
	return degrees(math.Atan(1 / (factor + math.Tan(radians(math.Abs(latitude-decl))))))
}

// clockTime converts decimal hours after local midnight into a time on the
// civil date, wrapping the value into [0, 24).
func clockTime(y int, m time.Month, d int, tz *time.Location, hours float64) time.Time {
	h := fixHour(hours)
	hh := int(h)
	mf := (h - float64(hh)) * 60
	mm := int(mf)
	ss := int(math.Round((mf - float64(mm)) * 60))
	if ss > 59 {
		ss = 59
	}
	return time.Date(y, m, d, hh, mm, ss, 0, tz)
}

func fixAngle(a float64) float64 { return wrap(a, 360) }
func fixHour(h float64) float64  { return wrap(h, 24) }

func wrap(v, n float64) float64 {
	v = math.Mod(v, n)
	if v < 0 {
		v += n
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }

func sinDeg(d float64) float64  { return math.Sin(radians(d)) }
func cosDeg(d float64) float64  { return math.Cos(radians(d)) }
func asinDeg(x float64) float64 { return degrees(math.Asin(x)) }
func acosDeg(x float64) float64 { return degrees(math.Acos(x)) }
