package server

import (
	"time"

	"github.com/smokyabdulrahman/salah/internal/geo"
	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

// TimingsDTO is the JSON form of salah.PrayerTimes.
type TimingsDTO struct {
	Fajr    time.Time `json:"fajr"`
	Sunrise time.Time `json:"sunrise"`
	Dhuhr   time.Time `json:"dhuhr"`
	Asr     time.Time `json:"asr"`
	Maghrib time.Time `json:"maghrib"`
	Isha    time.Time `json:"isha"`
}

func toTimingsDTO(pt salah.PrayerTimes) TimingsDTO {
	return TimingsDTO{
		Fajr:    pt.Fajr,
		Sunrise: pt.Sunrise,
		Dhuhr:   pt.Dhuhr,
		Asr:     pt.Asr,
		Maghrib: pt.Maghrib,
		Isha:    pt.Isha,
	}
}

// JamaatDTO is the JSON form of jamaat.Times. Jumuah is omitted except on
// Fridays.
type JamaatDTO struct {
	Fajr    time.Time  `json:"fajr"`
	Dhuhr   time.Time  `json:"dhuhr"`
	Asr     time.Time  `json:"asr"`
	Maghrib time.Time  `json:"maghrib"`
	Isha    time.Time  `json:"isha"`
	Jumuah  *time.Time `json:"jumuah,omitempty"`
}

func toJamaatDTO(jt jamaat.Times) JamaatDTO {
	dto := JamaatDTO{
		Fajr:    jt.Fajr,
		Dhuhr:   jt.Dhuhr,
		Asr:     jt.Asr,
		Maghrib: jt.Maghrib,
		Isha:    jt.Isha,
	}
	if jt.IsFriday() {
		j := jt.Jumuah
		dto.Jumuah = &j
	}
	return dto
}

// TimingsResponse is returned by GET /v1/timings.
type TimingsResponse struct {
	Date     string       `json:"date"`
	Location geo.Location `json:"location"`
	Method   string       `json:"method"`
	Asr      string       `json:"asr"`
	Timings  TimingsDTO   `json:"timings"`
}

// JamaatResponse is returned by GET /v1/jamaat.
type JamaatResponse struct {
	TimingsResponse
	Rules  string    `json:"rules"`
	Jamaat JamaatDTO `json:"jamaat"`
}

// MethodDTO describes a calculation method.
type MethodDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Fajr        float64 `json:"fajr_angle"`
	Isha        string  `json:"isha"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
