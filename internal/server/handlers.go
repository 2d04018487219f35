package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salah/internal/geo"
	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/prayer"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

// Defaults apply when a request omits a parameter.
type Defaults struct {
	Location geo.Location
	Method   salah.Method
	Asr      salah.AsrConvention
	Rules    jamaat.RuleSet
}

// Handler serves the read-only prayer time API.
type Handler struct {
	defaults Defaults
	now      func() time.Time
}

// NewHandler creates a handler that falls back to d for omitted parameters.
func NewHandler(d Defaults) *Handler {
	if d.Method.Isha == nil {
		d.Method = salah.MWL
	}
	return &Handler{defaults: d, now: time.Now}
}

var errBadRequest = errors.New("invalid query parameter")

// request is a fully resolved query.
type request struct {
	date     time.Time
	location geo.Location
	settings prayer.Settings
}

func (h *Handler) parse(r *http.Request) (request, error) {
	q := r.URL.Query()
	loc := h.defaults.Location

	switch {
	case q.Get("city") != "":
		found, ok := geo.Lookup(q.Get("city"))
		if !ok {
			return request{}, fmt.Errorf("%w: unknown city %q", errBadRequest, q.Get("city"))
		}
		loc = found
	case q.Get("latitude") != "" || q.Get("longitude") != "":
		lat, err := parseCoord(q.Get("latitude"), 90)
		if err != nil {
			return request{}, fmt.Errorf("%w: latitude: %v", errBadRequest, err)
		}
		lon, err := parseCoord(q.Get("longitude"), 180)
		if err != nil {
			return request{}, fmt.Errorf("%w: longitude: %v", errBadRequest, err)
		}
		loc = geo.Location{Latitude: lat, Longitude: lon, Timezone: h.defaults.Location.Timezone}
	}
	if tz := q.Get("timezone"); tz != "" {
		loc.Timezone = tz
	}

	zone, err := loc.Zone()
	if err != nil {
		return request{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	method := h.defaults.Method
	if v := q.Get("method"); v != "" {
		if method, err = salah.ParseMethod(v); err != nil {
			return request{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	asr := h.defaults.Asr
	if v := q.Get("asr"); v != "" {
		if asr, err = salah.ParseAsrConvention(v); err != nil {
			return request{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	rules := h.defaults.Rules
	if v := q.Get("rules"); v != "" {
		rules = jamaat.ParseRuleSet(v)
	}

	date := h.now().In(zone)
	if v := q.Get("date"); v != "" {
		if date, err = time.ParseInLocation("2006-01-02", v, zone); err != nil {
			return request{}, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest)
		}
	}

	return request{
		date:     date,
		location: loc,
		settings: prayer.Settings{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Location:  zone,
			Method:    method,
			Asr:       asr,
			Rules:     rules,
		},
	}, nil
}

func parseCoord(s string, limit float64) (float64, error) {
	if s == "" {
		return 0, errors.New("required with the other coordinate")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("%v out of range ±%v", v, limit)
	}
	return v, nil
}

// Timings handles GET /v1/timings.
func (h *Handler) Timings(w http.ResponseWriter, r *http.Request) {
	req, err := h.parse(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	day := req.settings.Day(req.date)
	writeJSON(w, http.StatusOK, timingsResponse(req, day))
}

// Jamaat handles GET /v1/jamaat.
func (h *Handler) Jamaat(w http.ResponseWriter, r *http.Request) {
	req, err := h.parse(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	day := req.settings.Day(req.date)
	writeJSON(w, http.StatusOK, JamaatResponse{
		TimingsResponse: timingsResponse(req, day),
		Rules:           fullRuleSet(req.settings.Rules).Format(),
		Jamaat:          toJamaatDTO(day.Jamaat),
	})
}

func timingsResponse(req request, day prayer.Day) TimingsResponse {
	return TimingsResponse{
		Date:     day.Date.Format("2006-01-02"),
		Location: req.location,
		Method:   req.settings.Method.Name,
		Asr:      req.settings.Asr.String(),
		Timings:  toTimingsDTO(day.Start),
	}
}

// fullRuleSet resolves every prayer so responses show the effective rules.
func fullRuleSet(rs jamaat.RuleSet) jamaat.RuleSet {
	out := make(jamaat.RuleSet, len(jamaat.Prayers))
	for _, p := range jamaat.Prayers {
		out[p] = rs.Rule(p)
	}
	return out
}

// Methods handles GET /v1/methods.
func (h *Handler) Methods(w http.ResponseWriter, r *http.Request) {
	methods := salah.Methods()
	out := make([]MethodDTO, 0, len(methods))
	for _, m := range methods {
		out = append(out, MethodDTO{
			Name:        m.Name,
			Description: m.Description,
			Fajr:        m.Fajr,
			Isha:        m.Isha.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Cities handles GET /v1/cities.
func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, geo.Cities())
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
