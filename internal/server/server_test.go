package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/salah/internal/geo"
	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/prayer"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

func setupTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()

	london, ok := geo.Lookup("London")
	require.True(t, ok)

	h := NewHandler(Defaults{
		Location: london,
		Method:   salah.MWL,
		Asr:      salah.Standard,
		Rules:    jamaat.DefaultRuleSet(),
	})
	h.now = func() time.Time { return time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC) }

	return h, NewRouter(h, zerolog.Nop(), nil)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func karachiDay(t *testing.T, date string, rules jamaat.RuleSet) prayer.Day {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	require.NoError(t, err)

	s := prayer.Settings{
		Latitude:  24.8607,
		Longitude: 67.0011,
		Location:  loc,
		Method:    salah.Karachi,
		Asr:       salah.Hanafi,
		Rules:     rules,
	}
	return s.Day(d)
}

func TestHealth(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/healthz")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestTimings(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/timings?city=Karachi&date=2026-03-06&method=Karachi&asr=hanafi")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[TimingsResponse](t, rr)
	want := karachiDay(t, "2026-03-06", nil)

	assert.Equal(t, "2026-03-06", resp.Date)
	assert.Equal(t, "Karachi", resp.Location.City)
	assert.Equal(t, "Karachi", resp.Method)
	assert.Equal(t, "hanafi", resp.Asr)
	assert.True(t, want.Start.Fajr.Equal(resp.Timings.Fajr), "fajr %v != %v", resp.Timings.Fajr, want.Start.Fajr)
	assert.True(t, want.Start.Asr.Equal(resp.Timings.Asr))
	assert.True(t, want.Start.Isha.Equal(resp.Timings.Isha))
}

func TestTimings_Defaults(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/timings")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[TimingsResponse](t, rr)
	assert.Equal(t, "2026-02-28", resp.Date)
	assert.Equal(t, "London", resp.Location.City)
	assert.Equal(t, "MWL", resp.Method)
	assert.Equal(t, "standard", resp.Asr)
}

func TestTimings_Coordinates(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/timings?latitude=21.4225&longitude=39.8262&timezone=Asia/Riyadh&date=2026-06-01")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[TimingsResponse](t, rr)
	assert.InDelta(t, 21.4225, resp.Location.Latitude, 1e-9)
	assert.Equal(t, "Asia/Riyadh", resp.Location.Timezone)

	_, offset := resp.Timings.Dhuhr.Zone()
	assert.Equal(t, 3*3600, offset)
	assert.True(t, resp.Timings.Fajr.Before(resp.Timings.Sunrise))
}

func TestTimings_BadRequest(t *testing.T) {
	_, router := setupTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"bad date", "date=28-02-2026"},
		{"unknown method", "method=Foo"},
		{"unknown asr", "asr=maliki"},
		{"latitude out of range", "latitude=91&longitude=0"},
		{"longitude not a number", "latitude=10&longitude=east"},
		{"missing longitude", "latitude=10"},
		{"latitude NaN", "latitude=NaN&longitude=0&timezone=UTC"},
		{"longitude NaN", "latitude=0&longitude=nan&timezone=UTC"},
		{"latitude infinite", "latitude=Inf&longitude=0"},
		{"unknown city", "city=Atlantis"},
		{"unknown timezone", "timezone=Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, router, "/v1/timings?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			resp := decode[ErrorResponse](t, rr)
			assert.Equal(t, "invalid request", resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestJamaat_Friday(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/jamaat?city=Karachi&date=2026-03-06&method=Karachi&asr=hanafi")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[JamaatResponse](t, rr)
	want := karachiDay(t, "2026-03-06", jamaat.DefaultRuleSet())

	require.NotNil(t, resp.Jamaat.Jumuah)
	assert.True(t, want.Jamaat.Jumuah.Equal(*resp.Jamaat.Jumuah))
	assert.True(t, resp.Jamaat.Dhuhr.Equal(*resp.Jamaat.Jumuah))
	assert.Equal(t, 13, resp.Jamaat.Jumuah.In(want.Date.Location()).Hour())
	assert.Equal(t, 30, resp.Jamaat.Jumuah.Minute())
	assert.True(t, want.Jamaat.Fajr.Equal(resp.Jamaat.Fajr))
	assert.Equal(t, jamaat.DefaultRuleSet().Format(), resp.Rules)
}

func TestJamaat_NotFriday(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/jamaat?date=2026-02-28")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[JamaatResponse](t, rr)
	assert.Nil(t, resp.Jamaat.Jumuah)
	assert.Equal(t, 10*time.Minute, resp.Jamaat.Asr.Sub(resp.Timings.Asr))
	assert.Equal(t, 5*time.Minute, resp.Jamaat.Maghrib.Sub(resp.Timings.Maghrib))
}

func TestJamaat_CustomRules(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/jamaat?city=Karachi&date=2026-02-28&rules=Fajr:F:5,45,AM|Isha:O:30")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[JamaatResponse](t, rr)
	karachi, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)

	fajr := resp.Jamaat.Fajr.In(karachi)
	assert.Equal(t, 5, fajr.Hour())
	assert.Equal(t, 45, fajr.Minute())
	assert.Equal(t, 30*time.Minute, resp.Jamaat.Isha.Sub(resp.Timings.Isha))
	// Prayers missing from the query fall back to their defaults.
	assert.Equal(t, 10*time.Minute, resp.Jamaat.Dhuhr.Sub(resp.Timings.Dhuhr))
	assert.Contains(t, resp.Rules, "Fajr:F:5,45,AM")
	assert.Contains(t, resp.Rules, "Jumuah:F:1,30,PM")
}

func TestMethods(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/methods")
	require.Equal(t, http.StatusOK, rr.Code)

	methods := decode[[]MethodDTO](t, rr)
	require.Len(t, methods, len(salah.Methods()))
	assert.Equal(t, "MWL", methods[0].Name)

	byName := make(map[string]MethodDTO, len(methods))
	for _, m := range methods {
		byName[m.Name] = m
	}
	assert.Equal(t, "90 min after Maghrib", byName["UmmAlQura"].Isha)
	assert.InDelta(t, 19.5, byName["Egyptian"].Fajr, 1e-9)
}

func TestCities(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/cities")
	require.Equal(t, http.StatusOK, rr.Code)

	cities := decode[[]geo.Location](t, rr)
	assert.Len(t, cities, len(geo.Cities()))
}

func TestNotFound(t *testing.T) {
	_, router := setupTestServer(t)

	rr := get(t, router, "/v1/nope")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not found", decode[ErrorResponse](t, rr).Error)
}

func TestCORSPreflight(t *testing.T) {
	_, router := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/timings", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccessLog(t *testing.T) {
	h, _ := setupTestServer(t)

	var buf bytes.Buffer
	router := NewRouter(h, zerolog.New(&buf), nil)
	get(t, router, "/healthz")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "/healthz", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}
