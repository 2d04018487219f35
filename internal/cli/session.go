package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/config"
	"github.com/smokyabdulrahman/salah/internal/geo"
	"github.com/smokyabdulrahman/salah/internal/prayer"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

// session is everything a command needs after flags, environment and config
// have been merged.
type session struct {
	cfg      *config.Config
	location geo.Location
	zone     *time.Location
	settings prayer.Settings
	now      time.Time // wall clock in zone
	date     time.Time // civil date being shown, midnight in zone
	layout   string    // Go time layout
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}

	loc := resolveLocation(cfg)
	zone, err := loc.Zone()
	if err != nil {
		return nil, err
	}

	now := nowFunc().In(zone)
	date := now
	if FlagDate != "" {
		if date, err = time.ParseInLocation("2006-01-02", FlagDate, zone); err != nil {
			return nil, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", FlagDate)
		}
	}
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, zone)

	s := &session{
		cfg:      cfg,
		location: loc,
		zone:     zone,
		now:      now,
		date:     date,
		layout:   cfg.TimeLayout(),
		settings: prayer.Settings{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Location:  zone,
			Method:    cfg.MethodOrDefault(salah.MWL),
			Asr:       cfg.AsrOrDefault(salah.Standard),
			Rules:     cfg.RuleSet(),
		},
	}

	log.Debug().
		Str("location", loc.Label()).
		Str("zone", zone.String()).
		Str("method", s.settings.Method.Name).
		Str("asr", s.settings.Asr.String()).
		Str("date", date.Format("2006-01-02")).
		Msg("session resolved")

	return s, nil
}

// resolveLocation picks coordinates from cfg. Priority: explicit coordinates >
// city label > (0,0). An explicit timezone always wins over the city's zone.
func resolveLocation(cfg *config.Config) geo.Location {
	var loc geo.Location
	switch {
	case cfg.Latitude != 0 || cfg.Longitude != 0:
		loc = geo.Location{Latitude: cfg.Latitude, Longitude: cfg.Longitude, Timezone: "Local"}
	case cfg.City != "":
		var ok bool
		loc, ok = geo.Resolve(cfg.City, time.Local)
		if !ok {
			log.Warn().Str("city", cfg.City).Msg("unknown city, using 0,0; run `salah cities` for the supported list")
		}
	default:
		loc, _ = geo.Resolve("", time.Local)
		log.Warn().Msg("no location configured, using 0,0; set one with --city or `salah config set city ...`")
	}

	if cfg.Timezone != "" {
		loc.Timezone = cfg.Timezone
	}
	return loc
}

// isToday reports whether the session shows the current civil date.
func (s *session) isToday() bool {
	return sameDay(s.date, s.now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// day computes the schedule offset days from the session date.
func (s *session) day(offset int) prayer.Day {
	return s.settings.Day(s.date.AddDate(0, 0, offset))
}

// prayers returns the configured schedule entries for d.
func (s *session) prayers(d prayer.Day) ([]prayer.Prayer, error) {
	return d.Prayers(s.cfg.PrayerList())
}

func (s *session) clock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(s.zone).Format(s.layout)
}
