// Package config provides persistent configuration for the salah CLI.
//
// Configuration is stored as JSON at ~/.config/salah/config.json
// (XDG-compliant). The merge priority is:
// CLI flags > SALAH_* environment variables (optionally from .env) > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/prayer"
	"github.com/smokyabdulrahman/salah/internal/reminder"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

const (
	configDirName  = "salah"
	configFileName = "config.json"

	// EnvPrefix is prepended to the upper-cased key for environment overrides.
	EnvPrefix = "SALAH_"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city",
	"latitude", "longitude",
	"timezone",
	"method", "asr",
	"time_format",
	"prayers",
	"jamaat",
	"start_lead", "jamaat_lead",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults).
type Config struct {
	City       string  `json:"city,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	Timezone   string  `json:"timezone,omitempty"`
	Method     string  `json:"method,omitempty"`
	Asr        string  `json:"asr,omitempty"`
	TimeFormat string  `json:"time_format,omitempty"` // "12h" or "24h"
	Prayers    string  `json:"prayers,omitempty"`     // comma-separated list
	Jamaat     string  `json:"jamaat,omitempty"`      // rule line, e.g. "Fajr:O:20|Jumuah:F:1,30,PM"
	StartLead  *int    `json:"start_lead,omitempty"`  // pointer so we can distinguish "not set" from 0
	JamaatLead *int    `json:"jamaat_lead,omitempty"` // pointer so we can distinguish "not set" from 0
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	startLead, jamaatLead := 0, 0
	return Config{
		Method:     salah.MWL.Name,
		Asr:        salah.Standard.String(),
		TimeFormat: "24h",
		Prayers:    strings.Join(prayer.AllPrayerNames, ","),
		Jamaat:     jamaat.DefaultRuleSet().Format(),
		StartLead:  &startLead,
		JamaatLead: &jamaatLead,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// EnvKey returns the environment variable name for a config key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// ApplyEnv overlays SALAH_* environment variables onto c, validating each
// value the same way `config set` does.
func (c *Config) ApplyEnv() error {
	for _, key := range ValidKeys {
		v, ok := os.LookupEnv(EnvKey(key))
		if !ok || v == "" {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", EnvKey(key), err)
		}
	}
	return nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
// Method, asr and jamaat values are stored in canonical form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "city":
		c.City = value
	case "latitude":
		v, err := parseCoordinate(key, value, 90)
		if err != nil {
			return err
		}
		c.Latitude = v
	case "longitude":
		v, err := parseCoordinate(key, value, 180)
		if err != nil {
			return err
		}
		c.Longitude = v
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "method":
		m, err := salah.ParseMethod(value)
		if err != nil {
			return fmt.Errorf("invalid method: %w", err)
		}
		c.Method = m.Name
	case "asr":
		a, err := salah.ParseAsrConvention(value)
		if err != nil {
			return fmt.Errorf("invalid asr: %w", err)
		}
		c.Asr = a.String()
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "prayers":
		names := strings.Split(value, ",")
		for _, n := range names {
			n = strings.TrimSpace(n)
			if !isValidPrayerName(n) {
				return fmt.Errorf("invalid prayer name %q in prayers list", n)
			}
		}
		c.Prayers = value
	case "jamaat":
		rs, err := jamaat.ParseRuleLine(value)
		if err != nil {
			return err
		}
		c.Jamaat = rs.Format()
	case "start_lead", "jamaat_lead":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be an integer", key, value)
		}
		if v < 0 {
			return fmt.Errorf("invalid %s %q: must not be negative", key, value)
		}
		if key == "start_lead" {
			c.StartLead = &v
		} else {
			c.JamaatLead = &v
		}
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// parseCoordinate parses a latitude or longitude within ±limit degrees.
func parseCoordinate(key, value string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, value)
	}
	if math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s %q: must be between -%g and %g", key, value, limit, limit)
	}
	return v, nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "latitude":
		if c.Latitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64), nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		return c.Method, nil
	case "asr":
		return c.Asr, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "jamaat":
		return c.Jamaat, nil
	case "start_lead":
		return optionalInt(c.StartLead), nil
	case "jamaat_lead":
		return optionalInt(c.JamaatLead), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func isValidPrayerName(name string) bool {
	for _, n := range prayer.AllPrayerNames {
		if n == name {
			return true
		}
	}
	return false
}

// SetJamaatRule replaces the rule for one prayer, keeping the others.
func (c *Config) SetJamaatRule(prayerName, rule string) error {
	p, err := jamaat.ParsePrayer(prayerName)
	if err != nil {
		return err
	}
	r, err := jamaat.ParseRule(rule)
	if err != nil {
		return err
	}
	c.Jamaat = c.RuleSet().With(p, r).Format()
	return nil
}

// MethodOrDefault returns the configured calculation method, falling back to def.
func (c *Config) MethodOrDefault(def salah.Method) salah.Method {
	if m, ok := salah.MethodByName(c.Method); ok {
		return m
	}
	return def
}

// AsrOrDefault returns the configured Asr convention, falling back to def.
func (c *Config) AsrOrDefault(def salah.AsrConvention) salah.AsrConvention {
	if c.Asr == "" {
		return def
	}
	a, err := salah.ParseAsrConvention(c.Asr)
	if err != nil {
		return def
	}
	return a
}

// RuleSet returns the configured jamaat rules. An empty value yields the
// default rule set.
func (c *Config) RuleSet() jamaat.RuleSet {
	return jamaat.ParseRuleSet(c.Jamaat)
}

// PrayerList returns the configured prayer names, or the defaults.
func (c *Config) PrayerList() []string {
	if c.Prayers == "" {
		return prayer.AllPrayerNames
	}
	var names []string
	for _, n := range strings.Split(c.Prayers, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// TimeLayout returns the Go time layout for the configured time format.
func (c *Config) TimeLayout() string {
	if c.TimeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// ReminderPrefs returns reminder preferences with the configured lead times
// applied to every prayer.
func (c *Config) ReminderPrefs() reminder.Prefs {
	start, jam := 0, 0
	if c.StartLead != nil {
		start = *c.StartLead
	}
	if c.JamaatLead != nil {
		jam = *c.JamaatLead
	}
	return reminder.Uniform(start, jam)
}
