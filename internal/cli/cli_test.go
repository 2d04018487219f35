package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/salah/internal/config"
	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/jamaat"
)

// fridayMorning is 09:00 in Karachi on Friday 2026-03-06.
var fridayMorning = time.Date(2026, 3, 6, 4, 0, 0, 0, time.UTC)

// setupCLI isolates config, cache, .env and the clock for one test.
func setupCLI(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, key := range config.ValidKeys {
		t.Setenv(config.EnvKey(key), "")
	}

	oldEnvFile, oldNow, oldColor := envFile, nowFunc, display.Enabled()
	envFile = filepath.Join(t.TempDir(), ".env")
	nowFunc = func() time.Time { return fridayMorning }
	display.SetEnabled(false)
	t.Cleanup(func() {
		envFile, nowFunc = oldEnvFile, oldNow
		display.SetEnabled(oldColor)
		loadedConfig = nil
	})
}

// execute runs the CLI in-process and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func executeJSON[T any](t *testing.T, args ...string) T {
	t.Helper()
	out, stderr, err := execute(t, append(args, "--json")...)
	require.NoError(t, err, stderr)

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

var karachi = []string{"--city", "Karachi", "--method", "Karachi", "--asr", "hanafi"}

func TestVersionFlag(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "salah test\n", out)
}

func TestHelpFlag(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"today", "next", "list", "week", "month", "query", "jamaat", "reminders", "methods", "cities", "verify", "serve", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestToday_JSON(t *testing.T) {
	setupCLI(t)

	got := executeJSON[todayJSON](t, karachi...)

	assert.Equal(t, "2026-03-06", got.Date)
	assert.Equal(t, "Karachi, Pakistan", got.Location.Label)
	assert.Equal(t, "Asia/Karachi", got.Location.Timezone)
	assert.Equal(t, "Karachi", got.Method)
	assert.Equal(t, "hanafi", got.Asr)
	require.Len(t, got.Prayers, 6)

	jumuah := got.Prayers[2]
	assert.Equal(t, "Jumu'ah", jumuah.Name)
	assert.Equal(t, "13:30", jumuah.Jamaat)
	assert.Empty(t, got.Prayers[1].Jamaat, "sunrise has no jamaat")

	assert.Equal(t, "Sunrise", got.Current)
	require.NotNil(t, got.Next)
	assert.Equal(t, "Jumu'ah", got.Next.Prayer)
}

func TestToday_DefaultCommand(t *testing.T) {
	setupCLI(t)

	root, _, err := execute(t, karachi...)
	require.NoError(t, err)
	sub, _, err := execute(t, append([]string{"today"}, karachi...)...)
	require.NoError(t, err)

	assert.Equal(t, root, sub)
	assert.Contains(t, root, "Prayer Times")
	assert.Contains(t, root, "Karachi, Pakistan")
	assert.Contains(t, root, "Jumu'ah")
	assert.Contains(t, root, "13:30")
	assert.Contains(t, root, "Jumu'ah in ")
}

func TestToday_TimeFormat12h(t *testing.T) {
	setupCLI(t)

	got := executeJSON[todayJSON](t, append(karachi, "--time-format", "12h")...)
	assert.Equal(t, "1:30 PM", got.Prayers[2].Jamaat)
}

func TestToday_OtherDate(t *testing.T) {
	setupCLI(t)

	got := executeJSON[todayJSON](t, append(karachi, "--date", "2026-03-07")...)

	assert.Equal(t, "2026-03-07", got.Date)
	assert.Equal(t, "Dhuhr", got.Prayers[2].Name)
	assert.Nil(t, got.Next, "no countdown for another day")
	assert.Empty(t, got.Current)
}

func TestToday_InvalidFlags(t *testing.T) {
	setupCLI(t)

	tests := [][]string{
		{"--date", "06/03/2026"},
		{"--method", "Jafari"},
		{"--asr", "maliki"},
		{"--time-format", "am-pm"},
		{"--timezone", "Mars/Olympus"},
		{"--latitude", "NaN", "--longitude", "0"},
		{"--latitude", "0", "--longitude", "Inf"},
		{"--latitude", "95"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestToday_NoLocationWarns(t *testing.T) {
	setupCLI(t)

	_, stderr, err := execute(t, "--json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no location configured")
}

func TestToday_UnknownCityWarns(t *testing.T) {
	setupCLI(t)

	_, stderr, err := execute(t, "--city", "Atlantis", "--timezone", "UTC", "--json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "unknown city")
}

func TestToday_Coordinates(t *testing.T) {
	setupCLI(t)

	got := executeJSON[todayJSON](t, "--latitude", "21.4225", "--longitude", "39.8262", "--timezone", "Asia/Riyadh")
	assert.InDelta(t, 21.4225, got.Location.Latitude, 1e-9)
	assert.Equal(t, "Asia/Riyadh", got.Location.Timezone)
}

func TestNext(t *testing.T) {
	setupCLI(t)

	tests := []struct {
		name   string
		args   []string
		prefix string
		suffix string
	}{
		{"name and jamaat", []string{"next", "--format", "name-and-jamaat"}, "Jumu'ah ", "(jamaat 13:30)"},
		{"custom template", []string{"next", "--format", "{{.ShortName}}|{{.Jamaat}}"}, "J|13:30", "J|13:30"},
		{"rolls to tomorrow", []string{"next", "--prayers", "fajr", "--format", "name-and-time"}, "Fajr ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := execute(t, append(tt.args, karachi...)...)
			require.NoError(t, err, stderr)
			assert.True(t, strings.HasPrefix(out, tt.prefix), "output %q", out)
			assert.True(t, strings.HasSuffix(out, tt.suffix), "output %q", out)
			assert.False(t, strings.HasSuffix(out, "\n"), "status bar output has no newline")
		})
	}
}

func TestNext_UnknownPrayer(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, append([]string{"next", "--prayers", "Tahajjud"}, karachi...)...)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	setupCLI(t)

	got := executeJSON[listJSONOutput](t, append([]string{"list", "3"}, karachi...)...)
	require.Len(t, got.Days, 3)
	assert.Equal(t, "2026-03-06", got.Days[0].Date)
	assert.Equal(t, "2026-03-08", got.Days[2].Date)
	assert.Equal(t, "Jumu'ah", got.Days[0].Prayers[2].Name)
	assert.Equal(t, "Dhuhr", got.Days[1].Prayers[2].Name)

	week := executeJSON[listJSONOutput](t, append([]string{"week"}, karachi...)...)
	assert.Len(t, week.Days, 7)

	month := executeJSON[listJSONOutput](t, append([]string{"month"}, karachi...)...)
	assert.Len(t, month.Days, 30)
}

func TestList_Rich(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, append([]string{"list", "2", "--jamaat"}, karachi...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Jamaat Times: 2 Days")
	assert.Contains(t, out, "Fri 06 Mar")
	assert.Contains(t, out, "Sat 07 Mar")
	assert.Contains(t, out, "13:30")
}

func TestList_InvalidDays(t *testing.T) {
	setupCLI(t)

	for _, arg := range []string{"0", "-3", "many"} {
		_, _, err := execute(t, "list", arg)
		assert.Error(t, err, arg)
	}
}

func TestQuery(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, append([]string{"query", "asr"}, karachi...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Asr "), out)
	assert.Contains(t, out, "(jamaat ")

	out, _, err = execute(t, append([]string{"query", "jumuah"}, karachi...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Jumu'ah")
	assert.Contains(t, out, "(jamaat 13:30)")

	got := executeJSON[queryJSONOutput](t, append([]string{"query", "FAJR", "--days", "week"}, karachi...)...)
	assert.Equal(t, "fajr", got.Prayer)
	require.Len(t, got.Days, 7)
	assert.NotEmpty(t, got.Days[0].Jamaat)

	_, _, err = execute(t, "query", "tahajjud")
	assert.Error(t, err)

	_, _, err = execute(t, "query", "asr", "--days", "zero")
	assert.Error(t, err)
}

func TestJamaat_SetShowReset(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "jamaat", "set", "fajr", "5:45", "AM")
	require.NoError(t, err)
	assert.Equal(t, "Set Fajr jamaat = 5:45 AM\n", out)

	type showJSON struct {
		Rules string          `json:"rules"`
		Rows  []jamaatRowJSON `json:"prayers"`
	}
	got := executeJSON[showJSON](t, append([]string{"jamaat", "show"}, karachi...)...)
	require.Len(t, got.Rows, len(jamaat.Prayers))
	assert.Equal(t, "5:45 AM", got.Rows[0].Rule)
	assert.Equal(t, "05:45", got.Rows[0].Jamaat)
	assert.Contains(t, got.Rules, "Fajr:F:5,45,AM")
	assert.Equal(t, "13:30", got.Rows[5].Jamaat, "jumuah on a Friday")

	_, _, err = execute(t, "jamaat", "reset", "fajr")
	require.NoError(t, err)
	got = executeJSON[showJSON](t, append([]string{"jamaat"}, karachi...)...)
	assert.Equal(t, "+20 min", got.Rows[0].Rule)

	_, _, err = execute(t, "jamaat", "set", "isha", "+15")
	require.NoError(t, err)
	_, _, err = execute(t, "jamaat", "reset")
	require.NoError(t, err)
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Jamaat)
}

func TestJamaat_SaturdayHidesJumuah(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, append([]string{"jamaat", "--date", "2026-03-07"}, karachi...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Fridays only")
}

func TestJamaat_SetInvalid(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "jamaat", "set", "witr", "+10")
	assert.ErrorIs(t, err, jamaat.ErrUnknownPrayer)

	_, _, err = execute(t, "jamaat", "set", "fajr", "soon")
	assert.ErrorIs(t, err, jamaat.ErrInvalidRule)

	_, _, err = execute(t, "jamaat", "set", "fajr", "13:30", "PM")
	assert.ErrorIs(t, err, jamaat.ErrInvalidRule)
}

func TestReminders(t *testing.T) {
	setupCLI(t)

	type reminderJSON struct {
		At     time.Time `json:"at"`
		Prayer string    `json:"prayer"`
		Kind   string    `json:"kind"`
		Title  string    `json:"title"`
	}

	got := executeJSON[[]reminderJSON](t, append([]string{"reminders"}, karachi...)...)

	// Fajr has passed; Dhuhr start plus Jumuah and the afternoon and evening pairs remain.
	require.Len(t, got, 8)
	assert.Equal(t, "Dhuhr", got[0].Prayer)
	assert.Equal(t, "start", got[0].Kind)
	assert.Equal(t, "Jamaat • Jumu'ah", got[1].Title)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].At.Before(got[i-1].At), "sorted")
	}

	withLead := executeJSON[[]reminderJSON](t, append([]string{"reminders", "--jamaat-lead", "10"}, karachi...)...)
	kinds := map[string]int{}
	for _, r := range withLead {
		kinds[r.Kind]++
	}
	assert.Equal(t, 4, kinds["pre"])
	assert.Zero(t, kinds["jamaat"])
}

func TestReminders_NoneLeft(t *testing.T) {
	setupCLI(t)
	nowFunc = func() time.Time { return fridayMorning.Add(14 * time.Hour) }

	out, _, err := execute(t, append([]string{"reminders"}, karachi...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "No reminders left")
}

func TestMethodsAndCities(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "methods")
	require.NoError(t, err)
	for _, want := range []string{"MWL", "UmmAlQura", "90 min after Maghrib", "19.5°"} {
		assert.Contains(t, out, want)
	}

	out, _, err = execute(t, "cities")
	require.NoError(t, err)
	assert.Contains(t, out, "Karachi, Pakistan")
	assert.Contains(t, out, "America/Toronto")
}

func TestConfig_Commands(t *testing.T) {
	setupCLI(t)

	out, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), filepath.Join("salah", "config.json")))

	out, _, err = execute(t, "config", "set", "method", "karachi")
	require.NoError(t, err)
	assert.Equal(t, "Set method = Karachi\n", out)

	_, _, err = execute(t, "config", "set", "method", "Jafari")
	assert.Error(t, err)
	_, _, err = execute(t, "config", "set", "colour", "blue")
	assert.Error(t, err)

	out, _, err = execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Karachi (University of Islamic Sciences, Karachi)")
	assert.Contains(t, out, "(default: 24h)")

	_, _, err = execute(t, "config", "reset")
	require.NoError(t, err)
	path, _ := config.Path()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfig_FileUsedByCommands(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "config", "set", "city", "Karachi, Pakistan")
	require.NoError(t, err)
	_, _, err = execute(t, "config", "set", "asr", "hanafi")
	require.NoError(t, err)

	got := executeJSON[todayJSON](t)
	assert.Equal(t, "Karachi, Pakistan", got.Location.Label)
	assert.Equal(t, "hanafi", got.Asr)
	assert.Equal(t, "MWL", got.Method)
}

func TestMergePriority(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "config", "set", "method", "Egyptian")
	require.NoError(t, err)

	got := executeJSON[todayJSON](t, "--city", "Karachi")
	assert.Equal(t, "Egyptian", got.Method, "file beats default")

	t.Setenv("SALAH_METHOD", "isna")
	got = executeJSON[todayJSON](t, "--city", "Karachi")
	assert.Equal(t, "ISNA", got.Method, "env beats file")

	got = executeJSON[todayJSON](t, "--city", "Karachi", "--method", "Tehran")
	assert.Equal(t, "Tehran", got.Method, "flag beats env")
}

func TestCityFlagBeatsConfigCoordinates(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "config", "set", "latitude", "51.5")
	require.NoError(t, err)

	got := executeJSON[todayJSON](t, "--city", "Doha")
	assert.Equal(t, "Doha, Qatar", got.Location.Label)
}

func TestDotEnvFile(t *testing.T) {
	setupCLI(t)
	require.NoError(t, os.WriteFile(envFile, []byte("SALAH_ASR=hanafi\nSALAH_CITY=Cairo\n"), 0o644))
	// godotenv never overrides variables that exist, even when empty.
	os.Unsetenv("SALAH_ASR")
	os.Unsetenv("SALAH_CITY")

	got := executeJSON[todayJSON](t)
	assert.Equal(t, "hanafi", got.Asr)
	assert.Equal(t, "Cairo, Egypt", got.Location.Label)
}

func TestInvalidConfigFileFallsBack(t *testing.T) {
	setupCLI(t)

	path, err := config.Path()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, stderr, err := execute(t, append([]string{"--json"}, karachi...)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "ignoring config file")
}

func TestVerboseLogging(t *testing.T) {
	setupCLI(t)

	_, stderr, err := execute(t, append([]string{"--json", "-v"}, karachi...)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "session resolved")

	_, stderr, err = execute(t, append([]string{"--json"}, karachi...)...)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "session resolved")
}

func TestServe_InvalidSettings(t *testing.T) {
	setupCLI(t)

	_, _, err := execute(t, "serve", "--method", "Jafari")
	assert.Error(t, err)
}
