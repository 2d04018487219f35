package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salah/internal/config"
	"github.com/smokyabdulrahman/salah/internal/display"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagTimezone   string
	FlagMethod     string
	FlagAsr        string
	FlagDate       string
	FlagJSON       bool
	FlagTimeFormat string
	FlagVerbose    bool
)

// loadedConfig holds the config (file + environment) loaded during
// PersistentPreRunE. Available to all subcommand handlers.
var loadedConfig *config.Config

// nowFunc is the clock used by every command.
var nowFunc = time.Now

// envFile is loaded into the environment before config is read.
var envFile = ".env"

// NewRootCmd creates the root command for the salah CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "salah",
		Short: "Offline prayer and jamaat times",
		Long: "Compute the five daily prayer start times from solar position and the\n" +
			"congregation (jamaat) times from per-prayer rules. Works fully offline.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), FlagVerbose)
			loadedConfig = loadConfig()
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(PrintVersion(version))

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "City label, e.g. \"Karachi, Pakistan\" (see `salah cities`)")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude in degrees, north positive")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude in degrees, east positive")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA time zone, e.g. Asia/Karachi")
	pf.StringVar(&FlagMethod, "method", "", "Calculation method: MWL, ISNA, Egyptian, Karachi, UmmAlQura, Tehran")
	pf.StringVar(&FlagAsr, "asr", "", "Asr convention: standard or hanafi")
	pf.StringVar(&FlagDate, "date", "", "Date to compute, YYYY-MM-DD (default: today)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Enable debug logging on stderr")

	// Register subcommands.
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newJamaatCmd())
	rootCmd.AddCommand(newRemindersCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newCitiesCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("salah %s\n", version)
}

// setupLogging points the global zerolog logger at w. Only warnings and
// errors are shown unless verbose is set.
func setupLogging(w io.Writer, verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !display.Detect(w),
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
}

// loadConfig reads .env, the config file and SALAH_* variables. Problems
// are logged and the remaining sources are still used.
func loadConfig() *config.Config {
	if err := config.LoadEnvFile(envFile); err != nil {
		log.Warn().Err(err).Msg("ignoring .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring config file, using defaults")
		cfg = &config.Config{}
	}

	if err := cfg.ApplyEnv(); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid environment override")
	}

	log.Debug().
		Str("city", cfg.City).
		Float64("latitude", cfg.Latitude).
		Float64("longitude", cfg.Longitude).
		Str("method", cfg.Method).
		Str("asr", cfg.Asr).
		Msg("config loaded")

	return cfg
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	coords := flagWasSet(flags, root, "latitude") || flagWasSet(flags, root, "longitude")
	if coords {
		for _, c := range []struct {
			key   string
			value float64
		}{{"latitude", FlagLatitude}, {"longitude", FlagLongitude}} {
			if err := cfg.Set(c.key, strconv.FormatFloat(c.value, 'g', -1, 64)); err != nil {
				return nil, fmt.Errorf("--%s: %w", c.key, err)
			}
		}
		cfg.City = ""
	}
	if flagWasSet(flags, root, "city") {
		cfg.City = FlagCity
		// An explicit city beats coordinates that only came from config.
		if !coords {
			cfg.Latitude, cfg.Longitude = 0, 0
		}
	}

	overrides := []struct {
		flag, key string
		value     *string
	}{
		{"timezone", "timezone", &FlagTimezone},
		{"method", "method", &FlagMethod},
		{"asr", "asr", &FlagAsr},
		{"time-format", "time_format", &FlagTimeFormat},
	}
	for _, o := range overrides {
		if !flagWasSet(flags, root, o.flag) {
			continue
		}
		if err := cfg.Set(o.key, *o.value); err != nil {
			return nil, fmt.Errorf("--%s: %w", o.flag, err)
		}
	}

	// Apply defaults for unset values.
	defaults := config.Defaults()
	if cfg.Method == "" {
		cfg.Method = defaults.Method
	}
	if cfg.Asr == "" {
		cfg.Asr = defaults.Asr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	if cfg.Jamaat == "" {
		cfg.Jamaat = defaults.Jamaat
	}

	return &cfg, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
