package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/server"
)

var (
	flagAddr        string
	flagCORSOrigins []string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prayer and jamaat times over HTTP",
		Long: "Run a read-only JSON API. Requests that omit city, coordinates, method, asr or\n" +
			"rules fall back to the merged CLI/config settings.\n\n" +
			"  GET /v1/timings?date=2026-03-06&city=Karachi&method=Karachi&asr=hanafi\n" +
			"  GET /v1/jamaat?latitude=51.5&longitude=-0.12&timezone=Europe/London\n" +
			"  GET /v1/methods\n" +
			"  GET /v1/cities\n" +
			"  GET /healthz",
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Listen address")
	cmd.Flags().StringSliceVar(&flagCORSOrigins, "cors-origin", nil, "Allowed CORS origins (default: any)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	h := server.NewHandler(server.Defaults{
		Location: s.location,
		Method:   s.settings.Method,
		Asr:      s.settings.Asr,
		Rules:    s.settings.Rules,
	})

	// Request logs are info level; keep them even when the CLI logs at warn.
	logger := log.Logger.Level(zerolog.InfoLevel)
	if FlagVerbose {
		logger = log.Logger
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, flagAddr, server.NewRouter(h, logger, flagCORSOrigins), logger)
}
