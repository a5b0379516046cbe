package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-bridge/cmd/whisper-bridge/cmd/cli"
	"whisper-bridge/internal/app"
)

var port string

func init() {
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default $PORT or 8080)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP host that transcribes uploads through the bridge",
	Long: `Run the HTTP host.

POST /api/transcribe with a multipart "audio" field runs this binary as a
child process and returns {"segments": [...], "processing_time_seconds": N}.
GET /api/history, /api/engines, /health and /metrics are also served.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cli.Logger()

		settings, err := cli.Settings()
		if err != nil {
			return err
		}
		if port != "" {
			settings.Port = port
			if err := settings.Validate(); err != nil {
				return cli.Usagef("invalid --port %q", port)
			}
		}
		if cli.ConfigPath != "" {
			// child bridges must see the same engines file
			settings.ConfigPath = cli.ConfigPath
		}

		engines, err := cli.LoadEngines(settings)
		if err != nil {
			return err
		}

		srv, cleanup, err := app.InitializeServer(cmd.Context(), settings, engines, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		defer cleanup()

		logger.Info("Using Whisper model: "+settings.Model,
			zap.String("engine", settings.Engine),
			zap.Duration("timeout", settings.TranscribeTimeout),
			zap.Int("max_upload_mb", settings.MaxUploadMB))

		return srv.Run(cmd.Context())
	},
}
