package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-bridge/cmd/whisper-bridge/cmd/cli"
	"whisper-bridge/internal/app/bridge"
	"whisper-bridge/internal/config"
)

type bridgeFlags struct {
	input        string
	output       string
	model        string
	engine       string
	language     string
	modelsDir    string
	autoDownload bool
}

func bindBridgeFlags(cmd *cobra.Command, f *bridgeFlags) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "input audio file")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output JSON file")
	cmd.Flags().StringVarP(&f.model, "model", "m", config.DefaultModel, "model name or path to a ggml model file")
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "", "transcription engine (default $WHISPER_ENGINE or "+config.DefaultEngine+")")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "spoken language code, or auto")
	cmd.Flags().StringVar(&f.modelsDir, "models-dir", "", "directory holding ggml models")
	cmd.Flags().BoolVar(&f.autoDownload, "auto-download", false, "download catalog models that are missing")
}

// options fills anything the flags left unset from the environment and the engines file.
func (f *bridgeFlags) options(cmd *cobra.Command, settings *config.Settings, defaultEngine string) bridge.Options {
	opts := bridge.Options{
		Input:        f.input,
		Output:       f.output,
		Model:        f.model,
		Engine:       f.engine,
		Language:     f.language,
		ModelsDir:    f.modelsDir,
		AutoDownload: f.autoDownload || settings.AutoDownload,
	}
	if !cmd.Flags().Changed("model") {
		opts.Model = settings.Model
	}
	if opts.Engine == "" {
		opts.Engine = settings.ResolveEngine(defaultEngine)
	}
	if opts.Language == "" {
		opts.Language = settings.Language
	}
	if opts.ModelsDir == "" {
		opts.ModelsDir = settings.ModelsDir
	}
	return opts
}

func runBridge(cmd *cobra.Command, f *bridgeFlags) error {
	var missing []string
	if f.input == "" {
		missing = append(missing, "-i/--input")
	}
	if f.output == "" {
		missing = append(missing, "-o/--output")
	}
	if len(missing) > 0 {
		return cli.Usagef("the following arguments are required: %s", strings.Join(missing, ", "))
	}

	logger := cli.Logger()
	settings := cli.SettingsOrDefaults()

	engines, err := cli.LoadEngines(settings)
	if err != nil {
		logger.Error("Error loading engines config", zap.Error(err))
		if werr := bridge.WriteEnvelope(f.output, bridge.FailureEnvelope(err.Error())); werr != nil {
			logger.Error("Error writing output", zap.Error(werr))
		}
		return &cli.ExitError{Code: bridge.ExitFailure}
	}

	defaultEngine := ""
	if engines != nil {
		defaultEngine = engines.DefaultEngine
	}

	code := bridge.New(logger, engines).Run(cmd.Context(), f.options(cmd, settings, defaultEngine))
	if code != bridge.ExitOK {
		return &cli.ExitError{Code: code}
	}
	return nil
}

func newTranscribeCmd() *cobra.Command {
	f := &bridgeFlags{}
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe one audio file into a JSON envelope (same as the root command)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd, f)
		},
	}
	bindBridgeFlags(cmd, f)
	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &cli.UsageError{Err: err}
	}
	return nil
}
