package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"whisper-bridge/cmd/whisper-bridge/cmd/cli"
	"whisper-bridge/cmd/whisper-bridge/cmd/engines"
	"whisper-bridge/cmd/whisper-bridge/cmd/history"
	"whisper-bridge/cmd/whisper-bridge/cmd/models"
	"whisper-bridge/cmd/whisper-bridge/cmd/serve"
	"whisper-bridge/cmd/whisper-bridge/cmd/version"
)

// NewRootCmd builds the command tree. The root command itself is the bridge,
// so a host can run `whisper-bridge --input a.wav --output a.json --model tiny`.
func NewRootCmd() *cobra.Command {
	f := &bridgeFlags{}
	rootCmd := &cobra.Command{
		Use:   "whisper-bridge",
		Short: "Transcribe an audio file with a whisper model and write the segments as JSON",
		Long: `whisper-bridge loads a speech-to-text model, transcribes one audio file and
writes {"segments": [...]} to the output path. Exit status is 0 on success,
1 on failure (an error envelope is still written) and 2 on usage errors.

It also ships the HTTP host that runs it as a subprocess (serve), a model
manager (models) and the run history (history).`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd, f)
		},
	}
	bindBridgeFlags(rootCmd, f)

	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cli.ConfigPath, "config", "", "engines config file (default $WHISPER_BRIDGE_CONFIG)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &cli.UsageError{Err: err}
	})

	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(engines.Cmd)
	rootCmd.AddCommand(version.Cmd)
	return rootCmd
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer cli.Sync()

	return run(ctx, NewRootCmd(), os.Args[1:])
}

func run(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	var usageErr *cli.UsageError
	if errors.As(err, &usageErr) && cmd != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), cmd.UsageString())
	}
	return cli.ExitCode(err)
}
