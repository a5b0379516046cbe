package models

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-bridge/cmd/whisper-bridge/cmd/cli"
	"whisper-bridge/internal/app/models"
)

var (
	modelsDir string
	force     bool
)

func init() {
	Cmd.PersistentFlags().StringVar(&modelsDir, "dir", "", "models directory (default $WHISPER_MODELS_DIR or the user cache dir)")
	downloadCmd.Flags().BoolVar(&force, "force", false, "download even if the file already exists")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(downloadCmd)
}

func dir() string {
	if modelsDir != "" {
		return modelsDir
	}
	return models.DefaultDir()
}

// Cmd represents the models command
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "List and download ggml whisper models",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog models and which are downloaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := dir()
		fmt.Fprintf(cmd.OutOrStdout(), "Models directory: %s\n\n", d)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tFILE\tDOWNLOADED")
		for _, m := range models.Catalog {
			downloaded := ""
			if models.IsDownloaded(d, m) {
				downloaded = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.Size, m.File, downloaded)
		}
		return w.Flush()
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <name>...",
	Short: "Download catalog models into the models directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cli.Logger()
		d := dir()

		toFetch := make([]models.Model, 0, len(args))
		for _, name := range args {
			m, ok := models.Lookup(name)
			if !ok {
				return cli.Usagef("unknown model %q, available: %v", name, models.Names())
			}
			toFetch = append(toFetch, m)
		}

		downloader := models.NewDownloader(logger)
		downloader.Progress = cmd.ErrOrStderr()
		for _, m := range toFetch {
			if !force && models.IsDownloaded(d, m) {
				logger.Info("Model already downloaded", zap.String("model", m.Name), zap.String("path", filepath.Join(d, m.File)))
				continue
			}
			path, err := downloader.Download(cmd.Context(), m, d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}
