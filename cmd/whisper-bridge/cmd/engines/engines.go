package engines

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"whisper-bridge/cmd/whisper-bridge/cmd/cli"
	"whisper-bridge/internal/app/bridge"
)

var asJSON bool

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
}

// Cmd represents the engines command
var Cmd = &cobra.Command{
	Use:   "engines",
	Short: "List transcription engines and whether they can be built",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := cli.SettingsOrDefaults()
		engines, err := cli.LoadEngines(settings)
		if err != nil {
			return err
		}

		defaultEngine := settings.Engine
		if engines != nil && engines.DefaultEngine != "" {
			defaultEngine = engines.DefaultEngine
		}
		statuses := bridge.DescribeEngines(engines, defaultEngine, nil)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(statuses)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tKIND\tSTATUS")
		for _, s := range statuses {
			name := s.Name
			if s.Default {
				name += " *"
			}
			kind := "-"
			if s.Info != nil {
				kind = string(s.Info.Type)
			}
			status := "ready"
			if !s.Ready {
				status = s.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.Type, kind, status)
		}
		return w.Flush()
	},
}
