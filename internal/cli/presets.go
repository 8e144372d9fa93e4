package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/langchou/evcompare/internal/models"
)

func newPresetsCmd(e *env) *cobra.Command {
	var (
		powertrain string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List built-in vehicle presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter models.Powertrain
			if powertrain != "" {
				p, ok := models.ParsePowertrain(powertrain)
				if !ok {
					return fmt.Errorf("unknown powertrain %q", powertrain)
				}
				filter = p
			}

			presets, err := e.service.ListPresets(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), presets)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPOWERTRAIN\tPRICE\tCONSUMPTION")
			for _, p := range presets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%.1f %s/100km\n",
					p.ID, p.Name, p.Powertrain, p.PurchasePrice, p.Consumption, p.Powertrain.EnergyUnit())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&powertrain, "powertrain", "", "filter by powertrain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
