package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/langchou/evcompare/internal/engine"
	"github.com/langchou/evcompare/internal/service"
)

func newCompareCmd(e *env) *cobra.Command {
	var (
		file     string
		mode     string
		horizon  int
		tripLogs []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two vehicles described in a YAML scenario",
		Example: `  evcompare compare -f scenario.yaml
  evcompare compare -f scenario.yaml --mode normalize --horizon 15
  evcompare compare -f scenario.yaml --triplog 2024_MAY.json --triplog 2024_JUNE.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := loadScenario(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if mode != "" {
				m, err := engine.ParseMixMode(mode)
				if err != nil {
					return err
				}
				req.MixMode = m
			}
			if cmd.Flags().Changed("horizon") {
				req.HorizonYears = horizon
			}
			if len(tripLogs) > 0 {
				summary := aggregateTripLogs(e, tripLogs)
				req.TripLog = &summary
			}

			resp, err := e.service.Compare(cmd.Context(), "cli", req)
			if err != nil {
				if details := engine.InvalidInputs(err); len(details) > 0 {
					for _, d := range details {
						fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
					}
					return fmt.Errorf("%d invalid input(s)", len(details))
				}
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `scenario YAML ("-" reads stdin)`)
	cmd.Flags().StringVar(&mode, "mode", "", "route mix mode: strict or normalize")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "projection horizon in years (0 = automatic)")
	cmd.Flags().StringArrayVar(&tripLogs, "triplog", nil, "trip-log export replacing the scenario's distance and route mix (repeatable)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadScenario 读取 YAML 场景文件
func loadScenario(path string, stdin io.Reader) (service.CompareRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return service.CompareRequest{}, fmt.Errorf("open scenario: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req service.CompareRequest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return service.CompareRequest{}, fmt.Errorf("decode scenario: %w", err)
	}
	return req, nil
}
