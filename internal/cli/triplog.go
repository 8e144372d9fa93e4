package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/langchou/evcompare/internal/triplog"
)

func newTripLogCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "triplog FILE...",
		Short: "Aggregate location-history exports into annual distance and route mix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), aggregateTripLogs(e, args))
		},
	}
}

// aggregateTripLogs 读取并汇总行程文件，读取失败的文件记为警告
func aggregateTripLogs(e *env, paths []string) triplog.Summary {
	files := make([]triplog.File, 0, len(paths))
	var unreadable []triplog.FileError
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			unreadable = append(unreadable, triplog.FileError{Name: filepath.Base(path), Err: err})
			continue
		}
		files = append(files, triplog.File{Name: filepath.Base(path), Data: data})
	}

	summary := e.service.AggregateTripLogs(files)
	summary.AddFileErrors(unreadable)
	return summary
}
