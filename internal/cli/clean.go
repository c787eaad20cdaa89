package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hdx-stable-schema/internal/common/maintenance"
)

func cleanCmd(a *app) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove preview work directories left in DOWNLOAD_DIR by interrupted runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := maintenance.New(a.cfg.Preview.DownloadDir, a.log)
			results, err := m.CleanupStaleWorkDirs(cmd.Context(), olderThan)
			if err != nil {
				return err
			}

			removed := 0
			for _, r := range results {
				if r.Success {
					removed++
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Could not remove %s: %s\n", r.Path, r.Error)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d work directories from %s\n", removed, a.cfg.Preview.DownloadDir)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove directories untouched for this long")

	return cmd
}
