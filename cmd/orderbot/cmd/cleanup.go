package cmd

import (
	"log/slog"
	"os"

	"sparebin-orderbot/lib/osutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Removes leftover temporary files from an interrupted run.",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(cfg.TempDir); os.IsNotExist(err) {
			slog.Info("nothing to clean up", "dir", cfg.TempDir)
			return
		}
		if err := os.RemoveAll(cfg.TempDir); err != nil {
			osutil.Fatal("clean up temporary files", err)
		}
		slog.Info("temporary files cleaned up", "dir", cfg.TempDir)
	},
}
