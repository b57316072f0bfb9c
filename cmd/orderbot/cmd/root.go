// Package cmd implements the orderbot CLI.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"sparebin-orderbot/lib/configutil"
	"sparebin-orderbot/lib/osutil"
	"sparebin-orderbot/lib/telemetry"

	"github.com/spf13/cobra"
)

type BrowserConfig struct {
	Headless     bool `json:"headless"`
	NoSandbox    bool `json:"no_sandbox"`
	SlowMotionMs int  `json:"slow_motion_ms"`
}

type Config struct {
	SheetUrl        string        `json:"sheet_url"`
	OrderUrl        string        `json:"order_url"`
	MaxRetries      int           `json:"max_retries"`
	TempDir         string        `json:"temp_dir"`
	ArchivePath     string        `json:"archive_path"`
	FailureDir      string        `json:"failure_dir"`
	OrdersPerSecond float64       `json:"orders_per_second"`
	Browser         BrowserConfig `json:"browser"`
}

// defaultConfig reproduces the storefront's published workflow, so a bare
// `orderbot run` without any config file works out of the box.
var defaultConfig = Config{
	SheetUrl:    "https://robotsparebinindustries.com/orders.csv",
	OrderUrl:    "https://robotsparebinindustries.com/#/robot-order",
	MaxRetries:  3,
	TempDir:     "temp",
	ArchivePath: "output/receipts.zip",
	FailureDir:  "output",
	Browser: BrowserConfig{
		SlowMotionMs: 100,
	},
}

var (
	verbose    bool
	configPath string
	cfg        Config
)

var rootCmd = &cobra.Command{
	Use:   "orderbot",
	Short: "orderbot orders robots from RobotSpareBin Industries and archives the receipts.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		var err error
		cfg, err = configutil.ReadConfig[Config](configPath)
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file found, using defaults", "path", configPath)
			cfg, err = Config{}, nil
		}
		if err != nil {
			osutil.Fatal("read config", err)
		}
		if err := configutil.ApplyDefaults(&cfg, defaultConfig); err != nil {
			osutil.Fatal("apply config defaults", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging/instrumentation.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the configuration file.")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
