package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"sparebin-orderbot/internal/orders"
	"sparebin-orderbot/internal/pipeline"
	"sparebin-orderbot/internal/receipts"
	"sparebin-orderbot/internal/storefront"
	"sparebin-orderbot/lib/osutil"
	"sparebin-orderbot/lib/restyutil"
	"sparebin-orderbot/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the whole workflow: fetch orders, submit each one, archive the receipt PDFs.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := osutil.SignalContext()

		tel, err := telemetry.SetupFromEnv(ctx, "orderbot")
		if err != nil {
			osutil.Fatal("setup telemetry", err)
		}
		defer tel.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)

		session := &storefront.Session{
			Options: storefront.BrowserOptions{
				Headless:   cfg.Browser.Headless,
				NoSandbox:  cfg.Browser.NoSandbox,
				SlowMotion: time.Duration(cfg.Browser.SlowMotionMs) * time.Millisecond,
			},
			OrderUrl:   cfg.OrderUrl,
			MaxRetries: cfg.MaxRetries,
			FailureDir: cfg.FailureDir,
		}
		defer session.Close()

		store, err := receipts.Open(cfg.TempDir)
		if err != nil {
			osutil.Fatal("open receipt store", err)
		}

		p := &pipeline.Pipeline{
			Source:      newOrderSource(),
			Placer:      session,
			Renderer:    session,
			Stamp:       receipts.StampRobotImage,
			Store:       store,
			ArchivePath: cfg.ArchivePath,
			OrderRate:   rate.Limit(cfg.OrdersPerSecond),
		}

		summary, err := p.Run(ctx)
		renderSummary(summary)
		if err != nil {
			session.Close()
			osutil.Fatal("run failed", err)
		}
	},
}

func newOrderSource() *orders.Client {
	opts := orders.ClientOptions{SheetUrl: cfg.SheetUrl}
	if verbose {
		opts.InstrumentOutput = restyutil.NewFilesystemOutput(".dev/resty/orders")
	}
	client, err := orders.NewClient(opts)
	if err != nil {
		osutil.Fatal("create order sheet client", err)
	}
	return client
}

func renderSummary(summary pipeline.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Order", "Address", "Status", "Parts"})

	for _, r := range summary.Results {
		status := "ok"
		switch {
		case errors.Is(r.Err, storefront.ErrOrderRejected):
			status = "abandoned"
		case r.Err != nil:
			status = "failed"
		}
		t.AppendRow(table.Row{r.OrderNumber, r.Row.Address, status, strings.Join(r.Parts, ", ")})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d succeeded", summary.Succeeded),
		fmt.Sprintf("%d abandoned", summary.Abandoned),
		fmt.Sprintf("%d pdfs archived", summary.ArchivedPDFs),
		summary.Duration.Round(time.Millisecond),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
