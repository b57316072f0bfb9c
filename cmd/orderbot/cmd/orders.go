package cmd

import (
	"os"

	"sparebin-orderbot/lib/osutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ordersCmd)
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Prints the order sheet without placing any orders.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newOrderSource()
		rows, err := client.Fetch(cmd.Context())
		if err != nil {
			osutil.Fatal("fetch order sheet", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Head", "Body", "Legs", "Address"})
		for i, row := range rows {
			t.AppendRow(table.Row{i + 1, row.Head, row.Body, row.Legs, row.Address})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
