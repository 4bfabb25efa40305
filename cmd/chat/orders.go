package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"restaurant-chatbot/internal/orderlog"
)

// ordersCmd summarises the order log written by confirmed orders.
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List confirmed orders from the order log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := orderlog.ReadAll(cmd.Context(), ordersPath, time.Local)
		if err != nil && len(records) == 0 {
			return err
		}
		out := cmd.OutOrStdout()
		total := decimal.Zero
		for _, r := range records {
			fmt.Fprintf(out, "%s  %s  %d x %s  $%s\n", r.Timestamp.Format(orderlog.TimestampLayout), r.OrderID, r.Quantity, r.Item, r.Price.StringFixed(2))
			total = total.Add(r.Price)
		}
		fmt.Fprintf(out, "%d lines, $%s\n", len(records), total.StringFixed(2))
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "some rows were skipped:", err)
		}
		return nil
	},
}

func init() {
	ordersCmd.Flags().StringVar(&ordersPath, "orders", "orders.csv", "order log CSV file")
}
