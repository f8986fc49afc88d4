package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fintrack/internal/core"

	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals, the monthly summary, expenses by category and alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := s.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), snap)
		},
	}
}

func writeSummary(out io.Writer, snap core.Snapshot) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Transactions\t%d\t\n", snap.Count)
	fmt.Fprintf(tw, "Total Income\t%s\t\n", snap.Totals.Income.Display())
	fmt.Fprintf(tw, "Total Expense\t%s\t\n", snap.Totals.Expense.Display())
	fmt.Fprintf(tw, "Balance\t%s\t\n", snap.Totals.Balance.Display())

	if len(snap.Monthly) > 0 {
		fmt.Fprintf(tw, "\t\t\t\n")
		fmt.Fprintf(tw, "Month\tIncome\tExpense\t\n")
		for _, m := range snap.Monthly {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", m.Month, m.Income.Display(), m.Expense.Display())
		}
	}

	if len(snap.ByCategory) > 0 {
		fmt.Fprintf(tw, "\t\t\t\n")
		fmt.Fprintf(tw, "Category\tExpense\t\n")
		for _, c := range snap.ByCategory {
			fmt.Fprintf(tw, "%s\t%s\t\n", c.Name, c.Amount.Display())
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, a := range snap.Alerts {
		if _, err := fmt.Fprintln(out, a.Message()); err != nil {
			return err
		}
	}
	return nil
}
