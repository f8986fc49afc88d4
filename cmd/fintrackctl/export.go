package main

import (
	"fmt"
	"io"
	"os"

	"fintrack/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction as JSON, YAML or XLSX",
		Long: `export writes the whole collection in insertion order.

JSON output is the same document the web UI downloads as transactions.json
and can be read back with "fintrackctl import".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.XLSX && out == "" {
				return fmt.Errorf("--out is required for xlsx output")
			}

			s, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			txs, err := s.svc.Transactions(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := export.Encode(w, f, txs); err != nil {
				return fmt.Errorf("encode %s: %w", f, err)
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d transactions to %s\n", len(txs), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
