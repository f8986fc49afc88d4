package main

import (
	"fmt"
	"os"

	"fintrack/internal/backend"
	"fintrack/internal/export"

	"github.com/spf13/cobra"
)

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append the transactions of an exported JSON file",
		Long: `import reads a transactions.json export, validates every entry and appends
them in file order. Nothing is written when any entry is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			txs, err := export.DecodeJSON(file)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			s, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			if s.cfg.DataBackend == string(backend.MemoryBackend) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: memory backend selected, imported data is not persisted")
			}

			n, err := s.svc.Import(cmd.Context(), txs)
			if err != nil {
				return fmt.Errorf("imported %d of %d transactions: %w", n, len(txs), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions\n", n)
			return nil
		},
	}
}
