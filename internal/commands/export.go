package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/finwatch-dev/finwatch/internal/config"
	"github.com/finwatch-dev/finwatch/internal/model"
	"github.com/finwatch-dev/finwatch/internal/store"
)

func newExportCommand() *cobra.Command {
	var cfgPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all seen transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			txns, err := store.NewTransactionStore(cfg.Store.DBPath)
			if err != nil {
				return err
			}
			defer txns.Close()

			out := io.Writer(os.Stdout)
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return exportTransactions(out, txns)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "finwatch.yaml", "config file")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func exportTransactions(w io.Writer, txns *store.TransactionStore) error {
	all, err := txns.All()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "account_id", "date", "description", "amount", "pending"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, txn := range all {
		row := []string{
			txn.ID,
			txn.AccountID,
			txn.Date.Format(model.DateFormat),
			txn.Description,
			txn.Amount.String(),
			strconv.FormatBool(txn.Pending),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transaction %s: %w", txn.ID, err)
		}
	}
	return cw.Error()
}
