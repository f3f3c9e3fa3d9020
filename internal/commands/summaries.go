package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finwatch-dev/finwatch/internal/block"
)

func newAccountsCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Print the active-accounts summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			blocks, err := app.builder.AccountsBlocks(cmd.Context())
			if err != nil {
				return err
			}
			printBlocks(blocks)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "finwatch.yaml", "config file")
	return cmd
}

func newBufferCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Print the money-buffer line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			buffer, err := app.builder.MoneyBuffer(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(buffer.Body)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "finwatch.yaml", "config file")
	return cmd
}

func printBlocks(blocks []block.Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case block.Header:
			fmt.Println("== " + v.Text.Body)
		case block.Section:
			if v.Text.Body != "" {
				fmt.Println(v.Text.Body)
			}
		case block.Context:
			for _, e := range v.Elements {
				fmt.Println(e.Body)
			}
		}
	}
}
