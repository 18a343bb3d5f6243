package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var restockCmd = &cobra.Command{
	Use:   "restock <productId> <stock>",
	Short: "Set the stock level of a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stock, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid stock level %q: %w", args[1], err)
		}

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.reporter.Restock(cmd.Context(), args[0], stock)
		if err != nil {
			return err
		}
		if err := a.store.persist(); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}
		return printJSON(item)
	},
}

func init() {
	rootCmd.AddCommand(restockCmd)
}
