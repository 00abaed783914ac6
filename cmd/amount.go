package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billgen/internal/invoice"
)

var amountCmd = &cobra.Command{
	Use:   "amount <quantity> <unit-price>",
	Short: "Print a line amount exactly as the invoice would show it",
	Long: `Multiply quantity by unit price and print the result with three decimals,
using the same parsing and rounding as the form and the PDF. Values that are
not numbers count as zero.`,
	Example: `  billgen amount 2 100      # 200.000
  billgen amount 1.5 abc    # 0.000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), invoice.ComputeAmount(args[0], args[1]))
		return err
	},
}

func init() {
	rootCmd.AddCommand(amountCmd)
}
