package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billgen/internal/logger"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the effective business profile as YAML",
	Long: `Print the business profile (letterhead, VAT rate, bank details, file
naming) that invoices are rendered with. The output can be saved, edited and
passed back with --profile or INVOICE_PROFILE.`,
	Example: `  # Start a custom profile from the built-in one
  billgen profile > business.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("profile")

		profile, err := loadProfile(cmd)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load business profile")
			return fmt.Errorf("failed to load business profile: %w", err)
		}
		data, err := profile.YAML()
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
