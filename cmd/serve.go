package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billgen/internal/logger"
	"billgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the invoice form in the browser",
	Long: `Start the invoice form on a local HTTP address.

The form collects the customer name, date, line items and the VAT choice,
shows each row's amount and the running totals, and downloads the PDF.
Nothing is stored on the server: each submission carries the whole form.

Endpoints:
  GET  /             the form
  POST /             form actions (add, remove-<n>, update, download)
  GET  /api/amount   ?quantity=&unit_price= -> {"amount": "..."}
  POST /api/invoice  JSON invoice -> PDF (?format=json for the totals)
  GET  /healthz      liveness`,
	Example: `  # Serve on the default address (:8080 or $SERVER_ADDR)
  billgen serve

  # Serve on localhost only with a custom profile
  billgen serve --addr 127.0.0.1:9000 --profile business.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: $SERVER_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = appConfig.ServerAddr
	}

	renderer, err := newRenderer(cmd, log)
	if err != nil {
		return err
	}

	srv, err := server.New(renderer)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create invoice form server")
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("Invoice form server failed")
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
