package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"billgen/internal/config"
	"billgen/internal/invoice"
	"billgen/internal/logger"
	"billgen/internal/render"
)

var version = "1.0.0"

// appConfig is set by Execute from the environment loaded in main.
var appConfig = config.Default()

var rootCmd = &cobra.Command{
	Use:   "billgen",
	Short: "billgen - fill in line items and get a PDF invoice",
	Long: `billgen turns a list of line items (description, quantity, unit price)
into a one-business PDF invoice with a letterhead, an items table, totals
with optional VAT, and bank transfer instructions.

Use "billgen serve" for the browser form or "billgen generate" to render
an invoice from a YAML/JSON file or command-line flags.

The letterhead, VAT rate and bank details come from the business profile
(--profile or INVOICE_PROFILE); without one the built-in profile is used.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the configuration loaded by main.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")

	if cfg != nil {
		appConfig = cfg
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("profile", "", "Business profile YAML (default: $INVOICE_PROFILE or built-in)")
	rootCmd.PersistentFlags().String("policy", "", "Subtotal policy: exact or rounded (default: $SUBTOTAL_POLICY)")
}

// loadProfile resolves the profile from --profile, then the environment.
func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	path, _ := cmd.Flags().GetString("profile")
	if path == "" {
		path = appConfig.ProfilePath
	}
	return config.LoadProfile(path)
}

// newRenderer builds a renderer from the profile, policy and verify settings.
func newRenderer(cmd *cobra.Command, log zerolog.Logger) (*render.Renderer, error) {
	profile, err := loadProfile(cmd)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load business profile")
		return nil, fmt.Errorf("failed to load business profile: %w", err)
	}

	policyName, _ := cmd.Flags().GetString("policy")
	if policyName == "" {
		policyName = appConfig.SubtotalPolicy
	}
	policy, err := invoice.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}

	layout := render.DefaultLayout().WithFont(appConfig.FontFile, appConfig.BoldFontFile)
	renderer, err := render.NewRenderer(render.Config{
		Profile: profile,
		Policy:  policy,
		Layout:  &layout,
		Verify:  appConfig.VerifyPDF,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("organization", profile.Organization.Name).
		Float64("vat_rate", profile.VATRate).
		Str("policy", string(policy)).
		Str("font", layout.FontFamily).
		Bool("verify", appConfig.VerifyPDF).
		Msg("Renderer created")
	return renderer, nil
}

// createCommandContext returns a context canceled on SIGINT/SIGTERM and,
// when timeoutSecs > 0, after the timeout.
func createCommandContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
