package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"billgen/internal/invoice"
	"billgen/internal/logger"
	"billgen/internal/render"
	"billgen/pkg/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate [invoice-file]",
	Short: "Render a PDF invoice from a YAML/JSON file or flags",
	Long: `Render a PDF invoice from line items.

The optional invoice file is YAML or JSON (use "-" for stdin):

  customer_name: Acme LLC
  date: 2024-05-01
  vat_included: true
  line_items:
    - description: Consulting
      quantity: "2"
      unit_price: "100"

Flags add to or override the file: --customer, --date and --vat replace the
header fields, and every --item "description|quantity|unit price" appends a
line. Quantities and prices that are not numbers count as zero.

The PDF is written to OUTPUT_DIR (or --output-dir) as
invoice_<customer>.pdf, or to the exact path given with -o.`,
	Example: `  # Render from a file
  billgen generate invoice.yaml

  # Build an invoice from flags only
  billgen generate --customer "Acme LLC" --date 2024-05-01 --vat \
    --item "Consulting|2|100" --item "Travel|1|50.5"

  # Print the computed rows and totals instead of writing a PDF
  billgen generate invoice.yaml --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("output", "o", "", "Output file path (default: <output-dir>/<invoice filename>)")
	generateCmd.Flags().String("output-dir", "", "Output directory (default: $OUTPUT_DIR or .)")
	generateCmd.Flags().String("customer", "", "Customer name")
	generateCmd.Flags().String("date", "", "Invoice date, printed as given")
	generateCmd.Flags().Bool("vat", false, "Include VAT")
	generateCmd.Flags().StringArray("item", nil, `Line item as "description|quantity|unit price" (repeatable)`)
	generateCmd.Flags().Bool("dry-run", false, "Print computed rows and totals as JSON, do not write a PDF")
	generateCmd.Flags().Int("timeout", 60, "Rendering timeout in seconds")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("generate")

	outputPath, _ := cmd.Flags().GetString("output")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	if outputDir == "" {
		outputDir = appConfig.OutputDir
	}

	var state models.InvoiceState
	if len(args) == 1 {
		loaded, err := loadState(args[0], cmd.InOrStdin())
		if err != nil {
			log.Error().Err(err).Str("file", args[0]).Msg("Failed to load invoice file")
			return err
		}
		state = loaded
	}

	editor, err := applyFlags(cmd, invoice.NewEditorFromState(state))
	if err != nil {
		return err
	}
	snapshot := editor.Snapshot()

	renderer, err := newRenderer(cmd, log)
	if err != nil {
		return err
	}

	if dryRun {
		summary := invoice.Compute(snapshot, renderer.Options())
		return writeReport(cmd.OutOrStdout(), summary.Report())
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	log.Info().
		Str("customer", snapshot.CustomerName).
		Int("items", len(snapshot.LineItems)).
		Bool("vat", snapshot.VATIncluded).
		Msg("Rendering invoice")

	doc, err := renderer.Render(ctx, snapshot)
	if err != nil {
		return handleRenderError(err, log)
	}

	if outputPath == "" {
		outputPath = filepath.Join(outputDir, safeFilename(doc.Filename))
	}
	if err := os.WriteFile(outputPath, doc.Data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write invoice PDF")
		return fmt.Errorf("failed to write invoice PDF: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("pages", doc.Pages).
		Int("bytes", len(doc.Data)).
		Str("grand_total", doc.Summary.GrandTotalText()).
		Msg("Invoice written")
	fmt.Fprintln(cmd.OutOrStdout(), outputPath)
	return nil
}

// loadState reads an InvoiceState from a YAML or JSON file, or stdin for "-".
func loadState(path string, stdin io.Reader) (models.InvoiceState, error) {
	var state models.InvoiceState

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return state, fmt.Errorf("failed to read invoice file: %w", err)
	}

	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil && !errors.Is(err, io.EOF) {
		return state, fmt.Errorf("failed to parse invoice file %s: %w", path, err)
	}
	return state, nil
}

// applyFlags layers --customer, --date, --vat and --item onto the editor.
func applyFlags(cmd *cobra.Command, editor *invoice.Editor) (*invoice.Editor, error) {
	flags := cmd.Flags()
	if flags.Changed("customer") {
		v, _ := flags.GetString("customer")
		editor.SetCustomerName(v)
	}
	if flags.Changed("date") {
		v, _ := flags.GetString("date")
		editor.SetDate(v)
	}
	if flags.Changed("vat") {
		v, _ := flags.GetBool("vat")
		editor.SetVATIncluded(v)
	}

	items, _ := flags.GetStringArray("item")
	for _, raw := range items {
		item, err := parseItemFlag(raw)
		if err != nil {
			return nil, err
		}
		index := editor.AddLineItem()
		editor.UpdateField(index, invoice.FieldDescription, item.Description)
		editor.UpdateField(index, invoice.FieldQuantity, item.Quantity)
		editor.UpdateField(index, invoice.FieldUnitPrice, item.UnitPrice)
	}
	return editor, nil
}

// parseItemFlag splits "description|quantity|unit price". Missing trailing
// parts are left blank.
func parseItemFlag(raw string) (models.LineItem, error) {
	if raw == "" {
		return models.LineItem{}, fmt.Errorf(`--item must look like "description|quantity|unit price"`)
	}
	parts := strings.SplitN(raw, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return models.LineItem{
		Description: strings.TrimSpace(parts[0]),
		Quantity:    strings.TrimSpace(parts[1]),
		UnitPrice:   strings.TrimSpace(parts[2]),
	}, nil
}

// safeFilename keeps a customer name from turning the download name into a
// path outside the output directory.
func safeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")
	name = replacer.Replace(name)
	if name == "." || name == ".." {
		return "_"
	}
	return name
}

func writeReport(w io.Writer, report invoice.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// handleRenderError provides user-friendly error messages for rendering failures
func handleRenderError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Invoice rendering failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("invoice rendering timed out. Try increasing --timeout")
	case errors.Is(err, render.ErrCanceled), errors.Is(err, context.Canceled):
		return fmt.Errorf("invoice rendering was canceled")
	case errors.Is(err, render.ErrLayoutFailed):
		return fmt.Errorf("the PDF engine could not lay out the invoice: %w", err)
	case errors.Is(err, render.ErrVerifyFailed):
		return fmt.Errorf("the generated PDF did not validate. Set VERIFY_PDF=false to skip the check: %w", err)
	case errors.Is(err, render.ErrOutputFailed):
		return fmt.Errorf("could not serialize the PDF: %w", err)
	default:
		return fmt.Errorf("invoice rendering failed: %w", err)
	}
}
