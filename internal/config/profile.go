package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"billgen/internal/invoice"
)

// Profile is the fixed business identity printed on every invoice.
type Profile struct {
	Organization Organization `yaml:"organization"`
	VATRate      float64      `yaml:"vat_rate"`
	Payment      Payment      `yaml:"payment"`
	File         FileNaming   `yaml:"file"`
	Placeholders Placeholders `yaml:"placeholders"`
}

// Organization is the letterhead.
type Organization struct {
	Name    string `yaml:"name"`
	Contact string `yaml:"contact"`
}

// Payment is the footer with bank transfer instructions.
type Payment struct {
	Note          string `yaml:"note"`
	BankName      string `yaml:"bank_name"`
	AccountName   string `yaml:"account_name"`
	AccountNumber string `yaml:"account_number"`
	Branch        string `yaml:"branch"`
}

// FileNaming builds the download name: <prefix>_<customer or fallback>.<ext>.
type FileNaming struct {
	Prefix    string `yaml:"prefix"`
	Fallback  string `yaml:"fallback"`
	Extension string `yaml:"extension"`
}

// Placeholders are printed when the customer name or date is blank.
type Placeholders struct {
	CustomerName string `yaml:"customer_name"`
	Date         string `yaml:"date"`
}

// DefaultProfile returns the built-in business profile.
func DefaultProfile() *Profile {
	return &Profile{
		Organization: Organization{
			Name:    "RAMESH INTERNATIONAL",
			Contact: "ramesh@rameshinternational.com",
		},
		VATRate: invoice.DefaultVATRate,
		Payment: Payment{
			Note:          "For bank transfers, please use the following account details and include the invoice number as the payment reference:",
			BankName:      "BANK MUSCAT",
			AccountName:   "RAMESH INTERNATIONAL SPC",
			AccountNumber: "0317072830880018",
			Branch:        "Al Khuwair",
		},
		File: FileNaming{
			Prefix:    "invoice",
			Fallback:  "bill",
			Extension: "pdf",
		},
		Placeholders: Placeholders{
			CustomerName: "............................",
			Date:         "............",
		},
	}
}

// LoadProfile reads a YAML profile from path. Keys missing from the file
// keep their built-in values; an empty path returns the built-in profile.
func LoadProfile(path string) (*Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	if err := ParseProfile(data, p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes YAML over p and validates the result.
func ParseProfile(data []byte, p *Profile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode: %w", err)
	}
	return p.Validate()
}

// Validate checks the fields every invoice depends on.
func (p *Profile) Validate() error {
	if p.Organization.Name == "" {
		return invoice.NewValidationError("organization.name", p.Organization.Name, "must not be empty", nil)
	}
	if p.File.Prefix == "" || p.File.Fallback == "" || p.File.Extension == "" {
		return invoice.NewValidationError("file", p.File, "prefix, fallback and extension are required", nil)
	}
	opts := invoice.Options{VATRate: p.VATRate, Policy: invoice.PolicyExact}
	return opts.Validate()
}

// Filename is the download name for an invoice addressed to customerName.
func (p *Profile) Filename(customerName string) string {
	name := customerName
	if name == "" {
		name = p.File.Fallback
	}
	return fmt.Sprintf("%s_%s.%s", p.File.Prefix, name, p.File.Extension)
}

// BankLines returns the four account lines of the payment footer.
func (p *Profile) BankLines() []string {
	return []string{
		"Bank Name: " + p.Payment.BankName,
		"Account Name: " + p.Payment.AccountName,
		"Account Number: " + p.Payment.AccountNumber,
		"Branch: " + p.Payment.Branch,
	}
}

// YAML encodes the profile in the same shape LoadProfile reads.
func (p *Profile) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
