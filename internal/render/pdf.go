// Package render lays out a computed invoice as a PDF document.
//
// The page has a centred letterhead, the customer/date line, a bordered
// line-items table that flows onto further pages as needed, a totals block
// placed under wherever that table ended, and the payment instructions below
// the totals.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"billgen/internal/config"
	"billgen/internal/invoice"
	"billgen/internal/logger"
	"billgen/pkg/models"
)

// Document is a finished invoice ready to be downloaded or written out.
type Document struct {
	Filename    string
	Data        []byte
	Pages       int
	Summary     invoice.Summary
	GeneratedAt time.Time

	// MissingGlyphs are characters the font could not draw. They are
	// printed as placeholders; set a TrueType font in the layout to keep
	// them.
	MissingGlyphs []rune
}

// Config holds everything a Renderer needs.
type Config struct {
	// Profile is the letterhead, VAT rate and bank details. Required.
	Profile *config.Profile

	// Policy selects how the subtotal is summed. Default: exact.
	Policy invoice.SubtotalPolicy

	// Layout is the page geometry. Default: DefaultLayout().
	Layout *Layout

	// Verify re-reads every generated PDF with pdfcpu before returning it.
	Verify bool
}

// Renderer turns invoice state into PDF documents. It holds no mutable
// state and may be shared between goroutines.
type Renderer struct {
	profile *config.Profile
	opts    invoice.Options
	layout  Layout
	verify  bool
	check   *invoice.TotalsCheck
	log     zerolog.Logger
}

// NewRenderer validates cfg and returns a Renderer.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Profile == nil {
		return nil, fmt.Errorf("render: profile is required")
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	opts := invoice.Options{VATRate: cfg.Profile.VATRate, Policy: cfg.Policy}
	if opts.Policy == "" {
		opts.Policy = invoice.PolicyExact
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	layout := DefaultLayout()
	if cfg.Layout != nil {
		layout = *cfg.Layout
	}

	return &Renderer{
		profile: cfg.Profile,
		opts:    opts,
		layout:  layout,
		verify:  cfg.Verify,
		check:   invoice.NewTotalsCheck(),
		log:     logger.WithComponent("render"),
	}, nil
}

// Options returns the computation options the renderer applies.
func (r *Renderer) Options() invoice.Options { return r.opts }

// Profile returns the business profile printed on every document.
func (r *Renderer) Profile() *config.Profile { return r.profile }

// Render computes and lays out the invoice for state. Bad numbers, a blank
// customer or an empty item list are all rendered; only the PDF engine or
// ctx can make it fail.
func (r *Renderer) Render(ctx context.Context, state models.InvoiceState) (*Document, error) {
	const op = "Render"
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(op, fmt.Errorf("%w: %w", ErrCanceled, err), "")
	}

	summary := invoice.Compute(state, r.opts)
	r.check.Check(state, r.opts)

	l := r.layout
	pdf := gofpdf.New("P", "mm", l.PageSize, "")
	if pdf.Err() {
		return nil, NewRenderError(op, ErrLayoutFailed, pdf.Error().Error())
	}
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetAutoPageBreak(false, l.Margin)
	pdf.SetCellMargin(0)
	pdf.SetTitle("Invoice "+state.CustomerName, true)
	pdf.SetAuthor(r.profile.Organization.Name, true)
	pdf.SetCreator("billgen", true)
	enc, err := newTextEncoder(pdf, l)
	if err != nil {
		return nil, NewRenderError(op, ErrLayoutFailed, err.Error())
	}

	_, pageH := pdf.GetPageSize()
	frame := pageFrame{top: l.Margin, bottom: pageH - l.Margin}

	pdf.AddPage()
	r.drawHeader(pdf, enc, state)

	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(op, fmt.Errorf("%w: %w", ErrCanceled, err), "")
	}

	y := r.itemsTable(pdf, summary).draw(pdf, enc, l.Margin, l.TableY, frame)
	y = r.totalsTable(summary).draw(pdf, enc, l.TotalsX, y+l.TotalsGap, frame)
	r.drawPayment(pdf, enc, y+l.PaymentGap, frame)

	if pdf.Err() {
		return nil, NewRenderError(op, ErrLayoutFailed, pdf.Error().Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(op, ErrOutputFailed, err.Error())
	}

	doc := &Document{
		Filename:      r.profile.Filename(state.CustomerName),
		Data:          buf.Bytes(),
		Pages:         pdf.PageCount(),
		Summary:       summary,
		GeneratedAt:   time.Now(),
		MissingGlyphs: enc.missingGlyphs(),
	}

	if r.verify {
		pages, err := PageCount(doc.Data)
		if err != nil {
			return nil, WrapRenderError(op, err, "")
		}
		doc.Pages = pages
	}

	if len(doc.MissingGlyphs) > 0 {
		r.log.Warn().
			Str("filename", doc.Filename).
			Str("characters", string(doc.MissingGlyphs)).
			Str("font", l.FontFamily).
			Msg("Font cannot draw some characters, they print as placeholders")
	}

	r.log.Info().
		Str("filename", doc.Filename).
		Int("rows", len(summary.Rows)).
		Int("pages", doc.Pages).
		Int("bytes", len(doc.Data)).
		Str("grand_total", summary.GrandTotalText()).
		Dur("duration", time.Since(start)).
		Msg("Invoice rendered")

	return doc, nil
}

func (r *Renderer) drawHeader(pdf *gofpdf.Fpdf, enc *textEncoder, state models.InvoiceState) {
	l := r.layout
	pageW, _ := pdf.GetPageSize()
	center := pageW / 2

	centered := func(y float64, s string) {
		s = enc.encode(s)
		pdf.Text(center-pdf.GetStringWidth(s)/2, y, s)
	}

	pdf.SetFont(l.FontFamily, "B", l.OrgFontSize)
	centered(l.OrgY, r.profile.Organization.Name)
	if r.profile.Organization.Contact != "" {
		pdf.SetFont(l.FontFamily, "", l.ContactFontSize)
		centered(l.ContactY, r.profile.Organization.Contact)
	}

	pdf.SetFont(l.FontFamily, "B", l.TitleFontSize)
	centered(l.TitleY, "INVOICE")
	pdf.Line(center-l.RuleHalfWidth, l.RuleY, center+l.RuleHalfWidth, l.RuleY)

	name := state.CustomerName
	if name == "" {
		name = r.profile.Placeholders.CustomerName
	}
	date := state.Date
	if date == "" {
		date = r.profile.Placeholders.Date
	}

	pdf.SetFont(l.FontFamily, "", l.PartyFontSize)
	pdf.Text(l.Margin, l.PartyY, enc.encode("Customer Name: Mr. / M/s "+name))
	dateText := enc.encode("Date: " + date)
	pdf.Text(pageW-l.Margin-pdf.GetStringWidth(dateText), l.PartyY, dateText)
}

func (r *Renderer) itemsTable(pdf *gofpdf.Fpdf, summary invoice.Summary) *table {
	l := r.layout
	pageW, _ := pdf.GetPageSize()
	content := pageW - 2*l.Margin

	cols := []column{
		{width: 16, align: "L"},
		{width: 0, align: "L"},
		{width: 20, align: "L"},
		{width: 30, align: "L"},
		{width: 32, align: "L"},
	}
	fixed := 0.0
	for _, c := range cols {
		fixed += c.width
	}
	cols[1].width = content - fixed

	body := make([][]string, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		body = append(body, row.Cells())
	}

	fill := l.HeadFill
	return &table{
		cols: cols,
		head: []string{"S No.", "Description", "Qty.", "Unit Rate", "Amount"},
		body: body,
		style: tableStyle{
			family:   l.FontFamily,
			fontSize: l.TableFontSize,
			lineH:    l.lineHeight(l.TableFontSize),
			padX:     l.CellPadding,
			padY:     l.CellPadding,
			border:   true,
			headFill: &fill,
		},
	}
}

func (r *Renderer) totalsTable(summary invoice.Summary) *table {
	l := r.layout
	body := make([][]string, 0, 3)
	for _, line := range summary.TotalLines() {
		body = append(body, []string{line[0], line[1]})
	}
	return &table{
		cols: []column{
			{width: l.TotalsColWidth, align: "R"},
			{width: l.TotalsColWidth, align: "R"},
		},
		body: body,
		style: tableStyle{
			family:   l.FontFamily,
			fontSize: l.TableFontSize,
			lineH:    l.lineHeight(l.TableFontSize),
			padX:     l.TotalsPadX,
			padY:     l.TotalsPadY,
		},
	}
}

// drawPayment writes the wrapped payment note with its first baseline at y,
// followed by the bank lines. The block moves to a new page when it would
// not fit above the bottom margin.
func (r *Renderer) drawPayment(pdf *gofpdf.Fpdf, enc *textEncoder, y float64, frame pageFrame) {
	l := r.layout
	pageW, _ := pdf.GetPageSize()
	lineH := l.lineHeight(l.PaymentFontSize)

	pdf.SetFont(l.FontFamily, "", l.PaymentFontSize)
	var note []string
	if r.profile.Payment.Note != "" {
		note = enc.split(pdf, enc.encode(r.profile.Payment.Note), pageW-2*l.Margin)
	}
	extra := 0.0
	if len(note) > 1 {
		extra = float64(len(note)-1) * lineH
	}

	height := extra
	if n := len(l.BankLineOffsets); n > 0 {
		height += l.BankLineOffsets[n-1]
	}
	if y+height > frame.bottom {
		pdf.AddPage()
		y = frame.top + lineH
	}

	for i, line := range note {
		pdf.Text(l.Margin, y+float64(i)*lineH, line)
	}
	for i, line := range r.profile.BankLines() {
		if i >= len(l.BankLineOffsets) {
			break
		}
		pdf.Text(l.Margin, y+extra+l.BankLineOffsets[i], enc.encode(line))
	}
}
