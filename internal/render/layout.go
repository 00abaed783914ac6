package render

// Layout is the page geometry in millimetres. Vertical positions of text are
// baselines; table positions are the top edge of the first row.
type Layout struct {
	PageSize   string
	Margin     float64
	FontFamily string

	// FontFile is a UTF-8 TrueType font registered under FontFamily. When
	// empty, FontFamily must be a core font and text is limited to cp1252.
	FontFile string

	// BoldFontFile is the bold face for FontFile. Default: FontFile.
	BoldFontFile string

	OrgY             float64
	ContactY         float64
	TitleY           float64
	RuleY            float64
	RuleHalfWidth    float64
	PartyY           float64
	OrgFontSize      float64
	ContactFontSize  float64
	TitleFontSize    float64
	PartyFontSize    float64
	TableFontSize    float64
	PaymentFontSize  float64
	LineHeightFactor float64

	TableY      float64
	CellPadding float64
	HeadFill    [3]int

	TotalsGap      float64
	TotalsX        float64
	TotalsColWidth float64
	TotalsPadX     float64
	TotalsPadY     float64

	PaymentGap      float64
	BankLineOffsets []float64
}

// DefaultLayout is an A4 portrait page with 14 mm margins.
func DefaultLayout() Layout {
	return Layout{
		PageSize:   "A4",
		Margin:     14,
		FontFamily: "Helvetica",

		OrgY:             15,
		ContactY:         22,
		TitleY:           35,
		RuleY:            37,
		RuleHalfWidth:    10,
		PartyY:           50,
		OrgFontSize:      16,
		ContactFontSize:  11,
		TitleFontSize:    14,
		PartyFontSize:    11,
		TableFontSize:    10,
		PaymentFontSize:  10,
		LineHeightFactor: 1.15,

		TableY:      60,
		CellPadding: 1.76,
		HeadFill:    [3]int{220, 220, 220},

		TotalsGap:      10,
		TotalsX:        125,
		TotalsColWidth: 35,
		TotalsPadX:     6,
		TotalsPadY:     2,

		PaymentGap:      15,
		BankLineOffsets: []float64{8, 15, 22, 29},
	}
}

// UTF8FontFamily is the family name fonts loaded from FontFile are
// registered under by WithFont.
const UTF8FontFamily = "InvoiceSans"

// WithFont returns l drawing with the TrueType font at regular (and bold,
// when given). An empty regular path leaves l unchanged.
func (l Layout) WithFont(regular, bold string) Layout {
	if regular == "" {
		return l
	}
	l.FontFamily = UTF8FontFamily
	l.FontFile = regular
	l.BoldFontFile = bold
	return l
}

const mmPerPoint = 25.4 / 72

// lineHeight is the distance between two baselines of a font size in points.
func (l Layout) lineHeight(fontSize float64) float64 {
	return fontSize * mmPerPoint * l.LineHeightFactor
}
