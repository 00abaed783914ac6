package render

import (
	"math"

	"github.com/jung-kurt/gofpdf"
)

type column struct {
	width float64
	align string // gofpdf alignment: "L", "C" or "R"
}

type tableStyle struct {
	family   string
	fontSize float64
	lineH    float64
	padX     float64
	padY     float64
	border   bool
	headFill *[3]int
}

// table draws rows of wrapped text cells and starts a new page, repeating
// the header, whenever the next row would cross the bottom margin. A row
// taller than a whole page is split between lines.
type table struct {
	cols  []column
	head  []string
	body  [][]string
	style tableStyle
}

type pageFrame struct {
	top    float64
	bottom float64
}

// piece is one drawn slice of a row. page counts the pages added since the
// table started; lines holds the encoded lines of each column.
type piece struct {
	page  int
	y     float64
	h     float64
	head  bool
	lines [][]string
}

// draw lays the table out with its top-left corner at (x, y) and returns
// the y just below the last row drawn.
func (t *table) draw(pdf *gofpdf.Fpdf, enc *textEncoder, x, y float64, frame pageFrame) float64 {
	pieces, end := t.layout(pdf, enc, y, frame)
	page := 0
	for _, p := range pieces {
		for page < p.page {
			pdf.AddPage()
			page++
		}
		t.drawPiece(pdf, x, p)
	}
	return end
}

// layout places every row without drawing anything.
func (t *table) layout(pdf *gofpdf.Fpdf, enc *textEncoder, y float64, frame pageFrame) ([]piece, float64) {
	var (
		pieces []piece
		page   int
		head   [][]string
		headH  float64
	)
	if len(t.head) > 0 {
		head = t.lines(pdf, enc, t.head, true)
		headH = t.height(lineCount(head))
	}
	placeHead := func() {
		if head != nil {
			pieces = append(pieces, piece{page: page, y: y, h: headH, head: true, lines: head})
			y += headH
		}
	}
	newPage := func() {
		page++
		y = frame.top
		placeHead()
	}

	body := make([][][]string, len(t.body))
	for i, cells := range t.body {
		body[i] = t.lines(pdf, enc, cells, false)
	}
	usable := frame.bottom - frame.top - headH

	// Header and the start of the first row travel together.
	first := headH
	if len(body) > 0 {
		first += math.Min(t.height(lineCount(body[0])), t.height(1))
	}
	if y+first > frame.bottom && y > frame.top {
		newPage()
	} else {
		placeHead()
	}

	for _, lines := range body {
		n := lineCount(lines)
		h := t.height(n)
		if h <= usable {
			if y+h > frame.bottom && y > frame.top+headH {
				newPage()
			}
			pieces = append(pieces, piece{page: page, y: y, h: h, lines: lines})
			y += h
			continue
		}

		for from := 0; from < n; {
			fit := int(math.Floor((frame.bottom-y-2*t.style.padY)/t.style.lineH + 1e-9))
			if fit < 1 {
				if y > frame.top+headH {
					newPage()
					continue
				}
				fit = 1
			}
			to := from + fit
			if to > n {
				to = n
			}
			pieces = append(pieces, piece{page: page, y: y, h: t.height(to - from), lines: sliceLines(lines, from, to)})
			y += t.height(to - from)
			from = to
			if from < n {
				newPage()
			}
		}
	}
	return pieces, y
}

func (t *table) setFont(pdf *gofpdf.Fpdf, head bool) {
	style := ""
	if head {
		style = "B"
	}
	pdf.SetFont(t.style.family, style, t.style.fontSize)
}

// lines encodes and wraps each cell to its column width.
func (t *table) lines(pdf *gofpdf.Fpdf, enc *textEncoder, cells []string, head bool) [][]string {
	t.setFont(pdf, head)
	out := make([][]string, len(t.cols))
	for i, col := range t.cols {
		text := ""
		if i < len(cells) {
			text = enc.encode(cells[i])
		}
		lines := enc.split(pdf, text, col.width-2*t.style.padX)
		if len(lines) == 0 {
			lines = []string{""}
		}
		out[i] = lines
	}
	return out
}

func (t *table) height(lines int) float64 {
	return float64(lines)*t.style.lineH + 2*t.style.padY
}

func lineCount(cols [][]string) int {
	n := 1
	for _, lines := range cols {
		if len(lines) > n {
			n = len(lines)
		}
	}
	return n
}

// sliceLines keeps lines [from, to) of every column.
func sliceLines(cols [][]string, from, to int) [][]string {
	out := make([][]string, len(cols))
	for i, lines := range cols {
		if from < len(lines) {
			end := to
			if end > len(lines) {
				end = len(lines)
			}
			out[i] = lines[from:end]
		}
	}
	return out
}

func (t *table) drawPiece(pdf *gofpdf.Fpdf, x float64, p piece) {
	t.setFont(pdf, p.head)

	fill := p.head && t.style.headFill != nil
	if fill {
		c := t.style.headFill
		pdf.SetFillColor(c[0], c[1], c[2])
	}

	cx := x
	for i, col := range t.cols {
		switch {
		case fill && t.style.border:
			pdf.Rect(cx, p.y, col.width, p.h, "FD")
		case fill:
			pdf.Rect(cx, p.y, col.width, p.h, "F")
		case t.style.border:
			pdf.Rect(cx, p.y, col.width, p.h, "D")
		}
		for li, line := range p.lines[i] {
			pdf.SetXY(cx+t.style.padX, p.y+t.style.padY+float64(li)*t.style.lineH)
			pdf.CellFormat(col.width-2*t.style.padX, t.style.lineH, line, "", 0, col.align, false, 0, "")
		}
		cx += col.width
	}
}
