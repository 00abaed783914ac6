package render

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

// textEncoder converts UTF-8 text for the active font and remembers the
// characters that font cannot draw. The core fonts only cover cp1252;
// anything else is printed as '.'.
type textEncoder struct {
	utf8    bool
	cp1252  func(string) string
	missing map[rune]struct{}
}

// newTextEncoder registers the TrueType faces of l, if any, on pdf.
func newTextEncoder(pdf *gofpdf.Fpdf, l Layout) (*textEncoder, error) {
	enc := &textEncoder{missing: make(map[rune]struct{})}
	if l.FontFile == "" {
		enc.cp1252 = pdf.UnicodeTranslatorFromDescriptor("")
		return enc, nil
	}

	bold := l.BoldFontFile
	if bold == "" {
		bold = l.FontFile
	}
	faces := []struct {
		style string
		path  string
	}{
		{"", l.FontFile},
		{"B", bold},
	}
	for _, face := range faces {
		pdf.SetFontLocation(filepath.Dir(face.path))
		pdf.AddUTF8Font(l.FontFamily, face.style, filepath.Base(face.path))
		if pdf.Err() {
			return nil, fmt.Errorf("load font %s: %w", face.path, pdf.Error())
		}
	}
	enc.utf8 = true
	return enc, nil
}

// encode returns s ready for the current font.
func (e *textEncoder) encode(s string) string {
	if e.utf8 {
		// Glyph widths are only kept for the Basic Multilingual Plane.
		return strings.Map(func(r rune) rune {
			if r > 0xFFFF {
				e.missing[r] = struct{}{}
				return '?'
			}
			return r
		}, s)
	}
	for _, r := range s {
		if r >= utf8.RuneSelf && e.cp1252(string(r)) == "." {
			e.missing[r] = struct{}{}
		}
	}
	return e.cp1252(s)
}

// split wraps encoded text to width w in the current font.
func (e *textEncoder) split(pdf *gofpdf.Fpdf, s string, w float64) []string {
	if e.utf8 {
		return wrapText(pdf, s, w)
	}
	var lines []string
	for _, line := range pdf.SplitLines([]byte(s), w) {
		lines = append(lines, string(line))
	}
	return lines
}

// missingGlyphs lists the runes replaced so far, in code point order.
func (e *textEncoder) missingGlyphs() []rune {
	if len(e.missing) == 0 {
		return nil
	}
	out := make([]rune, 0, len(e.missing))
	for r := range e.missing {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// wrapText breaks s at spaces so that every line fits in w. Words wider than
// w on their own are cut between runes.
func wrapText(pdf *gofpdf.Fpdf, s string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if pdf.GetStringWidth(candidate) <= w {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for pdf.GetStringWidth(word) > w {
				cut := fitPrefix(pdf, word, w)
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of word narrower
// than w, and at least one rune.
func fitPrefix(pdf *gofpdf.Fpdf, word string, w float64) int {
	cut := 0
	for i, r := range word {
		next := i + utf8.RuneLen(r)
		if pdf.GetStringWidth(word[:next]) > w {
			break
		}
		cut = next
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(word)
	}
	return cut
}
