package invoice

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Decimals is the number of fraction digits printed for every money value.
const Decimals = 3

// ParseNumber reads the longest decimal literal at the start of s, after
// leading whitespace. Anything that does not start with a number yields 0,
// so "12abc" is 12 and "abc" is 0. "Infinity" with an optional sign is
// accepted, and values beyond the float64 range saturate to ±Inf.
func ParseNumber(s string) float64 {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
	if s == "" {
		return 0
	}

	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	j := scanDigits(s, i)
	intDigits := j - i
	if j < len(s) && s[j] == '.' {
		k := scanDigits(s, j+1)
		if intDigits > 0 || k > j+1 {
			j = k
		}
	}
	if j == i {
		return 0
	}

	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if end := scanDigits(s, k); end > k {
			j = end
		}
	}

	v, err := strconv.ParseFloat(s[:j], 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return 0
	}
	return v
}

func scanDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// FormatFixed prints x with exactly three fraction digits. Values that sit
// exactly halfway between two results round away from zero. Negative zero
// prints without a sign.
func FormatFixed(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 0), math.Abs(x) >= 1e21:
		return FormatNumber(x)
	}

	neg := x < 0
	ax := math.Abs(x)

	s, tie := roundHalfUp(ax)
	if !tie {
		s = strconv.FormatFloat(ax, 'f', Decimals, 64)
	}
	if neg {
		return "-" + s
	}
	return s
}

// roundHalfUp handles the one case where strconv (round half to even)
// disagrees with the invoice rounding: an exact binary tie at the fourth
// decimal.
func roundHalfUp(ax float64) (string, bool) {
	const prec = 128

	scaled := new(big.Float).SetPrec(prec).SetFloat64(ax)
	scaled.Mul(scaled, new(big.Float).SetPrec(prec).SetInt64(1000))

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(prec).Sub(scaled, new(big.Float).SetPrec(prec).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return "", false
	}

	whole.Add(whole, big.NewInt(1))
	digits := whole.String()
	if len(digits) <= Decimals {
		digits = strings.Repeat("0", Decimals+1-len(digits)) + digits
	}
	cut := len(digits) - Decimals
	return digits[:cut] + "." + digits[cut:], true
}

// FormatNumber prints the shortest representation that round-trips, with
// exponent notation outside [1e-6, 1e21).
func FormatNumber(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case x == 0:
		return "0"
	}

	ax := math.Abs(x)
	if ax >= 1e-6 && ax < 1e21 {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}

	s := strconv.FormatFloat(x, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}

// ComputeAmount is the amount shown for a row, both in the form and in the
// PDF. Unparseable input counts as zero.
func ComputeAmount(quantity, unitPrice string) string {
	return FormatFixed(ParseNumber(quantity) * ParseNumber(unitPrice))
}
