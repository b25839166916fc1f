package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// formatNumber renders v the way the display shows it: the shortest decimal
// that round-trips, exponent notation outside [1e-6, 1e21), and the words
// Infinity / -Infinity / NaN for non-finite values. Division by zero
// therefore shows "Infinity", "-Infinity" or "NaN".
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		// Covers -0.
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseNumber reads the longest numeric prefix of s. A display that has had
// digits appended to "Infinity" still reads as infinite, and text with no
// numeric prefix reads as NaN.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return v
	}

	sign := 1.0
	rest := s
	switch {
	case strings.HasPrefix(rest, "-"):
		sign = -1
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	}

	if strings.HasPrefix(rest, "Infinity") {
		return math.Inf(int(sign))
	}

	n := numericPrefixLen(rest)
	if n == 0 {
		return math.NaN()
	}

	v, _ = strconv.ParseFloat(rest[:n], 64)
	return sign * v
}

// numericPrefixLen returns the length of the leading unsigned decimal literal
// in s, or 0 if there is none.
func numericPrefixLen(s string) int {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		if digits > 0 {
			i = j
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
