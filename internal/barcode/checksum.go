package barcode

import "strings"

// Symbology names a retail barcode family recognized by the selector
type Symbology string

const (
	EAN13 Symbology = "EAN-13"
	UPCA  Symbology = "UPC-A"
	EAN8  Symbology = "EAN-8"
)

// Normalize strips every character that is not an ASCII digit
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// digits converts code to a digit slice when it is exactly n ASCII digits long
func digits(code string, n int) ([]int, bool) {
	if len(code) != n {
		return nil, false
	}
	d := make([]int, n)
	for i := 0; i < n; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return nil, false
		}
		d[i] = int(c - '0')
	}
	return d, true
}

func checkDigit(sum int) int {
	return (10 - sum%10) % 10
}

// ValidEAN13 reports whether code is a 13-digit EAN-13 with a correct check digit
func ValidEAN13(code string) bool {
	d, ok := digits(code, 13)
	if !ok {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		if i%2 == 0 {
			sum += d[i]
		} else {
			sum += 3 * d[i]
		}
	}
	return d[12] == checkDigit(sum)
}

// ValidUPCA reports whether code is a 12-digit UPC-A with a correct check digit
func ValidUPCA(code string) bool {
	d, ok := digits(code, 12)
	if !ok {
		return false
	}
	sum := 0
	for i := 0; i < 11; i++ {
		if i%2 == 0 {
			sum += 3 * d[i]
		} else {
			sum += d[i]
		}
	}
	return d[11] == checkDigit(sum)
}

// ValidEAN8 reports whether code is an 8-digit EAN-8 with a correct check digit
func ValidEAN8(code string) bool {
	d, ok := digits(code, 8)
	if !ok {
		return false
	}
	sum := 0
	for i := 0; i < 7; i++ {
		if i%2 == 0 {
			sum += 3 * d[i]
		} else {
			sum += d[i]
		}
	}
	return d[7] == checkDigit(sum)
}

// selectionOrder is the fixed priority used by Select
var selectionOrder = []struct {
	symbology Symbology
	valid     func(string) bool
}{
	{EAN13, ValidEAN13},
	{UPCA, ValidUPCA},
	{EAN8, ValidEAN8},
}

// Select returns the best valid code among candidates.
// Every EAN-13 beats every UPC-A, which beats every EAN-8, regardless of candidate order.
func Select(candidates []string) (string, Symbology, bool) {
	for _, s := range selectionOrder {
		for _, c := range candidates {
			if s.valid(c) {
				return c, s.symbology, true
			}
		}
	}
	return "", "", false
}

// Dedup removes repeated candidates, keeping the first occurrence
func Dedup(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
