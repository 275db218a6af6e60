package evaluation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vinylcat/sleevescan/internal/models"
)

// Match methods
const (
	MethodExact       = "exact"
	MethodSubstring   = "substring"
	MethodFuzzyHigh   = "fuzzy_high"
	MethodFuzzyMedium = "fuzzy_medium"
	MethodNoMatch     = "no_match"
	MethodMissing     = "actual_missing"
	MethodUnlabelled  = "unlabelled"
)

// FieldMatch represents the comparison result for a single field
type FieldMatch struct {
	Expected string  `yaml:"expected,omitempty"`
	Actual   string  `yaml:"actual,omitempty"`
	Score    float64 `yaml:"score"`
	Method   string  `yaml:"method"`
}

// Labelled reports whether the field counts towards accuracy
func (m FieldMatch) Labelled() bool {
	return m.Method != MethodUnlabelled
}

// Comparison holds per-field results for one item
type Comparison struct {
	Barcode      FieldMatch `yaml:"barcode"`
	Artist       FieldMatch `yaml:"artist"`
	Title        FieldMatch `yaml:"title"`
	Year         FieldMatch `yaml:"year"`
	OverallScore float64    `yaml:"overall_score"`
}

// Fields returns the comparisons keyed by field name
func (c Comparison) Fields() map[string]FieldMatch {
	return map[string]FieldMatch{
		"barcode": c.Barcode,
		"artist":  c.Artist,
		"title":   c.Title,
		"year":    c.Year,
	}
}

// Compare scores an analyzer result against the labelled fields.
// Barcode and year must match exactly; artist and title are compared fuzzily.
func Compare(expected, actual models.Fields) Comparison {
	c := Comparison{
		Barcode: compareExact(expected.Barcode, actual.Barcode),
		Artist:  compareText(expected.Artist, actual.Artist),
		Title:   compareText(expected.Title, actual.Title),
		Year:    compareExact(yearString(expected.Year), yearString(actual.Year)),
	}

	var total float64
	var n int
	for _, m := range c.Fields() {
		if m.Labelled() {
			total += m.Score
			n++
		}
	}
	if n > 0 {
		c.OverallScore = total / float64(n)
	}
	return c
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func compareExact(expected, actual string) FieldMatch {
	m := FieldMatch{Expected: expected, Actual: actual}
	switch {
	case expected == "":
		m.Method = MethodUnlabelled
	case actual == "":
		m.Method = MethodMissing
	case expected == actual:
		m.Score = 1.0
		m.Method = MethodExact
	default:
		m.Method = MethodNoMatch
	}
	return m
}

// compareText performs field comparison with fuzzy matching
func compareText(expected, actual string) FieldMatch {
	m := FieldMatch{Expected: expected, Actual: actual}

	if expected == "" {
		m.Method = MethodUnlabelled
		return m
	}
	if actual == "" {
		m.Method = MethodMissing
		return m
	}

	expNorm := normalizeForComparison(expected)
	actNorm := normalizeForComparison(actual)

	if expNorm == actNorm {
		m.Score = 1.0
		m.Method = MethodExact
		return m
	}

	if expNorm != "" && actNorm != "" && (strings.Contains(actNorm, expNorm) || strings.Contains(expNorm, actNorm)) {
		m.Score = 0.8
		m.Method = MethodSubstring
		return m
	}

	m.Score = calculateSimilarity(expNorm, actNorm)
	switch {
	case m.Score > 0.7:
		m.Method = MethodFuzzyHigh
	case m.Score > 0.4:
		m.Method = MethodFuzzyMedium
	default:
		m.Method = MethodNoMatch
	}
	return m
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// normalizeForComparison lowercases, strips punctuation and collapses whitespace
func normalizeForComparison(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// calculateSimilarity calculates similarity ratio (0.0 to 1.0) using Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	maxLen := max(len(r1), len(r2))
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two rune slices
func levenshteinDistance(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
