// Package fields guesses artist, title and year from raw sleeve OCR text.
package fields

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/models"
)

var (
	yearRe   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	letterRe = regexp.MustCompile(`[A-Za-z]`)
)

// Guesser scores OCR lines with configurable weights
type Guesser struct {
	cfg         config.HeuristicsConfig
	boilerplate *regexp.Regexp
}

// NewGuesser compiles the boilerplate filter from cfg
func NewGuesser(cfg config.HeuristicsConfig) (*Guesser, error) {
	g := &Guesser{cfg: cfg}
	if len(cfg.Boilerplate) > 0 {
		re, err := regexp.Compile(`(?i)\b(` + strings.Join(cfg.Boilerplate, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("invalid boilerplate pattern: %w", err)
		}
		g.boilerplate = re
	}
	return g, nil
}

// Default returns a guesser with the stock heuristics
func Default() *Guesser {
	g, err := NewGuesser(config.DefaultHeuristics())
	if err != nil {
		panic(err)
	}
	return g
}

type candidate struct {
	score int
	line  string
}

// Guess extracts best-effort fields from text. Empty text yields empty fields.
func (g *Guesser) Guess(text string) models.Fields {
	var out models.Fields

	lines := g.clean(text)

	if m := yearRe.FindStringSubmatch(strings.Join(lines, " ")); m != nil {
		out.Year, _ = strconv.Atoi(m[1])
	}

	top := g.rank(lines)
	switch {
	case len(top) == 1:
		out.Title = truncate(top[0], g.cfg.MaxFieldLength)
	case len(top) >= 2:
		out.Artist = truncate(top[0], g.cfg.MaxFieldLength)
		out.Title = truncate(top[1], g.cfg.MaxFieldLength)
	}

	return out
}

// clean splits text into lines, collapses whitespace and drops short lines
func (g *Guesser) clean(text string) []string {
	var lines []string
	for _, ln := range splitLines(text) {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln == "" || utf8.RuneCountInString(ln) < g.cfg.MinLineLength {
			continue
		}
		lines = append(lines, ln)
	}
	return lines
}

// rank scores the leading lines and returns the strongest, best first
func (g *Guesser) rank(lines []string) []string {
	if len(lines) > g.cfg.MaxCandidateLines {
		lines = lines[:g.cfg.MaxCandidateLines]
	}

	var strong []candidate
	for _, ln := range lines {
		if g.boilerplate != nil && g.boilerplate.MatchString(ln) {
			continue
		}
		strong = append(strong, candidate{score: g.score(ln), line: ln})
	}

	// ties keep their original line order
	slices.SortStableFunc(strong, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	top := make([]string, 0, g.cfg.TopLines)
	for i := 0; i < len(strong) && i < g.cfg.TopLines; i++ {
		top = append(top, strong[i].line)
	}
	return top
}

func (g *Guesser) score(ln string) int {
	score := 0
	for _, r := range ln {
		if unicode.IsUpper(r) {
			score += g.cfg.UppercaseWeight
		}
	}
	if utf8.RuneCountInString(ln) >= g.cfg.LongLineLength {
		score += g.cfg.LongLineBonus
	}
	if letterRe.MatchString(ln) {
		score += g.cfg.LetterBonus
	}
	return score
}

// splitLines breaks text on every line boundary character
func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return true
		}
		return false
	})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
