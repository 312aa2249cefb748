package errors

import (
	"sort"
	"strings"
)

// editDistance computes the Levenshtein distance between a and b using a
// single rolling row.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = cur
		}
	}
	return row[len(rb)]
}

// suggestionThreshold is the largest edit distance worth suggesting for an
// input of n runes.
func suggestionThreshold(n int) int {
	switch {
	case n >= 7:
		return 3
	case n >= 4:
		return 2
	default:
		return 1
	}
}

// Suggest returns up to n candidates closest to input, nearest first.
// Unit symbols are case sensitive ("mm" vs "Mm"), so case differences count
// as edits. Exact matches are never suggested.
func Suggest(input string, candidates []string, n int) []string {
	if input == "" || n <= 0 {
		return nil
	}
	type match struct {
		value    string
		distance int
	}
	limit := suggestionThreshold(len([]rune(input)))
	var matches []match
	for _, c := range candidates {
		d := editDistance(input, c)
		if d == 0 {
			continue
		}
		// A case-insensitive hit is the strongest suggestion.
		if strings.EqualFold(input, c) {
			d = 0
		}
		if d <= limit {
			matches = append(matches, match{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})
	var out []string
	for i := 0; i < len(matches) && i < n; i++ {
		out = append(out, matches[i].value)
	}
	return out
}

// NewUnknownUnit creates an unknown-unit error with a "did you mean" hint.
func NewUnknownUnit(symbol string, known []string) *CaliperError {
	err := New("DEF-0005", map[string]any{"Symbol": symbol})
	if s := Suggest(symbol, known, 1); len(s) > 0 {
		err.Hints = append(err.Hints, "Did you mean `"+s[0]+"`?")
	}
	return err
}
