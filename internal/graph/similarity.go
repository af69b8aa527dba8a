package graph

import (
	"strings"
	"unicode"
)

// Similarity estimates how related two nodes are when no explicit edge
// connects them. Signals: same file +0.3, same type +0.2, name token
// overlap up to +0.3, context token overlap up to +0.2. Capped at 1.0.
func Similarity(a, b *Node) float64 {
	if a == nil || b == nil {
		return 0
	}

	score := 0.0
	if a.Location.File != "" && a.Location.File == b.Location.File {
		score += 0.3
	}
	if a.Type == b.Type {
		score += 0.2
	}
	score += 0.3 * tokenOverlap(Tokenize(a.Name), Tokenize(b.Name))
	score += 0.2 * tokenOverlap(Tokenize(a.Context), Tokenize(b.Context))

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Tokenize lowercases and splits an identifier or snippet into tokens,
// breaking on non-alphanumeric characters and camelCase boundaries.
func Tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	if s == "" {
		return tokens
	}

	var cur strings.Builder
	flush := func() {
		if cur.Len() > 1 { // single characters carry no signal
			tokens[strings.ToLower(cur.String())] = true
		}
		cur.Reset()
	}

	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if unicode.IsUpper(r) && prevLower {
				flush()
			}
			cur.WriteRune(r)
			prevLower = unicode.IsLower(r)
		case unicode.IsDigit(r):
			cur.WriteRune(r)
			prevLower = false
		default:
			flush()
			prevLower = false
		}
	}
	flush()
	return tokens
}

// tokenOverlap returns the shared-token count divided by the size of the
// smaller set, or 0 when either set is empty.
func tokenOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for t := range small {
		if large[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// TokensMatch reports whether two strings share at least one token.
func TokensMatch(a, b string) bool {
	return tokenOverlap(Tokenize(a), Tokenize(b)) > 0
}
