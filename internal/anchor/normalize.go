package anchor

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds text so that line-wrapping and font-substitution artifacts
// in extracted PDF text don't defeat matching: NFKC decomposition (ligatures
// like ﬁ become fi), lowercase, and whitespace runs collapsed to a single
// space. Idempotent.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
