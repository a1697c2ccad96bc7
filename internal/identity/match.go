package identity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

const (
	// minFuzzyNameLen is the shortest normalized name eligible for
	// substring or edit-distance comparison.
	minFuzzyNameLen = 4

	// maxNameDistance is the Levenshtein threshold for a possible match.
	maxNameDistance = 2

	// minPhoneDigits guards against collisions on short or partial numbers.
	minPhoneDigits = 7
)

// NamesMatch reports whether two raw names plausibly denote the same
// person. Symmetric by construction: equality after normalization, a
// substring relation (shorter side at least 4 runes), or edit distance
// of at most 2 when both sides have at least 4 runes.
func NamesMatch(a, b string) bool {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	shorter, longer := na, nb
	if utf8.RuneCountInString(nb) < utf8.RuneCountInString(na) {
		shorter, longer = nb, na
	}
	if utf8.RuneCountInString(shorter) >= minFuzzyNameLen && strings.Contains(longer, shorter) {
		return true
	}
	if utf8.RuneCountInString(shorter) >= minFuzzyNameLen &&
		utf8.RuneCountInString(longer) >= minFuzzyNameLen &&
		levenshtein.ComputeDistance(na, nb) <= maxNameDistance {
		return true
	}

	return false
}

// ExactMatch compares two contacts on their exact-key fields. Email
// equality wins over phone equality when both hold.
func ExactMatch(a, b *model.Contact) (Evidence, bool) {
	ea := NormalizeEmail(a.Email)
	eb := NormalizeEmail(b.Email)
	if ea != "" && ea == eb {
		return ExactEmail(), true
	}

	pa := NormalizePhone(a.Phone)
	pb := NormalizePhone(b.Phone)
	if pa != "" && pa == pb && len(phoneDigits(pa)) >= minPhoneDigits {
		return ExactPhone(), true
	}

	return Evidence{}, false
}

// Match decides whether two contacts denote the same person. The fuzzy
// name rule is only consulted for pairs without an exact match.
func Match(a, b *model.Contact) (Evidence, bool) {
	if ev, ok := ExactMatch(a, b); ok {
		return ev, true
	}
	if NamesMatch(a.Name, b.Name) {
		return PossibleName(), true
	}
	return Evidence{}, false
}
