// Package identity implements the matching core: canonical keys for
// identity fields, pairwise match decisions, and duplicate clustering.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes to NFD, drops combining marks, recomposes.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a person name for matching:
//  1. Lowercase
//  2. Strip diacritics (José -> jose)
//  3. Drop every rune that is not a letter or a space
//  4. Collapse runs of whitespace and trim
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	if stripped, _, err := transform.String(stripDiacritics, name); err == nil {
		name = stripped
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizePhone reduces a phone number to its digit string. A leading +
// on the original input is preserved, so "+14155550100" and "14155550100"
// remain distinct keys. No locale-aware parsing is attempted.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(phone, "+") {
		return "+" + digits
	}
	return digits
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// phoneDigits returns just the digits of a normalized phone key.
func phoneDigits(normalized string) string {
	return strings.TrimPrefix(normalized, "+")
}
