package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var whitespace = regexp.MustCompile(`\s+`)

// YearPrefix parses the leading integer of a date string such as "2020-05-01".
// Leading whitespace and a sign are accepted; anything after the digits is ignored.
func YearPrefix(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
		if digits > 9 {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// CollapseSpace trims the input and squeezes internal whitespace runs.
func CollapseSpace(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(input, " "))
}

// Truncate shortens text to at most maxRunes runes, cutting on a word boundary when
// one exists and appending an ellipsis. maxRunes <= 0 disables truncation.
func Truncate(text string, maxRunes int) string {
	text = CollapseSpace(text)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "..."
}

// HasHTTPScheme is the lexical check used for the external link affordance: the
// value only has to start with "http".
func HasHTTPScheme(raw string) bool {
	return strings.HasPrefix(raw, "http")
}

// IsAbsoluteHTTPURL is the stricter write-time check for externalUrl.
func IsAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// NormalizeTags trims every comma-separated tag and drops empty ones.
func NormalizeTags(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := CollapseSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, ", ")
}

// BuildDocumentID hashes the most stable fields to form deterministic IDs, so a
// record imported twice lands on the same document.
func BuildDocumentID(docType, title, date string) string {
	s := sha1.Sum([]byte(docType + "|" + strings.ToLower(CollapseSpace(title)) + "|" + date))
	return hex.EncodeToString(s[:])
}
