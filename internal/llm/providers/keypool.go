package providers

import (
	"regexp"
	"strings"
)

// KeyMatcher extracts a well-formed key from one line of input, or returns ""
type KeyMatcher func(line string) string

// Google keys are "AIza" followed by 35 base64url characters
var geminiKeyPattern = regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)

// MatchGeminiKey finds a Google API key anywhere in line
func MatchGeminiKey(line string) string {
	return geminiKeyPattern.FindString(line)
}

// ParseKeyPool splits raw into an ordered, de-duplicated list of keys.
// Each line contributes the substring accepted by match when there is one,
// otherwise the whole line stripped of whitespace, quotes and non-printable
// characters. Line order is the failover order.
func ParseKeyPool(raw string, match KeyMatcher) []string {
	if raw == "" {
		return nil
	}

	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' })
	pool := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		key := ""
		if match != nil {
			key = match(line)
		}
		if key == "" {
			key = cleanKey(line)
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		pool = append(pool, key)
	}
	return pool
}

// cleanKey keeps only printable ASCII outside whitespace and quotes
func cleanKey(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if r < 0x21 || r > 0x7e || r == '"' || r == '\'' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskKey shortens a key for logs, keeping the first and last four characters
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}
