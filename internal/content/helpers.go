package content

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	autoChapterCount  = 18
	minChapterCount   = 3
	minutesPerChapter = 2.5

	autoMinChars   = 40000
	autoMaxChars   = 60000
	charsPerMinute = 1000

	defaultSlug = "ndgroup"
)

// ChapterCount is 18 in auto mode, otherwise one chapter per 2.5 minutes with a floor of 3
func ChapterCount(durationMin int, auto bool) int {
	if auto {
		return autoChapterCount
	}
	n := int(math.Ceil(float64(durationMin) / minutesPerChapter))
	if n < minChapterCount {
		return minChapterCount
	}
	return n
}

// TargetChars returns the script length range aimed for by the outline
func TargetChars(durationMin int, auto bool) (int, int) {
	if auto {
		return autoMinChars, autoMaxChars
	}
	n := durationMin * charsPerMinute
	return n, n
}

// DurationLabel formats minutes as "4H00M"
func DurationLabel(durationMin int) string {
	return fmt.Sprintf("%dH%02dM", durationMin/60, durationMin%60)
}

// ChunkText groups paragraphs into chunks of about maxChars characters.
// A paragraph is never split, so one long paragraph can exceed the limit.
func ChunkText(text string, maxChars int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, para := range strings.Split(text, "\n") {
		paraLen := utf8.RuneCountInString(para)
		if currentLen+paraLen > maxChars && currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(para)
		current.WriteByte('\n')
		currentLen += paraLen + 1
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}
	return chunks
}

var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, strips diacritics and joins alphanumeric runs with dashes
func Slugify(s string) string {
	if strings.TrimSpace(s) == "" {
		return defaultSlug
	}
	folded, _, err := transform.String(slugFolder, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	folded = strings.NewReplacer("đ", "d", "Đ", "d").Replace(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}
