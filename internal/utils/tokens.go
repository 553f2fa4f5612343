package utils

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"StoryStudio/internal/logging"
)

const tokenEncoding = "o200k_base"

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func loadEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		tke, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			logging.Warn("Failed to get %s encoding: %v, falling back to rough estimate", tokenEncoding, err)
			return
		}
		encoding = tke
	})
	return encoding
}

// EstimateTokenCountFromText counts tokens of text with the o200k_base encoding.
// When the encoding cannot be loaded it falls back to len/4.
func EstimateTokenCountFromText(text string) int {
	if text == "" {
		return 0
	}
	tke := loadEncoding()
	if tke == nil {
		return len(text) / 4
	}
	return len(tke.Encode(text, nil, nil))
}

const truncationNotice = "... (truncated)"

// TruncateToTokens shortens text to about maxTokens tokens, cutting at a word
// boundary when one is close. count may be nil to use EstimateTokenCountFromText.
func TruncateToTokens(text string, maxTokens int, count func(string) int) string {
	if count == nil {
		count = EstimateTokenCountFromText
	}
	tokens := count(text)
	if tokens <= maxTokens {
		return text
	}

	runes := []rune(text)
	target := int(float64(len(runes))*float64(maxTokens)/float64(tokens)) - len(truncationNotice)
	if target <= 0 {
		return truncationNotice
	}

	truncated := string(runes[:target])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return truncated + truncationNotice
}
