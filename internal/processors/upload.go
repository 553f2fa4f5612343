package processors

import (
	"fmt"
	"strings"

	"StoryStudio/internal/config"
	"StoryStudio/internal/content"
)

// UploadStory splits uploaded text into story blocks titled
// "Phần N (Upload)" or "Part N (Upload)". maxChars <= 0 uses the default chunk size.
func UploadStory(text string, lang content.Language, maxChars int) ([]content.StoryBlock, error) {
	if maxChars <= 0 {
		maxChars = config.DefaultUploadChunkChars
	}
	if strings.TrimSpace(text) == "" {
		return nil, content.ErrNoStory
	}

	label := "Phần"
	if lang == content.LanguageEnglish {
		label = "Part"
	}

	chunks := content.ChunkText(text, maxChars)
	blocks := make([]content.StoryBlock, 0, len(chunks))
	for i, chunk := range chunks {
		blocks = append(blocks, content.StoryBlock{
			Index:   i + 1,
			Title:   fmt.Sprintf("%s %d (Upload)", label, i+1),
			Content: chunk,
		})
	}
	return blocks, nil
}
