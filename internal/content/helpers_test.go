package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChapterCount(t *testing.T) {
	assert.Equal(t, 18, ChapterCount(240, true))
	assert.Equal(t, 96, ChapterCount(240, false))
	assert.Equal(t, 4, ChapterCount(10, false))
	assert.Equal(t, 3, ChapterCount(5, false))
	assert.Equal(t, 3, ChapterCount(0, false))
}

func TestTargetChars(t *testing.T) {
	lo, hi := TargetChars(30, true)
	assert.Equal(t, 40000, lo)
	assert.Equal(t, 60000, hi)

	lo, hi = TargetChars(45, false)
	assert.Equal(t, 45000, lo)
	assert.Equal(t, 45000, hi)
}

func TestDurationLabel(t *testing.T) {
	assert.Equal(t, "4H00M", DurationLabel(240))
	assert.Equal(t, "0H45M", DurationLabel(45))
	assert.Equal(t, "1H05M", DurationLabel(65))
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6) + "\n" + strings.Repeat("c", 2)
	chunks := ChunkText(text, 10)
	assert.Equal(t, []string{"aaaaaa\n", "bbbbbb\ncc\n"}, chunks)

	assert.Empty(t, ChunkText("\n \n", 10))
	assert.Equal(t, []string{strings.Repeat("x", 25) + "\n"}, ChunkText(strings.Repeat("x", 25), 10))
}

func TestChunkTextCountsRunes(t *testing.T) {
	para := strings.Repeat("ệ", 5)
	chunks := ChunkText(para+"\n"+para, 12)
	assert.Len(t, chunks, 1)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "dac-nhan-tam", Slugify("Đắc Nhân Tâm"))
	assert.Equal(t, "the-little-prince-1943", Slugify("  The Little Prince (1943)! "))
	assert.Equal(t, "ndgroup", Slugify(""))
	assert.Equal(t, "ndgroup", Slugify("!!!"))
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage(" EN ")
	assert.NoError(t, err)
	assert.Equal(t, LanguageEnglish, lang)

	_, err = ParseLanguage("fr")
	assert.Error(t, err)
}
