package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryStudio/internal/content"
)

func TestWriteCSVQuotesEveryCell(t *testing.T) {
	var buf bytes.Buffer
	rows := PromptRows([]string{`a "quoted" prompt`, "line1\nline2"})
	require.NoError(t, WriteCSV(&buf, rows))

	want := "\uFEFF" +
		`"STT","Prompt"` + "\r\n" +
		`"1","a ""quoted"" prompt"` + "\r\n" +
		"\"2\",\"line1\nline2\""
	assert.Equal(t, want, buf.String())
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, buf.Bytes()[:3])
}

func TestWriteCSVRejectsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, StoryRows(nil)), ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestRowsHeaders(t *testing.T) {
	script := ScriptRows([]content.ScriptBlock{{Index: 2, Chapter: "Mở đầu", Text: "Xin chào"}})
	assert.Equal(t, []string{"STT", "Chương", "Review Script"}, script[0])
	assert.Equal(t, []string{"2", "Mở đầu", "Xin chào"}, script[1])

	story := StoryRows([]content.StoryBlock{{Index: 1, Title: "Phần 1 (Upload)", Content: "abc"}})
	assert.Equal(t, []string{"STT", "Chương", "Nội dung Truyện"}, story[0])
	assert.Equal(t, []string{"1", "Phần 1 (Upload)", "abc"}, story[1])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "review_dac-nhan-tam.csv", Filename(KindScript, "Đắc Nhân Tâm"))
	assert.Equal(t, "truyen_ndgroup.csv", Filename(KindStory, ""))
	assert.Equal(t, "prompts_the-book.csv", Filename(KindPrompts, "The Book!"))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, KindPrompts, "My Book", PromptRows([]string{"p1"}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts_my-book.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFF\"STT\",\"Prompt\"\r\n\"1\",\"p1\"", string(data))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Story")
	require.NoError(t, err)
	assert.Equal(t, KindStory, k)
	_, err = ParseKind("audio")
	assert.Error(t, err)
}

func TestTextExports(t *testing.T) {
	story := StoryText([]content.StoryBlock{
		{Title: "Chương 1", Content: " Một \n"},
		{Title: "Chương 2", Content: "Hai"},
	})
	assert.Equal(t, "Chương 1\n\nMột\n\nChương 2\n\nHai", story)

	script := ScriptText([]content.ScriptBlock{{Text: "A "}, {Text: "B"}})
	assert.Equal(t, "A\n\nB", script)
}

func TestWriteTextFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteTextFile(dir, KindStory, "Sách Hay", "nội dung")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "truyen_sach-hay.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "nội dung", string(data))

	_, err = WriteTextFile(dir, KindScript, "x", " ")
	assert.ErrorIs(t, err, ErrNothingToExport)
}
