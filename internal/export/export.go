// Package export writes story, script and prompt tables as spreadsheet-friendly
// CSV (UTF-8 BOM, every cell quoted, CRLF rows) and as plain text.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"StoryStudio/internal/content"
)

// ErrNothingToExport is returned when the table has no data rows
var ErrNothingToExport = errors.New("nothing to export")

const bom = "\uFEFF"

// Kind selects which table is exported
type Kind string

const (
	KindScript  Kind = "review"
	KindStory   Kind = "truyen"
	KindPrompts Kind = "prompts"
)

// ParseKind accepts the table names used on the command line
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "review", "script":
		return KindScript, nil
	case "truyen", "story":
		return KindStory, nil
	case "prompts", "prompt":
		return KindPrompts, nil
	}
	return "", fmt.Errorf("unknown export kind %q (expected script, story or prompts)", s)
}

// Filename returns "<kind>_<slug>.csv" for a book title
func Filename(kind Kind, bookTitle string) string {
	return fmt.Sprintf("%s_%s.csv", kind, content.Slugify(bookTitle))
}

// ScriptRows builds the review script table
func ScriptRows(blocks []content.ScriptBlock) [][]string {
	rows := [][]string{{"STT", "Chương", "Review Script"}}
	for _, b := range blocks {
		rows = append(rows, []string{strconv.Itoa(b.Index), b.Chapter, b.Text})
	}
	return rows
}

// StoryRows builds the story table
func StoryRows(blocks []content.StoryBlock) [][]string {
	rows := [][]string{{"STT", "Chương", "Nội dung Truyện"}}
	for _, b := range blocks {
		rows = append(rows, []string{strconv.Itoa(b.Index), b.Title, b.Content})
	}
	return rows
}

// PromptRows builds the video prompt table, numbered from 1
func PromptRows(prompts []string) [][]string {
	rows := [][]string{{"STT", "Prompt"}}
	for i, p := range prompts {
		rows = append(rows, []string{strconv.Itoa(i + 1), p})
	}
	return rows
}

func quoteCell(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// WriteCSV writes rows with a leading BOM, every cell quoted and rows joined by CRLF
func WriteCSV(w io.Writer, rows [][]string) error {
	if len(rows) < 2 {
		return ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString(bom)
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\r\n")
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCell(cell))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile writes the table into dir under its standard file name and returns the path
func WriteFile(dir string, kind Kind, bookTitle string, rows [][]string) (string, error) {
	if len(rows) < 2 {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(kind, bookTitle))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("could not close %s: %w", path, err)
	}
	return path, nil
}

// WriteTextFile writes text into dir as "<kind>_<slug>.txt" and returns the path
func WriteTextFile(dir string, kind Kind, bookTitle, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create export directory: %w", err)
	}
	name := strings.TrimSuffix(Filename(kind, bookTitle), ".csv") + ".txt"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	return path, nil
}

// StoryText renders the story as plain text, one titled section per block
func StoryText(blocks []content.StoryBlock) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.Title)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(block.Content))
	}
	return b.String()
}

// ScriptText renders the narration script as plain text, ready for text-to-speech
func ScriptText(blocks []content.ScriptBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, strings.TrimSpace(block.Text))
	}
	return strings.Join(parts, "\n\n")
}
