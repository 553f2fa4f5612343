package processors

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/gogits/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

const utf8BOM = "\uFEFF"

// ErrUnsupportedType is returned for uploads that are neither text nor PDF
var ErrUnsupportedType = errors.New("unsupported file type")

// FileProcessor extracts story text from uploaded files
type FileProcessor struct{}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{}
}

// ProcessFile extracts text from a PDF or text upload. contentType may be
// empty, in which case the file extension decides.
func (fp *FileProcessor) ProcessFile(data []byte, contentType, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", filename)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case strings.HasPrefix(contentType, "application/pdf") || ext == ".pdf":
		return fp.processPDF(data)
	case strings.HasPrefix(contentType, "text/") || fp.isTextFileByExtension(filename):
		return fp.processTextFile(data)
	default:
		return "", fmt.Errorf("%w: %s (expected .txt, .md or .pdf)", ErrUnsupportedType, orUnknown(contentType, ext))
	}
}

func orUnknown(contentType, ext string) string {
	if contentType != "" {
		return contentType
	}
	if ext != "" {
		return ext
	}
	return "unknown"
}

// processPDF extracts plain text from all pages
func (fp *FileProcessor) processPDF(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	textReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	var textBuffer bytes.Buffer
	if _, err := textBuffer.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	text := fp.cleanExtractedText(textBuffer.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return text, nil
}

// processTextFile decodes text, detecting the charset when it is not UTF-8
func (fp *FileProcessor) processTextFile(data []byte) (string, error) {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		text = fp.decodeLegacy(data)
	}

	text = strings.TrimPrefix(text, utf8BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in file")
	}
	return text, nil
}

func (fp *FileProcessor) decodeLegacy(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}

	decoder := fp.getDecoderForEncoding(result.Charset)
	if decoder == nil {
		return strings.ToValidUTF8(string(data), "�")
	}

	decoded, err := decoder.Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

// getDecoderForEncoding returns the decoder for a chardet charset name
func (fp *FileProcessor) getDecoderForEncoding(charset string) *encoding.Decoder {
	charset = strings.ToLower(charset)

	switch {
	case strings.Contains(charset, "utf-8"):
		return nil
	case strings.Contains(charset, "utf-16"):
		if strings.Contains(charset, "be") {
			return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		}
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()

	// Vietnamese
	case strings.Contains(charset, "windows-1258") || strings.Contains(charset, "cp1258"):
		return charmap.Windows1258.NewDecoder()

	// Western and Cyrillic
	case strings.Contains(charset, "iso-8859-1") || strings.Contains(charset, "latin-1"):
		return charmap.ISO8859_1.NewDecoder()
	case strings.Contains(charset, "iso-8859-2"):
		return charmap.ISO8859_2.NewDecoder()
	case strings.Contains(charset, "iso-8859-15"):
		return charmap.ISO8859_15.NewDecoder()
	case strings.Contains(charset, "windows-1252") || strings.Contains(charset, "cp1252"):
		return charmap.Windows1252.NewDecoder()
	case strings.Contains(charset, "windows-1251") || strings.Contains(charset, "cp1251"):
		return charmap.Windows1251.NewDecoder()

	// East Asian
	case strings.Contains(charset, "shift_jis") || strings.Contains(charset, "sjis"):
		return japanese.ShiftJIS.NewDecoder()
	case strings.Contains(charset, "euc-jp"):
		return japanese.EUCJP.NewDecoder()
	case strings.Contains(charset, "iso-2022-jp"):
		return japanese.ISO2022JP.NewDecoder()
	case strings.Contains(charset, "gb2312") || strings.Contains(charset, "gb18030"):
		return simplifiedchinese.GBK.NewDecoder()
	case strings.Contains(charset, "big5"):
		return traditionalchinese.Big5.NewDecoder()
	case strings.Contains(charset, "euc-kr"):
		return korean.EUCKR.NewDecoder()

	default:
		return nil
	}
}

// isTextFileByExtension reports whether filename looks like a manuscript
func (fp *FileProcessor) isTextFileByExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md", ".markdown":
		return true
	}
	return false
}

// cleanExtractedText trims every line and drops blank ones
func (fp *FileProcessor) cleanExtractedText(text string) string {
	lines := strings.Split(text, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}
	return strings.TrimSpace(strings.Join(cleanedLines, "\n"))
}

// GetSupportedFileTypes lists the upload formats for help output
func (fp *FileProcessor) GetSupportedFileTypes() []string {
	return []string{
		"Plain text (.txt, .text) in UTF-8, UTF-16, Windows-1258 and other detected charsets",
		"Markdown (.md, .markdown)",
		"PDF documents (.pdf)",
	}
}
