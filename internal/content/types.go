package content

import (
	"fmt"
	"strings"
)

// Language is the output language of every generated artifact
type Language string

const (
	LanguageVietnamese Language = "vi"
	LanguageEnglish    Language = "en"
)

// ParseLanguage accepts "vi" or "en" in any case
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageVietnamese:
		return LanguageVietnamese, nil
	case LanguageEnglish:
		return LanguageEnglish, nil
	default:
		return "", fmt.Errorf("unsupported language %q (expected vi or en)", s)
	}
}

func (l Language) isVi() bool {
	return l != LanguageEnglish
}

// OutlineItem is one chapter of the outline. Index starts at 1.
type OutlineItem struct {
	Index   int      `json:"index"`
	Title   string   `json:"title"`
	Focus   string   `json:"focus"`
	Actions []string `json:"actions"`
}

// StoryMetadata fixes character names so every chapter uses the same cast
type StoryMetadata struct {
	FemaleLead string `json:"femaleLead"`
	MaleLead   string `json:"maleLead"`
	Villain    string `json:"villain"`
}

// Outline is the structured result of outline generation
type Outline struct {
	Chapters []OutlineItem `json:"chapters"`
	Metadata StoryMetadata `json:"metadata"`
}

// StoryBlock is the prose of one chapter, generated or uploaded
type StoryBlock struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ScriptBlock is the narration script written for one story block
type ScriptBlock struct {
	Index   int    `json:"index"`
	Chapter string `json:"chapter"`
	Text    string `json:"text"`
	Chars   int    `json:"chars"`
	Tokens  int    `json:"tokens,omitempty"`
}

// SEOResult is the YouTube metadata package for a video
type SEOResult struct {
	Titles      []string `json:"titles"`
	Hashtags    []string `json:"hashtags"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

// Project holds the inputs shared by all generators for one book
type Project struct {
	BookTitle    string   `json:"bookTitle"`
	Idea         string   `json:"bookIdea"`
	ChannelName  string   `json:"channelName"`
	MCName       string   `json:"mcName"`
	Language     Language `json:"language"`
	DurationMin  int      `json:"durationMin"`
	AutoDuration bool     `json:"isAutoDuration"`
	FrameRatio   string   `json:"frameRatio"`
	Model        string   `json:"model"`
}

// ChapterCount returns the number of chapters the outline should have
func (p Project) ChapterCount() int {
	return ChapterCount(p.DurationMin, p.AutoDuration)
}

// ProgressFunc is called after each step of a sequential run
type ProgressFunc func(done, total int, label string)
