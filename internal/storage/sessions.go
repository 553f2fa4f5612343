package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"StoryStudio/internal/content"
)

var (
	// ErrSessionNotFound is returned when no session has the requested ID
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptySession is returned when saving a session without a book title
	ErrEmptySession = errors.New("session has no book title")
)

// StorageError records the operation and session that failed
type StorageError struct {
	Op  string
	ID  string
	Err error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s session %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s sessions: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SavedSession is everything produced for one book, saved between runs
type SavedSession struct {
	ID           string `json:"id"`
	LastModified int64  `json:"lastModified"` // unix milliseconds

	content.Project
	BookImage     string `json:"bookImage,omitempty"`
	ChaptersCount int    `json:"chaptersCount"`

	StoryMetadata    *content.StoryMetadata `json:"storyMetadata,omitempty"`
	Outline          []content.OutlineItem  `json:"outline"`
	StoryBlocks      []content.StoryBlock   `json:"storyBlocks"`
	ScriptBlocks     []content.ScriptBlock  `json:"scriptBlocks"`
	SEO              *content.SEOResult     `json:"seo"`
	VideoPrompts     []string               `json:"videoPrompts"`
	ThumbTextIdeas   []string               `json:"thumbTextIdeas"`
	EvaluationResult string                 `json:"evaluationResult,omitempty"`
}

// SessionStore persists sessions. List returns the newest first.
type SessionStore interface {
	Save(ctx context.Context, s *SavedSession) error
	Get(ctx context.Context, id string) (*SavedSession, error)
	List(ctx context.Context) ([]*SavedSession, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewSessionID returns a fresh random session ID
func NewSessionID() string {
	return uuid.NewString()
}

// prepareForSave assigns an ID and timestamp, rejecting sessions without a title
func prepareForSave(s *SavedSession) error {
	if s == nil || strings.TrimSpace(s.BookTitle) == "" {
		return &StorageError{Op: "save", Err: ErrEmptySession}
	}
	if s.ID == "" {
		s.ID = NewSessionID()
	}
	s.LastModified = time.Now().UnixMilli()
	s.ChaptersCount = s.Project.ChapterCount()
	return nil
}

func sortNewestFirst(sessions []*SavedSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastModified > sessions[j].LastModified
	})
}

// OpenSessionStore returns a Postgres store when dbURL is set, otherwise a JSON file store at path
func OpenSessionStore(ctx context.Context, dbURL, path string) (SessionStore, error) {
	if dbURL == "" {
		return NewFileSessionStore(path)
	}
	db, err := GetDatabase(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := InitializeAllTables(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return NewPostgresSessionStore(db)
}
