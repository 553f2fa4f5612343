// Package studio runs the content workflow for a saved session: every step
// reads the session, calls the generators and saves the result.
package studio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"StoryStudio/internal/content"
	"StoryStudio/internal/export"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/processors"
	"StoryStudio/internal/storage"
)

// ErrBlockOutOfRange is returned when a rewrite targets a block that does not exist
var ErrBlockOutOfRange = errors.New("story block index out of range")

// TitleSource returns popular video titles for a query
type TitleSource interface {
	TopTitles(ctx context.Context, query string, n int) ([]string, error)
}

// Service runs workflow steps against a session store
type Service struct {
	gen         *content.Generator
	store       storage.SessionStore
	files       *processors.FileProcessor
	research    TitleSource
	researchN   int
	uploadChunk int
}

// Option configures a Service
type Option func(*Service)

// WithResearch enables SEO reference titles from src, n per lookup
func WithResearch(src TitleSource, n int) Option {
	return func(s *Service) {
		s.research = src
		s.researchN = n
	}
}

// WithUploadChunkChars sets the chunk size for uploaded stories
func WithUploadChunkChars(n int) Option {
	return func(s *Service) {
		s.uploadChunk = n
	}
}

// NewService creates a workflow service
func NewService(gen *content.Generator, store storage.SessionStore, opts ...Option) *Service {
	s := &Service{
		gen:   gen,
		store: store,
		files: processors.NewFileProcessor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create saves a new session for the project
func (s *Service) Create(ctx context.Context, p content.Project) (*storage.SavedSession, error) {
	if strings.TrimSpace(p.BookTitle) == "" {
		return nil, content.ErrMissingTitle
	}
	sess := &storage.SavedSession{Project: p}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	logging.Info("Created session %s for %q", sess.ID, p.BookTitle)
	return sess, nil
}

// Get loads a session
func (s *Service) Get(ctx context.Context, id string) (*storage.SavedSession, error) {
	return s.store.Get(ctx, id)
}

// List returns all sessions, newest first
func (s *Service) List(ctx context.Context) ([]*storage.SavedSession, error) {
	return s.store.List(ctx)
}

// Delete removes a session
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Outline generates the outline and cast. Story and script from an earlier
// outline no longer match, so they are cleared.
func (s *Service) Outline(ctx context.Context, sess *storage.SavedSession) error {
	outline, err := s.gen.GenerateOutline(ctx, sess.Project)
	if err != nil {
		return err
	}
	meta := outline.Metadata
	sess.Outline = outline.Chapters
	sess.StoryMetadata = &meta
	sess.StoryBlocks = nil
	sess.ScriptBlocks = nil
	return s.store.Save(ctx, sess)
}

func (s *Service) outline(sess *storage.SavedSession) content.Outline {
	out := content.Outline{Chapters: sess.Outline}
	if sess.StoryMetadata != nil {
		out.Metadata = *sess.StoryMetadata
	}
	return out
}

// Story writes every chapter of the outline. Chapters finished before a
// failure are saved so the work is not lost.
func (s *Service) Story(ctx context.Context, sess *storage.SavedSession, progress content.ProgressFunc) error {
	if len(sess.Outline) == 0 {
		return content.ErrEmptyOutline
	}
	blocks, err := s.gen.GenerateStory(ctx, s.outline(sess), sess.Project, progress)
	sess.StoryBlocks = blocks
	sess.ScriptBlocks = nil
	return s.saveAfter(ctx, sess, err)
}

// Review writes the narration script for every story block
func (s *Service) Review(ctx context.Context, sess *storage.SavedSession, progress content.ProgressFunc) error {
	if len(sess.StoryBlocks) == 0 {
		return content.ErrNoStory
	}
	script, err := s.gen.GenerateReviewScript(ctx, sess.StoryBlocks, sess.Project, progress)
	sess.ScriptBlocks = script
	return s.saveAfter(ctx, sess, err)
}

// SEO generates SEO metadata, using ranking titles as references when research is enabled.
// A failed lookup only drops the references.
func (s *Service) SEO(ctx context.Context, sess *storage.SavedSession) error {
	var refs []string
	if s.research != nil && s.researchN > 0 && strings.TrimSpace(sess.BookTitle) != "" {
		titles, err := s.research.TopTitles(ctx, sess.BookTitle, s.researchN)
		if err != nil {
			logging.Warn("SEO research failed, continuing without references: %v", err)
		} else {
			refs = titles
		}
	}

	seo, err := s.gen.GenerateSEO(ctx, sess.Project, refs)
	if err != nil {
		return err
	}
	sess.SEO = &seo
	return s.store.Save(ctx, sess)
}

// Prompts generates video prompts and thumbnail captions together
func (s *Service) Prompts(ctx context.Context, sess *storage.SavedSession) error {
	prompts, thumbs, err := s.gen.GeneratePrompts(ctx, sess.Project)
	if err != nil {
		return err
	}
	sess.VideoPrompts = prompts
	sess.ThumbTextIdeas = thumbs
	return s.store.Save(ctx, sess)
}

// Rewrite rewrites one story block, addressed by its position starting at 0
func (s *Service) Rewrite(ctx context.Context, sess *storage.SavedSession, pos int, feedback string) error {
	if len(sess.StoryBlocks) == 0 {
		return content.ErrNoStory
	}
	if pos < 0 || pos >= len(sess.StoryBlocks) {
		return fmt.Errorf("%w: %d (story has %d blocks)", ErrBlockOutOfRange, pos, len(sess.StoryBlocks))
	}
	text, err := s.gen.RewriteStoryBlock(ctx, sess.StoryBlocks[pos].Content, feedback, sess.StoryMetadata, sess.Project)
	if err != nil {
		return err
	}
	sess.StoryBlocks[pos].Content = text
	return s.store.Save(ctx, sess)
}

// RewriteAll rewrites every block and returns the positions that failed and were kept
func (s *Service) RewriteAll(ctx context.Context, sess *storage.SavedSession, feedback string, progress content.ProgressFunc) ([]int, error) {
	blocks, failed, err := s.gen.RewriteAll(ctx, sess.StoryBlocks, feedback, sess.StoryMetadata, sess.Project, progress)
	if errors.Is(err, content.ErrEmptyFeedback) || errors.Is(err, content.ErrNoStory) {
		return nil, err
	}
	sess.StoryBlocks = blocks
	return failed, s.saveAfter(ctx, sess, err)
}

// Evaluate critiques the story and keeps the result on the session
func (s *Service) Evaluate(ctx context.Context, sess *storage.SavedSession) (string, error) {
	result, err := s.gen.EvaluateStory(ctx, sess.StoryBlocks, sess.Project)
	if err != nil {
		return "", err
	}
	sess.EvaluationResult = result
	return result, s.store.Save(ctx, sess)
}

// Upload replaces the story with text extracted from a file. The session takes
// the file name as its book title, and the outline, cast and script are cleared.
func (s *Service) Upload(ctx context.Context, sess *storage.SavedSession, filename string, data []byte) error {
	text, err := s.files.ProcessFile(data, "", filename)
	if err != nil {
		return err
	}
	blocks, err := processors.UploadStory(text, sess.Language, s.uploadChunk)
	if err != nil {
		return err
	}

	if title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)); title != "" {
		sess.BookTitle = title
	}
	sess.StoryBlocks = blocks
	sess.Outline = nil
	sess.StoryMetadata = nil
	sess.ScriptBlocks = nil
	logging.Info("Uploaded %s as %d story blocks", filename, len(blocks))
	return s.store.Save(ctx, sess)
}

// Export writes one table of the session as CSV into dir and returns the file path
func (s *Service) Export(sess *storage.SavedSession, kind export.Kind, dir string) (string, error) {
	var rows [][]string
	switch kind {
	case export.KindScript:
		rows = export.ScriptRows(sess.ScriptBlocks)
	case export.KindStory:
		rows = export.StoryRows(sess.StoryBlocks)
	case export.KindPrompts:
		rows = export.PromptRows(sess.VideoPrompts)
	default:
		return "", fmt.Errorf("unknown export kind %q", kind)
	}
	return export.WriteFile(dir, kind, sess.BookTitle, rows)
}

// saveAfter persists partial results of a step, returning the step error first
func (s *Service) saveAfter(ctx context.Context, sess *storage.SavedSession, stepErr error) error {
	saveCtx := ctx
	if stepErr != nil && ctx.Err() != nil {
		saveCtx = context.WithoutCancel(ctx)
	}
	if err := s.store.Save(saveCtx, sess); err != nil {
		if stepErr != nil {
			logging.Error("Failed to save partial results: %v", err)
			return stepErr
		}
		return err
	}
	return stepErr
}
