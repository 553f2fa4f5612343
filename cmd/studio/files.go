package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"StoryStudio/internal/content"
	"StoryStudio/internal/export"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/processors"
	"StoryStudio/internal/storage"
	"StoryStudio/internal/thumbnail"
)

// UploadCmd turns a manuscript into story blocks
type UploadCmd struct {
	Session  string `short:"s" long:"session" description:"session to replace the story of; a new session is created when empty"`
	Language string `short:"l" long:"language" description:"vi or en for a new session (default from config)"`
	Args     struct {
		File string `positional-arg-name:"FILE" description:".txt, .md or .pdf manuscript"`
	} `positional-args:"yes" required:"yes"`
}

func (c *UploadCmd) Execute(_ []string) error {
	data, err := os.ReadFile(c.Args.File)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", c.Args.File, err)
	}

	return run(func(ctx context.Context, a *app) error {
		var sess *storage.SavedSession
		if c.Session != "" {
			if sess, err = a.session(ctx, SessionOptions{Session: c.Session}); err != nil {
				return err
			}
		} else {
			cfg := a.cfg()
			lang, err := content.ParseLanguage(firstNonEmpty(c.Language, cfg.Language))
			if err != nil {
				return err
			}
			identity := cfg.GetIdentity(string(lang))
			title := strings.TrimSuffix(filepath.Base(c.Args.File), filepath.Ext(c.Args.File))
			sess, err = a.svc.Create(ctx, content.Project{
				BookTitle:   title,
				ChannelName: identity.ChannelName,
				MCName:      identity.MCName,
				Language:    lang,
				DurationMin: cfg.Generation.DurationMin,
				FrameRatio:  cfg.Generation.FrameRatio,
			})
			if err != nil {
				return err
			}
		}

		if err := a.svc.Upload(ctx, sess, c.Args.File, data); err != nil {
			if c.Session == "" {
				if derr := a.svc.Delete(ctx, sess.ID); derr != nil {
					logging.Warn("Failed to remove session %s after upload error: %v", sess.ID, derr)
				}
			}
			if errors.Is(err, processors.ErrUnsupportedType) {
				logging.Println("Supported uploads:")
				for _, t := range processors.NewFileProcessor().GetSupportedFileTypes() {
					logging.Println("  - %s", t)
				}
			}
			return err
		}
		logging.Println("Session %s: %d blocks uploaded from %s", sess.ID, len(sess.StoryBlocks), filepath.Base(c.Args.File))
		return nil
	})
}

// ExportCmd writes a table of the session to disk
type ExportCmd struct {
	SessionOptions
	Kind string `short:"k" long:"kind" description:"story, script or prompts" default:"script"`
	Dir  string `short:"o" long:"dir" description:"output directory (default from config)"`
	Text bool   `long:"txt" description:"write plain text instead of CSV (story and script only)"`
}

func (c *ExportCmd) Execute(_ []string) error {
	kind, err := export.ParseKind(c.Kind)
	if err != nil {
		return err
	}

	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		dir := firstNonEmpty(c.Dir, a.cfg().ExportDir)

		var path string
		if c.Text {
			switch kind {
			case export.KindStory:
				path, err = export.WriteTextFile(dir, kind, sess.BookTitle, export.StoryText(sess.StoryBlocks))
			case export.KindScript:
				path, err = export.WriteTextFile(dir, kind, sess.BookTitle, export.ScriptText(sess.ScriptBlocks))
			default:
				return fmt.Errorf("text export supports story and script only")
			}
		} else {
			path, err = a.svc.Export(sess, kind, dir)
		}
		if err != nil {
			return err
		}
		logging.Println("Wrote %s", path)
		return nil
	})
}

// SessionsCmd lists sessions, or deletes one
type SessionsCmd struct {
	Delete string `long:"delete" description:"delete the session with this ID"`
}

func (c *SessionsCmd) Execute(_ []string) error {
	return run(func(ctx context.Context, a *app) error {
		if c.Delete != "" {
			if err := a.svc.Delete(ctx, c.Delete); err != nil {
				return err
			}
			logging.Println("Deleted session %s", c.Delete)
			return nil
		}

		list, err := a.svc.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			logging.Println("No saved sessions")
			return nil
		}
		for _, s := range list {
			modified := time.UnixMilli(s.LastModified).Format("2006-01-02 15:04")
			logging.Println("%s  %s  [%s] %s  outline:%d story:%d script:%d",
				s.ID, modified, s.Language, s.BookTitle, len(s.Outline), len(s.StoryBlocks), len(s.ScriptBlocks))
		}
		return nil
	})
}

// ThumbnailCmd renders a caption preview
type ThumbnailCmd struct {
	SessionOptions
	Idea       int    `long:"idea" description:"thumbnail caption number starting at 1" default:"1"`
	Text       string `long:"text" description:"caption text instead of a generated idea"`
	Background string `long:"background" description:"PNG, JPEG or WebP background image"`
	Out        string `long:"out" description:"output PNG path"`
}

func (c *ThumbnailCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		caption := c.Text
		if caption == "" {
			if c.Idea < 1 || c.Idea > len(sess.ThumbTextIdeas) {
				return fmt.Errorf("caption %d not found: the session has %d thumbnail ideas (run \"prompts\" first)", c.Idea, len(sess.ThumbTextIdeas))
			}
			caption = sess.ThumbTextIdeas[c.Idea-1]
		}

		cfg := a.cfg()
		renderer, err := thumbnail.NewRenderer(cfg.Thumbnail.FontPath, cfg.Thumbnail.Width)
		if err != nil {
			return err
		}
		var bg image.Image
		if c.Background != "" {
			img, err := thumbnail.LoadBackground(c.Background)
			if err != nil {
				return err
			}
			bg = img
		}

		png, err := renderer.Render(caption, bg, firstNonEmpty(sess.FrameRatio, cfg.Generation.FrameRatio))
		if err != nil {
			return err
		}

		out := c.Out
		if out == "" {
			out = filepath.Join(cfg.ExportDir, "thumb_"+content.Slugify(sess.BookTitle)+".png")
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", out, err)
		}
		logging.Println("Wrote %s", out)
		return nil
	})
}
