package main

import (
	"context"
	"fmt"
	"strings"

	"StoryStudio/internal/content"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/storage"
)

// NewCmd creates a session
type NewCmd struct {
	Title    string `short:"t" long:"title" description:"book title or topic" required:"yes"`
	Idea     string `short:"i" long:"idea" description:"idea or context to weave into the story"`
	Language string `short:"l" long:"language" description:"vi or en (default from config)"`
	Duration int    `short:"d" long:"duration" description:"video length in minutes (default from config)"`
	Auto     bool   `long:"auto" description:"let the model choose a 40-60 minute length"`
	Ratio    string `long:"ratio" description:"frame ratio such as 16:9 or 9:16"`
	Channel  string `long:"channel" description:"channel name (default from config)"`
	MC       string `long:"mc" description:"host name (default from config)"`
	Model    string `short:"m" long:"model" description:"model for this session"`
}

func (c *NewCmd) Execute(_ []string) error {
	return run(func(ctx context.Context, a *app) error {
		cfg := a.cfg()

		lang, err := content.ParseLanguage(firstNonEmpty(c.Language, cfg.Language))
		if err != nil {
			return err
		}
		identity := cfg.GetIdentity(string(lang))

		duration := c.Duration
		if duration <= 0 {
			duration = cfg.Generation.DurationMin
		}

		sess, err := a.svc.Create(ctx, content.Project{
			BookTitle:    c.Title,
			Idea:         c.Idea,
			ChannelName:  firstNonEmpty(c.Channel, identity.ChannelName),
			MCName:       firstNonEmpty(c.MC, identity.MCName),
			Language:     lang,
			DurationMin:  duration,
			AutoDuration: c.Auto,
			FrameRatio:   firstNonEmpty(c.Ratio, cfg.Generation.FrameRatio),
			Model:        c.Model,
		})
		if err != nil {
			return err
		}
		logging.Println("Session %s created for %q (%d chapters)", sess.ID, sess.BookTitle, sess.ChaptersCount)
		return nil
	})
}

// OutlineCmd generates the outline
type OutlineCmd struct {
	SessionOptions
}

func (c *OutlineCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		if err := a.svc.Outline(ctx, sess); err != nil {
			return err
		}
		if sess.StoryMetadata != nil {
			m := sess.StoryMetadata
			logging.Println("Cast: %s / %s / %s", m.FemaleLead, m.MaleLead, m.Villain)
		}
		for _, item := range sess.Outline {
			logging.Println("%2d. %s: %s", item.Index, item.Title, item.Focus)
		}
		return nil
	})
}

// StoryCmd writes the story
type StoryCmd struct {
	SessionOptions
}

func (c *StoryCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		err := a.svc.Story(ctx, sess, progress("Story"))
		logging.Println("%d story blocks saved", len(sess.StoryBlocks))
		return err
	})
}

// ReviewCmd writes the narration script
type ReviewCmd struct {
	SessionOptions
}

func (c *ReviewCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		err := a.svc.Review(ctx, sess, progress("Script"))
		chars, tokens := 0, 0
		for _, b := range sess.ScriptBlocks {
			chars += b.Chars
			tokens += b.Tokens
		}
		logging.Println("%d script blocks saved, %d characters, about %d tokens", len(sess.ScriptBlocks), chars, tokens)
		return err
	})
}

// SEOCmd generates SEO metadata
type SEOCmd struct {
	SessionOptions
}

func (c *SEOCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		if err := a.svc.SEO(ctx, sess); err != nil {
			return err
		}
		logging.Println("Titles:")
		for _, t := range sess.SEO.Titles {
			logging.Println("  - %s", t)
		}
		logging.Println("Hashtags: %s", strings.Join(sess.SEO.Hashtags, " "))
		logging.Println("Keywords: %s", strings.Join(sess.SEO.Keywords, ", "))
		logging.Println("Description:\n%s", sess.SEO.Description)
		return nil
	})
}

// PromptsCmd generates video prompts and thumbnail captions
type PromptsCmd struct {
	SessionOptions
}

func (c *PromptsCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		if err := a.svc.Prompts(ctx, sess); err != nil {
			return err
		}
		logging.Println("Video prompts:")
		for i, p := range sess.VideoPrompts {
			logging.Println("%2d. %s", i+1, p)
		}
		logging.Println("Thumbnail captions:")
		for i, t := range sess.ThumbTextIdeas {
			logging.Println("%2d. %s", i+1, t)
		}
		return nil
	})
}

// RewriteCmd rewrites story blocks from feedback
type RewriteCmd struct {
	SessionOptions
	Block    int    `short:"b" long:"block" description:"block number starting at 1; 0 rewrites every block"`
	Feedback string `long:"feedback" description:"what to change" required:"yes"`
}

func (c *RewriteCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		if c.Block > 0 {
			if err := a.svc.Rewrite(ctx, sess, c.Block-1, c.Feedback); err != nil {
				return err
			}
			logging.Println("Block %d rewritten", c.Block)
			return nil
		}

		failed, err := a.svc.RewriteAll(ctx, sess, c.Feedback, progress("Rewrite"))
		if err != nil {
			return err
		}
		if len(failed) > 0 {
			numbers := make([]string, len(failed))
			for i, pos := range failed {
				numbers[i] = fmt.Sprint(pos + 1)
			}
			logging.Println("Rewrote %d of %d blocks; kept unchanged: %s",
				len(sess.StoryBlocks)-len(failed), len(sess.StoryBlocks), strings.Join(numbers, ", "))
			return nil
		}
		logging.Println("All %d blocks rewritten", len(sess.StoryBlocks))
		return nil
	})
}

// EvaluateCmd critiques the story
type EvaluateCmd struct {
	SessionOptions
}

func (c *EvaluateCmd) Execute(_ []string) error {
	return withSession(c.SessionOptions, func(ctx context.Context, a *app, sess *storage.SavedSession) error {
		result, err := a.svc.Evaluate(ctx, sess)
		if err != nil {
			return err
		}
		logging.Println("%s", result)
		return nil
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
