// Package content builds the prompts for each step of a video package
// (outline, chapters, review script, SEO, visual prompts, rewrites and
// evaluation) and sends them through the llm facade.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	json "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"StoryStudio/internal/llm"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/utils"
)

var creativeTemperature = float32(0.9)

// Upper bound on story tokens sent for evaluation
const evaluateTokenBudget = 100000

// Generator runs content generation steps for one set of API keys
type Generator struct {
	llm          llm.TextGenerator
	keys         func() llm.KeyConfig
	defaultModel string
	countTokens  func(string) int
}

// NewGenerator creates a generator. defaultModel is used when a project has no model.
func NewGenerator(textGen llm.TextGenerator, keys llm.KeyConfig, defaultModel string) *Generator {
	return &Generator{
		llm:          textGen,
		keys:         func() llm.KeyConfig { return keys },
		defaultModel: defaultModel,
		countTokens:  utils.EstimateTokenCountFromText,
	}
}

// WithTokenCounter replaces the token estimator used for script blocks
func (g *Generator) WithTokenCounter(fn func(string) int) *Generator {
	g.countTokens = fn
	return g
}

// WithKeySource reads the keys before every request, so a reloaded config
// takes effect in the middle of a long run
func (g *Generator) WithKeySource(fn func() llm.KeyConfig) *Generator {
	g.keys = fn
	return g
}

func (g *Generator) model(p Project) string {
	if p.Model != "" {
		return p.Model
	}
	return g.defaultModel
}

func (g *Generator) generate(ctx context.Context, p Project, system, prompt string, schema *genai.Schema, expectJSON bool, temperature *float32) (string, error) {
	return g.llm.GenerateText(ctx, llm.GenerationRequest{
		Model:             g.model(p),
		Prompt:            prompt,
		SystemInstruction: system,
		Schema:            schema,
		ExpectJSON:        expectJSON,
		Temperature:       temperature,
	}, g.keys())
}

func checkTitle(p Project) error {
	if strings.TrimSpace(p.BookTitle) == "" {
		return ErrMissingTitle
	}
	return nil
}

// stripFence removes a surrounding markdown code fence
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

// decodeJSON parses structured output, tolerating a surrounding markdown fence
func decodeJSON(operation, raw string, v any) error {
	if err := json.Unmarshal([]byte(stripFence(raw)), v); err != nil {
		return &ParseError{Operation: operation, Raw: raw, Err: err}
	}
	return nil
}

// GenerateOutline asks for the chapter outline and the fixed cast names
func (g *Generator) GenerateOutline(ctx context.Context, p Project) (Outline, error) {
	if err := checkTitle(p); err != nil {
		return Outline{}, err
	}

	system, prompt := outlinePrompt(p)
	raw, err := g.generate(ctx, p, system, prompt, outlineSchema(), true, nil)
	if err != nil {
		return Outline{}, fmt.Errorf("outline generation failed: %w", err)
	}

	var outline Outline
	if strings.HasPrefix(stripFence(raw), "[") {
		err = decodeJSON("outline", raw, &outline.Chapters)
		outline.Metadata = defaultMetadata(p.Language)
	} else {
		err = decodeJSON("outline", raw, &outline)
	}
	if err != nil {
		return Outline{}, err
	}
	if len(outline.Chapters) == 0 {
		return Outline{}, fmt.Errorf("%w: the model returned no chapters", ErrEmptyOutline)
	}

	for i := range outline.Chapters {
		outline.Chapters[i].Index = i + 1
	}
	if outline.Metadata == (StoryMetadata{}) {
		outline.Metadata = defaultMetadata(p.Language)
	}
	logging.Info("Generated outline for %q with %d chapters", p.BookTitle, len(outline.Chapters))
	return outline, nil
}

// GenerateStoryBlock writes the prose of one chapter
func (g *Generator) GenerateStoryBlock(ctx context.Context, item OutlineItem, meta StoryMetadata, p Project) (string, error) {
	if err := checkTitle(p); err != nil {
		return "", err
	}
	system, prompt := storyBlockPrompt(item, meta, p)
	return g.generate(ctx, p, system, prompt, nil, false, &creativeTemperature)
}

// GenerateStory writes every chapter in outline order. On failure it returns
// the blocks written so far together with the error.
func (g *Generator) GenerateStory(ctx context.Context, outline Outline, p Project, progress ProgressFunc) ([]StoryBlock, error) {
	if err := checkTitle(p); err != nil {
		return nil, err
	}
	if len(outline.Chapters) == 0 {
		return nil, ErrEmptyOutline
	}

	meta := outline.Metadata
	if meta == (StoryMetadata{}) {
		meta = defaultMetadata(p.Language)
	}

	blocks := make([]StoryBlock, 0, len(outline.Chapters))
	for i, item := range outline.Chapters {
		text, err := g.GenerateStoryBlock(ctx, item, meta, p)
		if err != nil {
			return blocks, fmt.Errorf("chapter %d (%s): %w", item.Index, item.Title, err)
		}
		blocks = append(blocks, StoryBlock{Index: item.Index, Title: item.Title, Content: text})
		if progress != nil {
			progress(i+1, len(outline.Chapters), item.Title)
		}
	}
	return blocks, nil
}

// GenerateReviewBlock writes the narration script for one story block
func (g *Generator) GenerateReviewBlock(ctx context.Context, block StoryBlock, p Project) (ScriptBlock, error) {
	if err := checkTitle(p); err != nil {
		return ScriptBlock{}, err
	}
	system, prompt := reviewBlockPrompt(block, p)
	text, err := g.generate(ctx, p, system, prompt, nil, false, nil)
	if err != nil {
		return ScriptBlock{}, err
	}

	sb := ScriptBlock{
		Index:   block.Index,
		Chapter: block.Title,
		Text:    text,
		Chars:   utf8.RuneCountInString(text),
	}
	if g.countTokens != nil {
		sb.Tokens = g.countTokens(text)
	}
	return sb, nil
}

// GenerateReviewScript writes the script for every block in order
func (g *Generator) GenerateReviewScript(ctx context.Context, blocks []StoryBlock, p Project, progress ProgressFunc) ([]ScriptBlock, error) {
	if err := checkTitle(p); err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrNoStory
	}

	script := make([]ScriptBlock, 0, len(blocks))
	for i, block := range blocks {
		sb, err := g.GenerateReviewBlock(ctx, block, p)
		if err != nil {
			return script, fmt.Errorf("script for %s: %w", block.Title, err)
		}
		script = append(script, sb)
		if progress != nil {
			progress(i+1, len(blocks), block.Title)
		}
	}
	return script, nil
}

// GenerateSEO produces titles, hashtags, keywords and a description.
// references are optional ranking titles used as inspiration.
func (g *Generator) GenerateSEO(ctx context.Context, p Project, references []string) (SEOResult, error) {
	if err := checkTitle(p); err != nil {
		return SEOResult{}, err
	}

	system, prompt := seoPrompt(p, references)
	raw, err := g.generate(ctx, p, system, prompt, seoSchema(), true, nil)
	if err != nil {
		return SEOResult{}, fmt.Errorf("SEO generation failed: %w", err)
	}

	var seo SEOResult
	if err := decodeJSON("seo", raw, &seo); err != nil {
		return SEOResult{}, err
	}
	seo.Titles = utils.UniqueStrings(seo.Titles)
	seo.Hashtags = utils.UniqueStrings(seo.Hashtags)
	seo.Keywords = utils.UniqueStrings(seo.Keywords)
	return seo, nil
}

func (g *Generator) generateList(ctx context.Context, p Project, operation, prompt string) ([]string, error) {
	raw, err := g.generate(ctx, p, "", prompt, stringListSchema(), true, nil)
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", operation, err)
	}
	var items []string
	if err := decodeJSON(operation, raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GenerateVideoPrompts returns background visual prompts for the video
func (g *Generator) GenerateVideoPrompts(ctx context.Context, p Project) ([]string, error) {
	if err := checkTitle(p); err != nil {
		return nil, err
	}
	return g.generateList(ctx, p, "video prompts", videoPromptsPrompt(p))
}

// GenerateThumbIdeas returns short thumbnail captions, one containing the duration
func (g *Generator) GenerateThumbIdeas(ctx context.Context, p Project) ([]string, error) {
	if err := checkTitle(p); err != nil {
		return nil, err
	}
	return g.generateList(ctx, p, "thumbnail ideas", thumbIdeasPrompt(p))
}

// GeneratePrompts runs the video prompt and thumbnail requests concurrently
func (g *Generator) GeneratePrompts(ctx context.Context, p Project) ([]string, []string, error) {
	if err := checkTitle(p); err != nil {
		return nil, nil, err
	}

	var prompts, thumbs []string
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		prompts, err = g.GenerateVideoPrompts(gctx, p)
		return err
	})
	eg.Go(func() error {
		var err error
		thumbs, err = g.GenerateThumbIdeas(gctx, p)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return prompts, thumbs, nil
}

// RewriteStoryBlock rewrites one passage according to feedback
func (g *Generator) RewriteStoryBlock(ctx context.Context, original, feedback string, meta *StoryMetadata, p Project) (string, error) {
	if strings.TrimSpace(feedback) == "" {
		return "", ErrEmptyFeedback
	}
	system, prompt := rewritePrompt(original, strings.TrimSpace(feedback), meta, p.Language)
	return g.generate(ctx, p, system, prompt, nil, false, &creativeTemperature)
}

// RewriteAll rewrites every block in order. A block that fails is logged and
// kept unchanged; its position is reported in failed. Cancellation stops the run.
func (g *Generator) RewriteAll(ctx context.Context, blocks []StoryBlock, feedback string, meta *StoryMetadata, p Project, progress ProgressFunc) ([]StoryBlock, []int, error) {
	if strings.TrimSpace(feedback) == "" {
		return blocks, nil, ErrEmptyFeedback
	}
	if len(blocks) == 0 {
		return blocks, nil, ErrNoStory
	}

	out := make([]StoryBlock, len(blocks))
	copy(out, blocks)

	var failed []int
	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return out, failed, err
		}
		text, err := g.RewriteStoryBlock(ctx, block.Content, feedback, meta, p)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return out, failed, err
			}
			logging.Error("Error rewriting block %d (%s): %v", i, block.Title, err)
			failed = append(failed, i)
			continue
		}
		out[i].Content = text
		if progress != nil {
			progress(i+1, len(blocks), block.Title)
		}
	}
	return out, failed, nil
}

// EvaluateStory returns a free-text critique of the whole story
func (g *Generator) EvaluateStory(ctx context.Context, blocks []StoryBlock, p Project) (string, error) {
	if err := checkTitle(p); err != nil {
		return "", err
	}
	if len(blocks) == 0 {
		return "", ErrNoStory
	}

	perBlock := 0
	if g.countTokens != nil {
		total := 0
		for _, b := range blocks {
			total += g.countTokens(b.Content)
		}
		if total > evaluateTokenBudget {
			perBlock = evaluateTokenBudget / len(blocks)
			logging.Warn("Story has about %d tokens, trimming each block to %d for evaluation", total, perBlock)
		}
	}

	var story strings.Builder
	for _, b := range blocks {
		text := strings.TrimSpace(b.Content)
		if perBlock > 0 {
			text = utils.TruncateToTokens(text, perBlock, g.countTokens)
		}
		fmt.Fprintf(&story, "## %s\n%s\n\n", b.Title, text)
	}
	system, prompt := evaluatePrompt(story.String(), p)
	return g.generate(ctx, p, system, prompt, nil, false, nil)
}
