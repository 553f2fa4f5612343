package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryStudio/internal/llm"
)

// scriptedLLM answers requests through a callback and records them
type scriptedLLM struct {
	mu       sync.Mutex
	requests []llm.GenerationRequest
	reply    func(req llm.GenerationRequest) (string, error)
}

func (s *scriptedLLM) GenerateText(_ context.Context, req llm.GenerationRequest, _ llm.KeyConfig) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.reply(req)
}

func (s *scriptedLLM) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestGenerator(reply func(req llm.GenerationRequest) (string, error)) (*Generator, *scriptedLLM) {
	fake := &scriptedLLM{reply: reply}
	gen := NewGenerator(fake, llm.KeyConfig{Google: "AIza-test"}, "gemini-3-pro-preview").
		WithTokenCounter(func(s string) int { return len(s) / 4 })
	return gen, fake
}

func viProject() Project {
	return Project{BookTitle: "Đắc Nhân Tâm", ChannelName: "Kênh Sách", MCName: "Minh", Language: LanguageVietnamese, DurationMin: 10}
}

func TestGeneratorRequiresTitle(t *testing.T) {
	gen, fake := newTestGenerator(func(llm.GenerationRequest) (string, error) { return "", nil })
	p := Project{Language: LanguageEnglish}

	_, err := gen.GenerateOutline(context.Background(), p)
	assert.ErrorIs(t, err, ErrMissingTitle)
	_, err = gen.GenerateSEO(context.Background(), p, nil)
	assert.ErrorIs(t, err, ErrMissingTitle)
	_, _, err = gen.GeneratePrompts(context.Background(), p)
	assert.ErrorIs(t, err, ErrMissingTitle)
	assert.Zero(t, fake.count())
}

func TestGenerateOutline(t *testing.T) {
	gen, fake := newTestGenerator(func(llm.GenerationRequest) (string, error) {
		return `{"chapters":[{"title":"Hook","focus":"grab","actions":["a"]},{"title":"Intro","focus":"host","actions":["b","c"]}],
			"metadata":{"femaleLead":"Lan","maleLead":"Huy","villain":"Tú"}}`, nil
	})

	outline, err := gen.GenerateOutline(context.Background(), viProject())
	require.NoError(t, err)
	require.Len(t, outline.Chapters, 2)
	assert.Equal(t, 1, outline.Chapters[0].Index)
	assert.Equal(t, 2, outline.Chapters[1].Index)
	assert.Equal(t, []string{"b", "c"}, outline.Chapters[1].Actions)
	assert.Equal(t, "Lan", outline.Metadata.FemaleLead)

	req := fake.requests[0]
	assert.Equal(t, "gemini-3-pro-preview", req.Model)
	require.NotNil(t, req.Schema)
	assert.Contains(t, req.Schema.Required, "chapters")
	assert.Contains(t, req.Prompt, "4 chương")
}

func TestGenerateOutlineAcceptsBareArrayAndFences(t *testing.T) {
	gen, _ := newTestGenerator(func(llm.GenerationRequest) (string, error) {
		return "```json\n[{\"title\":\"Only\",\"focus\":\"f\",\"actions\":[]}]\n```", nil
	})

	p := viProject()
	p.Language = LanguageEnglish
	outline, err := gen.GenerateOutline(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, outline.Chapters, 1)
	assert.Equal(t, "Female lead", outline.Metadata.FemaleLead)
}

func TestGenerateOutlineSurfacesParseError(t *testing.T) {
	gen, _ := newTestGenerator(func(llm.GenerationRequest) (string, error) { return "Sure! Here is your outline.", nil })

	_, err := gen.GenerateOutline(context.Background(), viProject())
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "outline", pe.Operation)
	assert.Equal(t, "Sure! Here is your outline.", pe.Raw)

	gen, _ = newTestGenerator(func(llm.GenerationRequest) (string, error) { return `{"chapters":[]}`, nil })
	_, err = gen.GenerateOutline(context.Background(), viProject())
	assert.ErrorIs(t, err, ErrEmptyOutline)
}

func TestGenerateOutlinePropagatesProviderError(t *testing.T) {
	gen, _ := newTestGenerator(func(llm.GenerationRequest) (string, error) { return "", llm.ErrMissingKey })

	_, err := gen.GenerateOutline(context.Background(), viProject())
	assert.ErrorIs(t, err, llm.ErrMissingKey)
}

func TestGenerateStoryRunsInOrder(t *testing.T) {
	gen, fake := newTestGenerator(func(req llm.GenerationRequest) (string, error) {
		if strings.Contains(req.Prompt, `"Second"`) {
			return "second chapter", nil
		}
		return "first chapter", nil
	})
	outline := Outline{Chapters: []OutlineItem{{Index: 1, Title: "First"}, {Index: 2, Title: "Second"}}}

	var steps []int
	blocks, err := gen.GenerateStory(context.Background(), outline, viProject(), func(done, total int, _ string) {
		steps = append(steps, done)
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, []StoryBlock{{Index: 1, Title: "First", Content: "first chapter"}, {Index: 2, Title: "Second", Content: "second chapter"}}, blocks)
	assert.Equal(t, []int{1, 2}, steps)
	assert.Contains(t, fake.requests[0].Prompt, "Nữ chính")
	require.NotNil(t, fake.requests[0].Temperature)

	_, err = gen.GenerateStory(context.Background(), Outline{}, viProject(), nil)
	assert.ErrorIs(t, err, ErrEmptyOutline)
}

func TestGenerateStoryReturnsPartialBlocksOnError(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen, _ := newTestGenerator(func(req llm.GenerationRequest) (string, error) {
		if strings.Contains(req.Prompt, `"Second"`) {
			return "", boom
		}
		return "ok", nil
	})
	outline := Outline{Chapters: []OutlineItem{{Index: 1, Title: "First"}, {Index: 2, Title: "Second"}, {Index: 3, Title: "Third"}}}

	blocks, err := gen.GenerateStory(context.Background(), outline, viProject(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, blocks, 1)
}

func TestGenerateReviewScript(t *testing.T) {
	gen, fake := newTestGenerator(func(req llm.GenerationRequest) (string, error) {
		return "Xin chào các bạn", nil
	})

	_, err := gen.GenerateReviewScript(context.Background(), nil, viProject(), nil)
	assert.ErrorIs(t, err, ErrNoStory)

	script, err := gen.GenerateReviewScript(context.Background(), []StoryBlock{{Index: 1, Title: "Phần 1", Content: "..."}}, viProject(), nil)
	require.NoError(t, err)
	require.Len(t, script, 1)
	assert.Equal(t, "Phần 1", script[0].Chapter)
	assert.Equal(t, 16, script[0].Chars)
	assert.Equal(t, len("Xin chào các bạn")/4, script[0].Tokens)
	assert.Contains(t, fake.requests[0].SystemInstruction, "Kênh Sách")
}

func TestGenerateSEO(t *testing.T) {
	gen, fake := newTestGenerator(func(llm.GenerationRequest) (string, error) {
		return `{"titles":["A","A","B"],"hashtags":["#sach","#sach "],"keywords":["k"],"description":"d"}`, nil
	})

	seo, err := gen.GenerateSEO(context.Background(), viProject(), []string{"Top video 1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, seo.Titles)
	assert.Equal(t, []string{"#sach"}, seo.Hashtags)
	assert.Equal(t, "d", seo.Description)
	assert.Contains(t, fake.requests[0].Prompt, "Top video 1")
}

func TestGeneratePromptsRunsBothRequests(t *testing.T) {
	gen, fake := newTestGenerator(func(req llm.GenerationRequest) (string, error) {
		if strings.Contains(req.Prompt, "thumbnail") {
			return `["0H10M của đời người"]`, nil
		}
		return `["misty forest","old library"]`, nil
	})

	prompts, thumbs, err := gen.GeneratePrompts(context.Background(), viProject())
	require.NoError(t, err)
	assert.Equal(t, []string{"misty forest", "old library"}, prompts)
	assert.Equal(t, []string{"0H10M của đời người"}, thumbs)
	assert.Equal(t, 2, fake.count())
}

func TestGeneratePromptsFailsWhenEitherFails(t *testing.T) {
	gen, _ := newTestGenerator(func(req llm.GenerationRequest) (string, error) {
		if strings.Contains(req.Prompt, "thumbnail") {
			return "not json", nil
		}
		return `["x"]`, nil
	})

	_, _, err := gen.GeneratePrompts(context.Background(), viProject())
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestRewriteAllKeepsFailedBlocks(t *testing.T) {
	gen, _ := newTestGenerator(func(req llm.GenerationRequest) (string, error) {
		if strings.Contains(req.Prompt, "bad block") {
			return "", errors.New("content policy")
		}
		return "rewritten", nil
	})
	blocks := []StoryBlock{{Index: 1, Content: "good block"}, {Index: 2, Content: "bad block"}, {Index: 3, Content: "good again"}}

	out, failed, err := gen.RewriteAll(context.Background(), blocks, "more drama", nil, viProject(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, failed)
	assert.Equal(t, "rewritten", out[0].Content)
	assert.Equal(t, "bad block", out[1].Content)
	assert.Equal(t, "rewritten", out[2].Content)
	assert.Equal(t, "good block", blocks[0].Content)

	_, _, err = gen.RewriteAll(context.Background(), blocks, "   ", nil, viProject(), nil)
	assert.ErrorIs(t, err, ErrEmptyFeedback)
}

func TestRewriteStoryBlockUsesCast(t *testing.T) {
	gen, fake := newTestGenerator(func(llm.GenerationRequest) (string, error) { return "new", nil })
	meta := &StoryMetadata{FemaleLead: "Lan", MaleLead: "Huy", Villain: "Tú"}

	text, err := gen.RewriteStoryBlock(context.Background(), "old", "shorter", meta, viProject())
	require.NoError(t, err)
	assert.Equal(t, "new", text)
	assert.Contains(t, fake.requests[0].Prompt, "Lan")
	assert.Contains(t, fake.requests[0].Prompt, "shorter")
}

func TestEvaluateStory(t *testing.T) {
	gen, fake := newTestGenerator(func(llm.GenerationRequest) (string, error) { return "8/10", nil })

	_, err := gen.EvaluateStory(context.Background(), nil, viProject())
	assert.ErrorIs(t, err, ErrNoStory)

	verdict, err := gen.EvaluateStory(context.Background(), []StoryBlock{{Title: "One", Content: "text one"}, {Title: "Two", Content: "text two"}}, viProject())
	require.NoError(t, err)
	assert.Equal(t, "8/10", verdict)
	assert.Contains(t, fake.requests[0].Prompt, "## Two\ntext two")
	assert.Nil(t, fake.requests[0].Schema)
}

type keyRecorder struct {
	seen []llm.KeyConfig
}

func (k *keyRecorder) GenerateText(_ context.Context, _ llm.GenerationRequest, keys llm.KeyConfig) (string, error) {
	k.seen = append(k.seen, keys)
	return "ok", nil
}

func TestWithKeySourceReadsKeysPerRequest(t *testing.T) {
	rec := &keyRecorder{}
	current := llm.KeyConfig{Google: "first"}
	gen := NewGenerator(rec, llm.KeyConfig{Google: "static"}, "gemini-3-pro-preview").
		WithKeySource(func() llm.KeyConfig { return current })

	_, err := gen.EvaluateStory(context.Background(), []StoryBlock{{Title: "A", Content: "a"}}, viProject())
	require.NoError(t, err)
	current = llm.KeyConfig{Google: "second"}
	_, err = gen.EvaluateStory(context.Background(), []StoryBlock{{Title: "A", Content: "a"}}, viProject())
	require.NoError(t, err)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, "first", rec.seen[0].Google)
	assert.Equal(t, "second", rec.seen[1].Google)
}

func TestEvaluateStoryTrimsLongStories(t *testing.T) {
	gen, fake := newTestGenerator(func(llm.GenerationRequest) (string, error) { return "8/10", nil })

	long := strings.Repeat("word ", 60000)
	blocks := []StoryBlock{{Title: "A", Content: long}, {Title: "B", Content: long}}
	_, err := gen.EvaluateStory(context.Background(), blocks, viProject())
	require.NoError(t, err)

	prompt := fake.requests[0].Prompt
	assert.Equal(t, 2, strings.Count(prompt, "... (truncated)"))
	assert.Less(t, len(prompt), 2*len(long))
}
