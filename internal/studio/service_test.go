package studio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryStudio/internal/content"
	"StoryStudio/internal/export"
	"StoryStudio/internal/llm"
	"StoryStudio/internal/storage"
)

const outlineJSON = `{"chapters":[
	{"title":"Mở đầu","focus":"hook","actions":["gặp gỡ"]},
	{"title":"Cao trào","focus":"xung đột","actions":["phản bội"]}
],"metadata":{"femaleLead":"Lan","maleLead":"Huy","villain":"Tú"}}`

// fakeLLM answers by the shape of the request
type fakeLLM struct {
	mu       sync.Mutex
	prompts  []string
	failWhen string
}

func (f *fakeLLM) GenerateText(_ context.Context, req llm.GenerationRequest, _ llm.KeyConfig) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()

	if f.failWhen != "" && strings.Contains(req.Prompt, f.failWhen) {
		return "", &llm.ProviderError{Provider: "gemini", HTTPStatus: 400, Message: "bad request"}
	}
	if req.Schema != nil {
		if _, ok := req.Schema.Properties["chapters"]; ok {
			return outlineJSON, nil
		}
		if _, ok := req.Schema.Properties["titles"]; ok {
			return `{"titles":["T1","T1","T2"],"hashtags":["#a"],"keywords":["k"],"description":"d"}`, nil
		}
		return `["one","two"]`, nil
	}
	return "generated text", nil
}

func (f *fakeLLM) promptsContaining(s string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, s) {
			n++
		}
	}
	return n
}

type fakeResearch struct {
	titles []string
	err    error
}

func (f fakeResearch) TopTitles(context.Context, string, int) ([]string, error) {
	return f.titles, f.err
}

func newTestService(t *testing.T, opts ...Option) (*Service, *fakeLLM, storage.SessionStore) {
	t.Helper()
	store, err := storage.NewFileSessionStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)
	fake := &fakeLLM{}
	gen := content.NewGenerator(fake, llm.KeyConfig{Google: "AIza-test"}, "gemini-3-pro-preview").
		WithTokenCounter(func(s string) int { return len(s) / 4 })
	return NewService(gen, store, opts...), fake, store
}

func project() content.Project {
	return content.Project{BookTitle: "Đắc Nhân Tâm", Language: content.LanguageVietnamese, DurationMin: 5}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), content.Project{})
	assert.ErrorIs(t, err, content.ErrMissingTitle)
}

func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t)

	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)

	require.NoError(t, svc.Outline(ctx, sess))
	require.Len(t, sess.Outline, 2)
	require.NotNil(t, sess.StoryMetadata)
	assert.Equal(t, "Lan", sess.StoryMetadata.FemaleLead)

	var steps []int
	require.NoError(t, svc.Story(ctx, sess, func(done, total int, _ string) { steps = append(steps, done) }))
	assert.Equal(t, []int{1, 2}, steps)
	require.Len(t, sess.StoryBlocks, 2)
	assert.Equal(t, "Cao trào", sess.StoryBlocks[1].Title)

	require.NoError(t, svc.Review(ctx, sess, nil))
	require.Len(t, sess.ScriptBlocks, 2)
	assert.Equal(t, len("generated text"), sess.ScriptBlocks[0].Chars)

	require.NoError(t, svc.SEO(ctx, sess))
	assert.Equal(t, []string{"T1", "T2"}, sess.SEO.Titles)

	require.NoError(t, svc.Prompts(ctx, sess))
	assert.Equal(t, []string{"one", "two"}, sess.VideoPrompts)
	assert.Equal(t, []string{"one", "two"}, sess.ThumbTextIdeas)

	result, err := svc.Evaluate(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "generated text", result)

	saved, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, saved.StoryBlocks, 2)
	assert.Len(t, saved.ScriptBlocks, 2)
	assert.Equal(t, "generated text", saved.EvaluationResult)
	assert.Equal(t, 3, saved.ChaptersCount)

	dir := t.TempDir()
	path, err := svc.Export(saved, export.KindStory, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "truyen_dac-nhan-tam.csv"), path)
}

func TestOutlineClearsStoryAndScript(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)

	sess.StoryBlocks = []content.StoryBlock{{Index: 1, Title: "old", Content: "old"}}
	sess.ScriptBlocks = []content.ScriptBlock{{Index: 1, Text: "old"}}
	require.NoError(t, svc.Outline(ctx, sess))
	assert.Empty(t, sess.StoryBlocks)
	assert.Empty(t, sess.ScriptBlocks)
}

func TestStoryNeedsOutlineAndReviewNeedsStory(t *testing.T) {
	ctx := context.Background()
	svc, fake, _ := newTestService(t)
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Story(ctx, sess, nil), content.ErrEmptyOutline)
	assert.ErrorIs(t, svc.Review(ctx, sess, nil), content.ErrNoStory)
	assert.Empty(t, fake.prompts)
}

func TestStorySavesPartialBlocks(t *testing.T) {
	ctx := context.Background()
	svc, fake, store := newTestService(t)
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)
	require.NoError(t, svc.Outline(ctx, sess))

	fake.failWhen = "Cao trào"
	err = svc.Story(ctx, sess, nil)
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe))

	saved, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, saved.StoryBlocks, 1)
	assert.Equal(t, "Mở đầu", saved.StoryBlocks[0].Title)
}

func TestSEOUsesResearchAndToleratesFailure(t *testing.T) {
	ctx := context.Background()

	svc, fake, _ := newTestService(t, WithResearch(fakeResearch{titles: []string{"Top video title"}}, 5))
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)
	require.NoError(t, svc.SEO(ctx, sess))
	assert.Equal(t, 1, fake.promptsContaining("Top video title"))

	svc, _, _ = newTestService(t, WithResearch(fakeResearch{err: errors.New("quota")}, 5))
	sess, err = svc.Create(ctx, project())
	require.NoError(t, err)
	require.NoError(t, svc.SEO(ctx, sess))
	require.NotNil(t, sess.SEO)
}

func TestUploadReplacesStory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, WithUploadChunkChars(20))
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)
	require.NoError(t, svc.Outline(ctx, sess))

	path := filepath.Join(t.TempDir(), "Truyện Mới.txt")
	require.NoError(t, os.WriteFile(path, []byte("Đoạn một khá dài.\nĐoạn hai khá dài.\n"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, svc.Upload(ctx, sess, path, data))
	assert.Equal(t, "Truyện Mới", sess.BookTitle)
	assert.Empty(t, sess.Outline)
	assert.Nil(t, sess.StoryMetadata)
	require.Len(t, sess.StoryBlocks, 2)
	assert.Equal(t, "Phần 1 (Upload)", sess.StoryBlocks[0].Title)
}

func TestRewrite(t *testing.T) {
	ctx := context.Background()
	svc, fake, _ := newTestService(t)
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Rewrite(ctx, sess, 0, "shorter"), content.ErrNoStory)

	sess.StoryBlocks = []content.StoryBlock{
		{Index: 1, Title: "A", Content: "first"},
		{Index: 2, Title: "B", Content: "second"},
	}
	assert.ErrorIs(t, svc.Rewrite(ctx, sess, 2, "shorter"), ErrBlockOutOfRange)

	require.NoError(t, svc.Rewrite(ctx, sess, 1, "shorter"))
	assert.Equal(t, "first", sess.StoryBlocks[0].Content)
	assert.Equal(t, "generated text", sess.StoryBlocks[1].Content)

	fake.failWhen = "first"
	failed, err := svc.RewriteAll(ctx, sess, "darker", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, failed)
	assert.Equal(t, "first", sess.StoryBlocks[0].Content)

	_, err = svc.RewriteAll(ctx, sess, "  ", nil)
	assert.ErrorIs(t, err, content.ErrEmptyFeedback)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	sess, err := svc.Create(ctx, project())
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, sess.ID))
	_, err = svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
