package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StoryStudio/internal/config"
)

func TestDefaultModelTableResolve(t *testing.T) {
	table := DefaultModelTable()

	tests := []struct {
		logical string
		model   string
	}{
		{"gpt-5.2-instant", "gpt-4o-mini"},
		{"gpt-5.2-thinking", "o3-mini"},
		{"GPT-5.2-Reasoning", "o3-mini"},
		{"gpt-5-thinking-mini", "o3-mini"},
		{"gpt-o3-mini", "o3-mini"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"gpt-5.2-pro", "gpt-4.1"},
		{"gpt-5.2-auto", "gpt-4o"},
		{"totally-unknown", "gpt-4o"},
		{"", "gpt-4o"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.model, table.Resolve(tt.logical).Model, tt.logical)
	}

	_, matched := table.Lookup("gpt-5.2-auto")
	assert.False(t, matched)

	thinking := table.Resolve("gpt-5-thinking-mini")
	assert.Equal(t, "thinking", thinking.Name)
	assert.True(t, thinking.NoSystemRole)
	assert.True(t, thinking.NoJSONMode)
	assert.True(t, thinking.NoTemperature)
	assert.True(t, thinking.FallbackOnNotFound)
	assert.Equal(t, "gpt-4o", table.Default().Model)
}

func TestModelTableFromConfig(t *testing.T) {
	assert.Equal(t, DefaultModelTable(), ModelTableFromConfig(nil))

	table := ModelTableFromConfig([]config.ModelRoute{
		{Name: "fast", Match: []string{"instant"}, Model: "gpt-4.1-nano"},
		{Name: "flagship", Model: "gpt-4.1"},
		{Name: "deep", Match: []string{"thinking"}, Model: "o4-mini", FallbackOnNotFound: true},
	})
	assert.Equal(t, "gpt-4.1-nano", table.Resolve("gpt-x-instant").Model)
	assert.Equal(t, "o4-mini", table.Resolve("gpt-x-thinking").Model)
	assert.Equal(t, "gpt-4.1", table.Resolve("gpt-x-pro").Model)
	assert.Equal(t, "flagship", table.Default().Name)
}
