package main

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse runs the parser without executing the selected command
func parse(t *testing.T, args ...string) (*Options, flags.Commander) {
	t.Helper()
	var opts Options
	var selected flags.Commander
	parser := flags.NewParser(&opts, flags.None)
	parser.CommandHandler = func(cmd flags.Commander, _ []string) error {
		selected = cmd
		return nil
	}
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return &opts, selected
}

func TestSessionDefaultsToLatest(t *testing.T) {
	opts, cmd := parse(t, "outline")
	assert.Equal(t, "configs/config.yaml", opts.Config)
	assert.Equal(t, "latest", opts.Outline.Session)
	assert.Same(t, &opts.Outline, cmd)
}

func TestRewriteFlags(t *testing.T) {
	opts, _ := parse(t, "-f", "my.yaml", "rewrite", "-s", "abc", "-m", "gpt-4o", "--block", "2", "--feedback", "shorter")
	assert.Equal(t, "my.yaml", opts.Config)
	assert.Equal(t, "abc", opts.Rewrite.Session)
	assert.Equal(t, "gpt-4o", opts.Rewrite.Model)
	assert.Equal(t, 2, opts.Rewrite.Block)
	assert.Equal(t, "shorter", opts.Rewrite.Feedback)
}

func TestRewriteRequiresFeedback(t *testing.T) {
	var opts Options
	parser := flags.NewParser(&opts, flags.None)
	parser.CommandHandler = func(flags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs([]string{"rewrite"})
	require.Error(t, err)

	var flagsErr *flags.Error
	require.ErrorAs(t, err, &flagsErr)
	assert.Equal(t, flags.ErrRequired, flagsErr.Type)
}

func TestUploadTakesFile(t *testing.T) {
	opts, _ := parse(t, "upload", "-l", "en", "book.pdf")
	assert.Equal(t, "book.pdf", opts.Upload.Args.File)
	assert.Equal(t, "en", opts.Upload.Language)
	assert.Empty(t, opts.Upload.Session)
}

func TestExportDefaults(t *testing.T) {
	opts, _ := parse(t, "export", "--txt")
	assert.Equal(t, "script", opts.Export.Kind)
	assert.True(t, opts.Export.Text)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", " "))
}
