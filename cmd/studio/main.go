package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

// main parses the sub-command and runs it. go-flags prints any error,
// including those returned by a command, before we exit non-zero.
func main() {
	parser := flags.NewParser(&options, flags.Default)
	parser.LongDescription = "Generates outlines, stories, narration scripts, SEO metadata and " +
		"visual prompts for storytelling YouTube videos."

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
