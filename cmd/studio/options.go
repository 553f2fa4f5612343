package main

// Options is the root command. The struct tags are interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Config   string `short:"f" long:"config" description:"config YAML path" default:"configs/config.yaml"`
	LogLevel string `long:"log-level" description:"override logging.log_level (DEBUG, INFO, WARN, ERROR)"`

	New       NewCmd       `command:"new" description:"Create a session for a book"`
	Outline   OutlineCmd   `command:"outline" description:"Generate the chapter outline and cast"`
	Story     StoryCmd     `command:"story" description:"Write every chapter of the outline"`
	Review    ReviewCmd    `command:"review" description:"Write the narration script for the story"`
	SEO       SEOCmd       `command:"seo" description:"Generate titles, hashtags, keywords and description"`
	Prompts   PromptsCmd   `command:"prompts" description:"Generate video prompts and thumbnail captions"`
	Rewrite   RewriteCmd   `command:"rewrite" description:"Rewrite one story block or all of them"`
	Evaluate  EvaluateCmd  `command:"evaluate" description:"Critique the story"`
	Upload    UploadCmd    `command:"upload" description:"Use a .txt, .md or .pdf file as the story"`
	Export    ExportCmd    `command:"export" description:"Write story, script or prompts as CSV or TXT"`
	Sessions  SessionsCmd  `command:"sessions" description:"List or delete saved sessions"`
	Thumbnail ThumbnailCmd `command:"thumbnail" description:"Render a thumbnail preview PNG"`
	CheckKeys CheckKeysCmd `command:"check-keys" description:"Show the parsed key pools and their failure history"`
}

var options Options

// SessionOptions selects the session a command works on
type SessionOptions struct {
	Session string `short:"s" long:"session" description:"session ID, or \"latest\"" default:"latest"`
	Model   string `short:"m" long:"model" description:"model for this run (saved on the session)"`
}
