package content

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTitle is returned before any network call when the book title is empty
	ErrMissingTitle = errors.New("book title is required")
	// ErrEmptyOutline is returned when story generation has no outline to follow
	ErrEmptyOutline = errors.New("an outline is required before writing the story")
	// ErrNoStory is returned when a step needs story blocks and there are none
	ErrNoStory = errors.New("no story content: write or upload the story first")
	// ErrEmptyFeedback is returned when a rewrite is requested without feedback
	ErrEmptyFeedback = errors.New("rewrite feedback must not be empty")
)

// ParseError reports structured output that could not be decoded
type ParseError struct {
	Operation string
	Raw       string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Operation, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
