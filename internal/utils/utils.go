package utils

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// ProgressManager prints step progress for long generation runs
type ProgressManager struct {
	mu    sync.Mutex
	out   io.Writer
	label string
	width int
}

// NewProgressManager creates a progress manager writing to out
func NewProgressManager(out io.Writer, label string) *ProgressManager {
	return &ProgressManager{out: out, label: label, width: 20}
}

// UpdateProgress prints one progress line for step current of total
func (p *ProgressManager) UpdateProgress(current, total int, state string) {
	if p == nil || p.out == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s (%d/%d) %s\n", p.label, CreateProgressBar(current, total, p.width), current, total, state)
}

// CreateProgressBar renders a fixed-width bar followed by a percentage
func CreateProgressBar(current, total int, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	percentage := int(float64(current) / float64(total) * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// UniqueStrings removes duplicates and blanks from a string slice while preserving order
func UniqueStrings(slice []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, item := range slice {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}

	return result
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
