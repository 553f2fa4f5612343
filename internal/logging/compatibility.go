package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// ReplaceStandardLogger routes the standard log package through the global logger's writer
// so third-party log.Printf output lands in the same stream.
func ReplaceStandardLogger() {
	if l := current(); l != nil {
		log.SetOutput(l.logger.Writer())
		log.SetFlags(l.logger.Flags())
	}
}

// Writer returns the writer used by the global logger
func Writer() io.Writer {
	if l := current(); l != nil {
		return l.logger.Writer()
	}
	return os.Stderr
}

// Printf writes user-facing CLI output to stdout regardless of level
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// Println writes a user-facing line to stdout regardless of level
func Println(format string, args ...interface{}) {
	fmt.Fprintln(os.Stdout, fmt.Sprintf(format, args...))
}
