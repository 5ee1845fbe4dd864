package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested post has no backing file.
var ErrNotFound = errors.New("post not found")

// ParseError reports a front-matter block that is missing or malformed.
type ParseError struct {
	Path   string   // file the document came from, empty for in-memory input
	Fields []string // offending front-matter keys, if known
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse front matter")
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure while reading content.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
