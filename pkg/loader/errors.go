package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTooDeep is wrapped by a ParseError when nesting exceeds MaxDepth.
var ErrTooDeep = errors.New("document nesting exceeds maximum depth")

// ErrExcessiveAliasing is wrapped by a ParseError when YAML aliases expand
// into far more nodes than the document itself holds.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

// ParseError reports malformed input. Line and Column are 1-based and zero
// when unknown; Offset is a byte offset, -1 when unknown.
type ParseError struct {
	Format  Format
	Message string
	Offset  int64
	Line    int
	Column  int
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse %s", e.Format)
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(format Format, err error, msg string) *ParseError {
	return &ParseError{Format: format, Message: msg, Offset: -1, Err: err}
}

// atOffset fills Offset, Line and Column from a byte offset into data.
func (e *ParseError) atOffset(data []byte, offset int64) *ParseError {
	if offset < 0 {
		return e
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	e.Offset = offset
	e.Line, e.Column = position(data, offset)
	return e
}

// atLine sets a known line and column without an offset.
func (e *ParseError) atLine(line, column int) *ParseError {
	e.Line = line
	e.Column = column
	return e
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func tooDeep(format Format) *ParseError {
	return newParseError(format, ErrTooDeep, fmt.Sprintf("nesting deeper than %d levels", MaxDepth))
}
