// Package formatter serializes values for the clipboard and editor boundary
// and renders trees as plain text.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/fioncat/otree/internal/value"
	"github.com/fioncat/otree/pkg/loader"
)

// Payload is the serialized form of one node handed to the clipboard or an
// external editor.
type Payload struct {
	// Name is the node label.
	Name string
	// Path is the structural path in dotted form, empty for the document root.
	Path string
	// Content is the pretty-printed value.
	Content string
	// Format is the serialization used for Content.
	Format loader.Format
}

// PayloadFormat picks the serialization for a value read from source:
// YAML stays YAML, TOML objects stay TOML, everything else is JSON.
func PayloadFormat(source loader.Format, v value.Value) loader.Format {
	switch source {
	case loader.YAML:
		return loader.YAML
	case loader.TOML:
		if v.Kind == value.Object {
			return loader.TOML
		}
	}
	return loader.JSON
}

// Format serializes v in the given format. Formats without a writer fall
// back to JSON.
func Format(v value.Value, format loader.Format) (string, error) {
	switch format {
	case loader.YAML:
		return FormatYAML(v, YAMLFormatOptions{LiteralBlockStrings: true})
	case loader.TOML:
		return FormatTOML(v)
	default:
		return FormatJSON(v)
	}
}

// FormatJSON renders v as indented JSON with the source key order.
// Non-finite numbers are written as strings.
func FormatJSON(v value.Value) (string, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, v); err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("indent json: %w", err)
	}
	return out.String(), nil
}

func writeJSON(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind {
	case value.Null:
		buf.WriteString("null")
	case value.Bool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case value.Number:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return writeJSONString(buf, value.FormatNumber(v.Number))
		}
		buf.WriteString(value.FormatNumber(v.Number))
	case value.String:
		return writeJSONString(buf, v.Str)
	case value.Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.Object:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value kind %s", v.Kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode json string: %w", err)
	}
	buf.Write(b)
	return nil
}

// Stringify returns a single-line rendering of a primitive for row display.
// Composites render as compact JSON.
func Stringify(v value.Value) string {
	switch v.Kind {
	case value.String:
		return escapeScalarString(v.Str)
	case value.Array, value.Object:
		var buf bytes.Buffer
		if err := writeJSON(&buf, v); err != nil {
			return v.Text()
		}
		return buf.String()
	default:
		return v.Text()
	}
}

// StringifyPreserveNewlines keeps real line breaks in strings.
func StringifyPreserveNewlines(v value.Value) string {
	if v.Kind == value.String {
		return normalizeScalarString(v.Str, false)
	}
	return Stringify(v)
}

func escapeScalarString(s string) string {
	return normalizeScalarString(s, true)
}

// normalizeScalarString folds CRLF and bare CR into LF. With escapeNewlines
// every LF and tab is written as a literal escape so rows stay single-line.
func normalizeScalarString(s string, escapeNewlines bool) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if escapeNewlines {
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\t", "\\t")
	}
	return s
}

// Truncate shortens s to maxWidth terminal cells, ending with an ellipsis.
// A non-positive width disables truncation.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// TerminalWidth returns the width of stdout, or 120 when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
