// Package loader turns raw documents into the canonical value tree.
// Every supported format is one pure function selected by Format.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fioncat/otree/internal/value"
)

// MaxDepth bounds the nesting depth accepted by every adapter.
const MaxDepth = 10000

// Format is the closed set of supported input formats.
type Format int

const (
	JSON Format = iota
	JSONL
	YAML
	TOML
	XML
	HCL
)

var formatNames = map[Format]string{
	JSON:  "json",
	JSONL: "jsonl",
	YAML:  "yaml",
	TOML:  "toml",
	XML:   "xml",
	HCL:   "hcl",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Formats lists every supported format in declaration order.
func Formats() []Format {
	return []Format{JSON, JSONL, YAML, TOML, XML, HCL}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "jsonl", "ndjson":
		return JSONL, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "xml":
		return XML, nil
	case "hcl", "tf", "tfvars":
		return HCL, nil
	}
	return 0, fmt.Errorf("unsupported format %q", name)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, true
	case ".jsonl", ".ndjson":
		return JSONL, true
	case ".yaml", ".yml":
		return YAML, true
	case ".toml":
		return TOML, true
	case ".xml":
		return XML, true
	case ".hcl", ".tf", ".tfvars":
		return HCL, true
	}
	return 0, false
}

// Parse converts data in the given format into a Value.
// Malformed input yields a *ParseError.
func Parse(data []byte, format Format) (value.Value, error) {
	switch format {
	case JSON:
		return parseJSON(data)
	case JSONL:
		return parseJSONL(data)
	case YAML:
		return parseYAML(data)
	case TOML:
		return parseTOML(data)
	case XML:
		return parseXML(data)
	case HCL:
		return parseHCL(data)
	}
	return value.Value{}, fmt.Errorf("unsupported format %v", format)
}

// LoadFile reads path and parses it. When format is nil the format is
// inferred from the extension, falling back to content detection.
func LoadFile(path string, format *Format) (value.Value, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, 0, fmt.Errorf("read %s: %w", path, err)
	}
	f := ResolveFormat(path, data, format)
	v, err := Parse(data, f)
	return v, f, err
}

// ResolveFormat picks the explicit format if set, then the extension of
// path, then Detect.
func ResolveFormat(path string, data []byte, explicit *Format) Format {
	if explicit != nil {
		return *explicit
	}
	if path != "" {
		if f, ok := FormatFromPath(path); ok {
			return f
		}
	}
	return Detect(data)
}

// Detect guesses the format of data when neither a flag nor a file
// extension is available, e.g. for piped stdin.
func Detect(data []byte) Format {
	input := strings.TrimSpace(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	if input == "" {
		return JSON
	}
	if strings.HasPrefix(input, "<") {
		return XML
	}
	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyJSONL(lines) {
		return JSONL
	}
	if isLikelyHCL(lines) {
		return HCL
	}
	if isLikelyTOML(lines) {
		return TOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return JSON
	}
	return YAML
}

// isLikelyJSONL reports whether a majority of non-empty lines hold one
// complete JSON object or array each.
func isLikelyJSONL(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
			(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && strings.Contains(trimmed, ",")) {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

var (
	// [server], [[items]], ["table name"], [database.credentials]
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// name = "value", database.host = "localhost"
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
	// resource "aws_instance" "web" {, locals {
	hclBlockPattern = regexp.MustCompile(`^\s*[a-zA-Z_][a-zA-Z0-9_-]*(?:\s+(?:"[^"]*"|[a-zA-Z_][a-zA-Z0-9_-]*))*\s*\{\s*$`)
)

func isLikelyHCL(lines []string) bool {
	for _, line := range lines {
		if hclBlockPattern.MatchString(line) {
			return true
		}
	}
	return false
}

func isLikelyTOML(lines []string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}
	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
