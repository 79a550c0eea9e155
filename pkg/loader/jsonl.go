package loader

import (
	"bytes"

	"github.com/fioncat/otree/internal/value"
)

// parseJSONL parses one JSON value per non-blank line and wraps them into a
// top-level Array. A single bad line fails the whole document.
func parseJSONL(data []byte) (value.Value, error) {
	items := []value.Value{}
	lineStart := 0
	for lineNo := 1; lineStart <= len(data); lineNo++ {
		end := bytes.IndexByte(data[lineStart:], '\n')
		var line []byte
		if end < 0 {
			line = data[lineStart:]
		} else {
			line = data[lineStart : lineStart+end]
		}
		if len(bytes.TrimSpace(line)) > 0 {
			v, perr := decodeJSON(line)
			if perr != nil {
				perr.Format = JSONL
				perr.Line = lineNo
				if perr.Offset >= 0 {
					perr.Offset += int64(lineStart)
				}
				return value.Value{}, perr
			}
			items = append(items, v)
		}
		if end < 0 {
			break
		}
		lineStart += end + 1
	}
	return value.NewArray(items...), nil
}
