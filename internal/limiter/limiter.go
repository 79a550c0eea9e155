// Package limiter trims the top-level records of a document, e.g. the
// lines of a JSONL log.
package limiter

import (
	"errors"
	"fmt"

	"github.com/fioncat/otree/internal/value"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// ErrLimitAndTail is returned by Validate when both ends of the record list
// are requested at once.
var ErrLimitAndTail = errors.New("--limit and --tail are mutually exclusive")

// Validate rejects negative counts and Limit combined with Tail. Offset is
// allowed alongside Tail but has no effect there.
func (c Config) Validate() error {
	for _, n := range []struct {
		flag  string
		value int
	}{{"limit", c.Limit}, {"offset", c.Offset}, {"tail", c.Tail}} {
		if n.value < 0 {
			return fmt.Errorf("--%s must be non-negative, got %d", n.flag, n.value)
		}
	}
	if c.Limit > 0 && c.Tail > 0 {
		return ErrLimitAndTail
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Apply limits the items of a top-level Array or the fields of a top-level
// Object, keeping document order. Primitives are returned unchanged.
func (c Config) Apply(v value.Value) value.Value {
	if !c.IsActive() {
		return v
	}
	switch v.Kind {
	case value.Array:
		start, end := c.window(len(v.Items))
		return value.NewArray(v.Items[start:end]...)
	case value.Object:
		start, end := c.window(len(v.Fields))
		return value.NewObject(v.Fields[start:end]...)
	default:
		return v
	}
}

// window returns the [start, end) range selected out of length records.
func (c Config) window(length int) (int, int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start := min(c.Offset, length)
	end := length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}
