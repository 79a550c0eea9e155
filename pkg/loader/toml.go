package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/fioncat/otree/internal/value"
)

// parseTOML decodes values with go-toml and recovers key order and the
// source text of dates and times from the expression stream of its unstable
// parser, since the decoded maps are unordered. Keys the source pass did not
// see are appended sorted.
func parseTOML(data []byte) (value.Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		perr := newParseError(TOML, err, err.Error())
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			perr.atLine(row, col)
		}
		return value.Value{}, perr
	}
	c := &tomlConverter{src: scanTOMLSource(data)}
	return c.convert(raw, nil, 0)
}

type tomlConverter struct {
	src *tomlSource
}

func (c *tomlConverter) convert(v any, path []string, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, tooDeep(TOML)
	}
	switch t := v.(type) {
	case nil:
		return value.NewNull(), nil
	case map[string]any:
		b := value.NewObjectBuilder(len(t))
		for _, key := range c.orderedKeys(path, t) {
			child, err := c.convert(t[key], appendPath(path, key), depth+1)
			if err != nil {
				return value.Value{}, err
			}
			b.Set(key, child)
		}
		return b.Build(), nil
	case []any:
		items := make([]value.Value, 0, len(t))
		for _, item := range t {
			child, err := c.convert(item, path, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, child)
		}
		return value.NewArray(items...), nil
	case string:
		return value.NewString(t), nil
	case bool:
		return value.NewBool(t), nil
	case int64:
		return value.NewNumber(float64(t)), nil
	case float64:
		return value.NewNumber(t), nil
	case time.Time:
		return value.NewString(c.src.dateText(path, t.Format(time.RFC3339Nano))), nil
	case fmt.Stringer:
		return value.NewString(c.src.dateText(path, t.String())), nil
	default:
		return value.NewString(fmt.Sprint(t)), nil
	}
}

func (c *tomlConverter) orderedKeys(path []string, m map[string]any) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, key := range c.src.order[joinPath(path)] {
		if _, ok := m[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// tomlSource is what the decoder drops: each table path (array indices
// dropped) maps to its child keys in first-seen order, and to the source
// text of the dates and times under it in document order.
type tomlSource struct {
	order map[string][]string
	seen  map[string]bool
	dates map[string][]string
}

// scanTOMLSource walks the expression stream. Parse errors end the pass
// early; decoding has already validated the document.
func scanTOMLSource(data []byte) *tomlSource {
	r := &tomlSource{
		order: make(map[string][]string),
		seen:  make(map[string]bool),
		dates: make(map[string][]string),
	}
	var p unstable.Parser
	p.Reset(data)
	var current []string
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = tomlKeyPath(e.Key())
			r.add(current)
		case unstable.KeyValue:
			r.keyValue(current, e)
		}
	}
	return r
}

// dateText pops the next recorded source text for a date or time at path.
// Values are converted in document order, the order the queue was filled.
func (r *tomlSource) dateText(path []string, fallback string) string {
	key := joinPath(path)
	queue := r.dates[key]
	if len(queue) == 0 {
		return fallback
	}
	r.dates[key] = queue[1:]
	return queue[0]
}

func (r *tomlSource) add(path []string) {
	for i := range path {
		full := joinPath(path[:i+1])
		if r.seen[full] {
			continue
		}
		r.seen[full] = true
		parent := joinPath(path[:i])
		r.order[parent] = append(r.order[parent], path[i])
	}
}

func (r *tomlSource) keyValue(prefix []string, kv *unstable.Node) {
	path := append(append([]string{}, prefix...), tomlKeyPath(kv.Key())...)
	r.add(path)
	r.value(path, kv.Value())
}

func (r *tomlSource) value(path []string, v *unstable.Node) {
	switch v.Kind {
	case unstable.InlineTable:
		it := v.Children()
		for it.Next() {
			if n := it.Node(); n.Kind == unstable.KeyValue {
				r.keyValue(path, n)
			}
		}
	case unstable.Array:
		it := v.Children()
		for it.Next() {
			r.value(path, it.Node())
		}
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		key := joinPath(path)
		r.dates[key] = append(r.dates[key], string(v.Data))
	}
}

func tomlKeyPath(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func joinPath(path []string) string {
	return strings.Join(path, "\x00")
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}
