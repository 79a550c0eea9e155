package tree

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fioncat/otree/internal/value"
)

// Path is the sequence of labels from the document root to a node. The
// document root itself has an empty path.
type Path []string

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Path returns the structural path of id.
func (t *Tree) Path(id NodeID) Path {
	if !t.valid(id) {
		return nil
	}
	var labels []string
	for cur := id; cur != 0; cur = t.nodes[cur].Parent {
		labels = append(labels, t.nodes[cur].Label)
	}
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}

// Resolve finds the node at path. Array steps must be decimal indices.
func (t *Tree) Resolve(path Path) (NodeID, error) {
	cur := NodeID(0)
	for depth, step := range path {
		next, ok := t.child(cur, step)
		if !ok {
			return NoNode, fmt.Errorf("resolve %s at %q: %w", path.String(), Path(path[:depth+1]).String(), ErrPathNotFound)
		}
		cur = next
	}
	return cur, nil
}

func (t *Tree) child(id NodeID, label string) (NodeID, bool) {
	n := &t.nodes[id]
	switch n.Kind {
	case value.Array:
		idx, err := strconv.Atoi(label)
		if err != nil || idx < 0 || idx >= len(n.Children) {
			return NoNode, false
		}
		return n.Children[idx], true
	case value.Object:
		for _, c := range n.Children {
			if t.nodes[c].Label == label {
				return c, true
			}
		}
	}
	return NoNode, false
}

// PathString renders the path of id, writing array steps as [i].
func (t *Tree) PathString(id NodeID) string {
	if !t.valid(id) || id == 0 {
		return ""
	}
	var steps []string
	for cur := id; cur != 0; cur = t.nodes[cur].Parent {
		steps = append(steps, t.formatStep(cur))
	}
	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if b.Len() > 0 && !strings.HasPrefix(step, "[") {
			b.WriteByte('.')
		}
		b.WriteString(step)
	}
	return b.String()
}

func (t *Tree) formatStep(id NodeID) string {
	n := t.nodes[id]
	if t.nodes[n.Parent].Kind == value.Array {
		return "[" + n.Label + "]"
	}
	return formatKey(n.Label)
}

func formatKey(key string) string {
	if identifierPattern.MatchString(key) {
		return key
	}
	return "[" + strconv.Quote(key) + "]"
}

// String renders p with every step written as an object key.
func (p Path) String() string {
	var b strings.Builder
	for _, step := range p {
		key := formatKey(step)
		if b.Len() > 0 && !strings.HasPrefix(key, "[") {
			b.WriteByte('.')
		}
		b.WriteString(key)
	}
	return b.String()
}

// ParsePath splits dotted and bracket notation into steps:
// "items[0].name" -> [items 0 name], `a["b.c"]` -> [a b.c].
func ParsePath(s string) (Path, error) {
	var parts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '.':
			flush()
		case '[':
			flush()
			j := i + 1
			if j < len(s) && s[j] == '"' {
				// quoted key: scan to the closing quote, honouring escapes
				k := j + 1
				for k < len(s) && s[k] != '"' {
					if s[k] == '\\' {
						k++
					}
					k++
				}
				if k+1 >= len(s) || s[k+1] != ']' {
					return nil, fmt.Errorf("unterminated quoted key in %q", s)
				}
				key, err := strconv.Unquote(s[j : k+1])
				if err != nil {
					return nil, fmt.Errorf("invalid quoted key in %q: %w", s, err)
				}
				parts = append(parts, key)
				i = k + 1
				continue
			}
			for j < len(s) && s[j] != ']' {
				j++
			}
			if j >= len(s) {
				return nil, fmt.Errorf("missing ']' in %q", s)
			}
			parts = append(parts, strings.TrimSpace(s[i+1:j]))
			i = j
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return parts, nil
}
