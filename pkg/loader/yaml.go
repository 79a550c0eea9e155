package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fioncat/otree/internal/value"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// yamlAliasFloor is the number of alias-expanded nodes always allowed. Past
// it, expansions may not outnumber the written nodes more than
// yamlAliasRatio times.
const (
	yamlAliasFloor = 100_000
	yamlAliasRatio = 10
)

// yamlConverter turns a yaml.Node tree into a Value. Anchored nodes are
// converted once and shared by every alias; values are immutable, so
// sharing is safe. total counts the nodes the expanded document has,
// aliased the part of total reached through aliases.
type yamlConverter struct {
	total   int
	aliased int
	anchors map[*yaml.Node]yamlAnchor
}

type yamlAnchor struct {
	v    value.Value
	size int
}

func newYAMLConverter() *yamlConverter {
	return &yamlConverter{anchors: make(map[*yaml.Node]yamlAnchor)}
}

// parseYAML decodes every document in data. One document yields its value,
// several are wrapped into a top-level Array.
func parseYAML(data []byte) (value.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	conv := newYAMLConverter()
	var docs []value.Value
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return value.Value{}, yamlError(err)
		}
		v, err := conv.convert(&node, 0)
		if err != nil {
			return value.Value{}, err
		}
		docs = append(docs, v)
	}
	switch len(docs) {
	case 0:
		return value.Value{}, newParseError(YAML, nil, "no document found")
	case 1:
		return docs[0], nil
	default:
		return value.NewArray(docs...), nil
	}
}

func yamlError(err error) *ParseError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	perr := newParseError(YAML, err, msg)
	if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			perr.atLine(line, 0)
		}
	}
	return perr
}

func yamlNodeError(n *yaml.Node, err error, msg string) *ParseError {
	return newParseError(YAML, err, msg).atLine(n.Line, n.Column)
}

func (c *yamlConverter) convert(n *yaml.Node, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, tooDeep(YAML).atLine(n.Line, n.Column)
	}
	if n.Anchor == "" || n.Kind == yaml.AliasNode {
		return c.convertNode(n, depth)
	}
	start := c.total
	v, err := c.convertNode(n, depth)
	if err != nil {
		return value.Value{}, err
	}
	c.anchors[n] = yamlAnchor{v: v, size: c.total - start}
	return v, nil
}

func (c *yamlConverter) convertNode(n *yaml.Node, depth int) (value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.NewNull(), nil
		}
		return c.convert(n.Content[0], depth)
	case yaml.SequenceNode:
		c.total++
		items := make([]value.Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := c.convert(child, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.NewArray(items...), nil
	case yaml.MappingNode:
		c.total++
		return c.convertMapping(n, depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return value.Value{}, yamlNodeError(n, nil, fmt.Sprintf("unknown anchor %q", n.Value))
		}
		return c.expandAlias(n, depth)
	case yaml.ScalarNode:
		c.total++
		return convertYAMLScalar(n)
	}
	return value.Value{}, yamlNodeError(n, nil, fmt.Sprintf("unsupported node kind %d", n.Kind))
}

// expandAlias reuses the anchor's converted value and charges its size
// against the alias budget.
func (c *yamlConverter) expandAlias(n *yaml.Node, depth int) (value.Value, error) {
	a, ok := c.anchors[n.Alias]
	if ok {
		c.total += a.size
		c.aliased += a.size
	} else {
		start := c.total
		v, err := c.convert(n.Alias, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		a = yamlAnchor{v: v}
		c.aliased += c.total - start
	}
	if written := c.total - c.aliased; c.aliased > max(yamlAliasFloor, yamlAliasRatio*written) {
		return value.Value{}, yamlNodeError(n, ErrExcessiveAliasing, ErrExcessiveAliasing.Error())
	}
	return a.v, nil
}

// convertMapping applies merge keys (<<) without letting them override
// keys written explicitly in the same mapping.
func (c *yamlConverter) convertMapping(n *yaml.Node, depth int) (value.Value, error) {
	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if !isMergeKey(n.Content[i]) {
			explicit[yamlKey(n.Content[i])] = true
		}
	}

	b := value.NewObjectBuilder(len(n.Content) / 2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if isMergeKey(k) {
			if err := c.merge(b, v, explicit, depth+1); err != nil {
				return value.Value{}, err
			}
			continue
		}
		cv, err := c.convert(v, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		b.Set(yamlKey(k), cv)
	}
	return b.Build(), nil
}

func (c *yamlConverter) merge(b *value.ObjectBuilder, src *yaml.Node, explicit map[string]bool, depth int) error {
	if src.Kind == yaml.SequenceNode {
		for _, item := range src.Content {
			if err := c.merge(b, item, explicit, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	v, err := c.convert(src, depth)
	if err != nil {
		return err
	}
	if v.Kind != value.Object {
		return yamlNodeError(src, nil, "merge value must be a mapping")
	}
	for _, f := range v.Fields {
		if explicit[f.Key] {
			continue
		}
		if _, ok := b.Lookup(f.Key); ok {
			continue
		}
		b.Set(f.Key, f.Value)
	}
	return nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

// yamlKey renders a mapping key. Non-scalar keys fall back to their
// flow-style serialization.
func yamlKey(n *yaml.Node) string {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	clone := *n
	clone.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&clone)
	if err != nil {
		return n.Value
	}
	return strings.TrimSpace(string(out))
}

func convertYAMLScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.NewNull(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, yamlNodeError(n, err, err.Error())
		}
		return value.NewBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return value.NewNumber(float64(i)), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return value.NewNumber(float64(u)), nil
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64); err == nil || math.IsInf(f, 0) {
			return value.NewNumber(f), nil
		}
		return value.NewString(n.Value), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.NewString(n.Value), nil
		}
		return value.NewNumber(f), nil
	default:
		return value.NewString(n.Value), nil
	}
}
