package loader

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fioncat/otree/internal/value"
)

func TestParseYAMLSingleDocument(t *testing.T) {
	input := `name: test
count: 42
ratio: 0.5
enabled: yes
off: false
nothing: ~
version: "1.0"
when: 2024-01-02
tags:
  - a
  - b
`
	v, err := Parse([]byte(input), YAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "count", "ratio", "enabled", "off", "nothing", "version", "when", "tags"}, keysOf(v))
	assert.Equal(t, float64(42), mustGet(t, v, "count").Number)
	assert.Equal(t, 0.5, mustGet(t, v, "ratio").Number)
	// yaml.v3 follows YAML 1.2: "yes" is a plain string.
	assert.Equal(t, value.String, mustGet(t, v, "enabled").Kind)
	assert.Equal(t, value.Bool, mustGet(t, v, "off").Kind)
	assert.Equal(t, value.Null, mustGet(t, v, "nothing").Kind)
	assert.Equal(t, "1.0", mustGet(t, v, "version").Str)
	assert.Equal(t, "2024-01-02", mustGet(t, v, "when").Str)
	assert.Len(t, mustGet(t, v, "tags").Items, 2)
}

func TestParseYAMLMultiDocument(t *testing.T) {
	input := `name: Alice
---
name: Bob
---
name: Charlie`
	v, err := Parse([]byte(input), YAML)
	require.NoError(t, err)
	require.Equal(t, value.Array, v.Kind)
	require.Len(t, v.Items, 3)
	assert.Equal(t, "Charlie", mustGet(t, v.Items[2], "name").Str)
}

func TestParseYAMLNoDocument(t *testing.T) {
	_, err := Parse([]byte(""), YAML)
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "no document found", perr.Message)
}

func TestParseYAMLAnchorsAndMerge(t *testing.T) {
	input := `base: &base
  host: localhost
  port: 80
prod:
  <<: *base
  port: 443
copy: *base
`
	v, err := Parse([]byte(input), YAML)
	require.NoError(t, err)

	prod := mustGet(t, v, "prod")
	assert.ElementsMatch(t, []string{"host", "port"}, keysOf(prod))
	assert.Equal(t, float64(443), mustGet(t, prod, "port").Number)
	assert.Equal(t, "localhost", mustGet(t, prod, "host").Str)
	assert.Equal(t, "localhost", mustGet(t, v, "copy", "host").Str)
}

func TestParseYAMLSpecialFloats(t *testing.T) {
	v, err := Parse([]byte("a: .inf\nb: -.inf\nc: .nan\nd: 0x1F\n"), YAML)
	require.NoError(t, err)
	assert.True(t, math.IsInf(mustGet(t, v, "a").Number, 1))
	assert.True(t, math.IsInf(mustGet(t, v, "b").Number, -1))
	assert.True(t, math.IsNaN(mustGet(t, v, "c").Number))
	assert.Equal(t, float64(31), mustGet(t, v, "d").Number)
}

func TestParseYAMLDuplicateKeys(t *testing.T) {
	v, err := Parse([]byte("a: 1\nb: 0\na: 2\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keysOf(v))
	assert.Equal(t, float64(2), mustGet(t, v, "a").Number)
}

func TestParseYAMLErrorLine(t *testing.T) {
	_, err := Parse([]byte("a: 1\nb: [1, 2\nc: 3\n"), YAML)
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Greater(t, perr.Line, 0)
}

// nestedAliases builds levels anchors, each a list of ten aliases to the
// previous one, so the expanded document grows tenfold per level.
func nestedAliases(levels int) string {
	var b strings.Builder
	b.WriteString("a0: &a0 x\n")
	for i := 1; i <= levels; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*a%d, ", i-1), 10), ", ")
		fmt.Fprintf(&b, "a%d: &a%d [%s]\n", i, i, refs)
	}
	return b.String()
}

func TestParseYAMLExcessiveAliasing(t *testing.T) {
	start := time.Now()
	_, err := Parse([]byte(nestedAliases(9)), YAML)
	require.ErrorIs(t, err, ErrExcessiveAliasing)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Positive(t, perr.Line)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestParseYAMLSharedAliases(t *testing.T) {
	v, err := Parse([]byte(nestedAliases(3)), YAML)
	require.NoError(t, err)

	a3 := mustGet(t, v, "a3")
	require.Len(t, a3.Items, 10)
	require.Len(t, a3.Items[9].Items, 10)
	assert.Equal(t, "x", a3.Items[9].Items[0].Items[4].Str)
}
