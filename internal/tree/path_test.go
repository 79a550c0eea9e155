package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fioncat/otree/internal/value"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Path
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "dotted", input: "a.b.c", want: Path{"a", "b", "c"}},
		{name: "bracket index", input: "items[0]", want: Path{"items", "0"}},
		{name: "mixed", input: "items[0].name", want: Path{"items", "0", "name"}},
		{name: "quoted key", input: `root["bad-key"]`, want: Path{"root", "bad-key"}},
		{name: "quoted key with dot and bracket", input: `a["x.y]"].z`, want: Path{"a", "x.y]", "z"}},
		{name: "escaped quote", input: `["say \"hi\""]`, want: Path{`say "hi"`}},
		{name: "missing bracket", input: "items[0", wantErr: true},
		{name: "unterminated quote", input: `a["b`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	v := value.NewObject(
		value.Field{Key: "plain", Value: value.NewArray(value.NewObject(
			value.Field{Key: "a.b", Value: value.NewNumber(1)},
		))},
		value.Field{Key: "with space", Value: value.NewBool(true)},
	)
	tr := Build(v)
	for id := NodeID(0); int(id) < tr.Len(); id++ {
		s := tr.PathString(id)
		p, err := ParsePath(s)
		require.NoError(t, err, s)
		got, err := tr.Resolve(p)
		require.NoError(t, err, s)
		assert.Equal(t, id, got, s)
		assert.Equal(t, tr.Path(id), p)
	}
	deep, err := tr.Resolve(Path{"plain", "0", "a.b"})
	require.NoError(t, err)
	assert.Equal(t, `plain[0]["a.b"]`, tr.PathString(deep))
	assert.Equal(t, `plain["0"]["a.b"]`, tr.Path(deep).String())
}

func TestResolveMiss(t *testing.T) {
	tr := Build(sample())
	tests := []Path{
		{"missing"},
		{"items", "5"},
		{"items", "x"},
		{"items", "-1"},
		{"name", "deeper"},
	}
	for _, p := range tests {
		t.Run(p.String(), func(t *testing.T) {
			id, err := tr.Resolve(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPathNotFound))
			assert.Equal(t, NoNode, id)
		})
	}
}

func TestPathOfRootIsEmpty(t *testing.T) {
	tr := Build(sample())
	assert.Empty(t, tr.Path(tr.DocumentRoot()))
	assert.Equal(t, "", tr.PathString(tr.DocumentRoot()))
	id, err := tr.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, tr.DocumentRoot(), id)
}
