package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fioncat/otree/internal/value"
)

func TestParseTOMLKeepsSourceOrder(t *testing.T) {
	input := `title = "demo"
zeta = 1
alpha = 2

[server]
port = 8080
host = "localhost"

[database.credentials]
username = "admin"
password = "secret"

[[users]]
name = "Alice"
id = 1

[[users]]
name = "Bob"
id = 2
`
	v, err := Parse([]byte(input), TOML)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "zeta", "alpha", "server", "database", "users"}, keysOf(v))
	assert.Equal(t, []string{"port", "host"}, keysOf(mustGet(t, v, "server")))
	assert.Equal(t, []string{"username", "password"}, keysOf(mustGet(t, v, "database", "credentials")))

	users := mustGet(t, v, "users")
	require.Equal(t, value.Array, users.Kind)
	require.Len(t, users.Items, 2)
	assert.Equal(t, []string{"name", "id"}, keysOf(users.Items[1]))
	assert.Equal(t, float64(2), mustGet(t, users.Items[1], "id").Number)
}

func TestParseTOMLInlineTablesAndDottedKeys(t *testing.T) {
	input := `point = { y = 2, x = 1 }
site.name = "x"
site.id = 3
points = [{ b = 1, a = 2 }]
`
	v, err := Parse([]byte(input), TOML)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, keysOf(mustGet(t, v, "point")))
	assert.Equal(t, []string{"name", "id"}, keysOf(mustGet(t, v, "site")))
	points := mustGet(t, v, "points")
	require.Len(t, points.Items, 1)
	assert.Equal(t, []string{"b", "a"}, keysOf(points.Items[0]))
}

func TestParseTOMLScalars(t *testing.T) {
	input := `i = 7
f = 1.25
b = true
d = 1979-05-27
dt = 1979-05-27T07:32:00Z
`
	v, err := Parse([]byte(input), TOML)
	require.NoError(t, err)
	assert.Equal(t, float64(7), mustGet(t, v, "i").Number)
	assert.Equal(t, 1.25, mustGet(t, v, "f").Number)
	assert.True(t, mustGet(t, v, "b").Bool)
	assert.Equal(t, "1979-05-27", mustGet(t, v, "d").Str)
	assert.Equal(t, "1979-05-27T07:32:00Z", mustGet(t, v, "dt").Str)
}

func TestParseTOMLDatesKeepSourceText(t *testing.T) {
	input := `space = 1979-05-27 07:32:00Z
offset = 1979-05-27T00:32:00+00:00
local = 1979-05-27T07:32:00.5
clock = 07:32:00
history = [1979-05-27 00:00:00Z, 1980-01-01T00:00:00-07:00]

[[release]]
at = 2024-01-02 03:04:05+01:00

[[release]]
at = 2024-02-03T04:05:06Z
`
	v, err := Parse([]byte(input), TOML)
	require.NoError(t, err)

	tests := map[string]string{
		"space":  "1979-05-27 07:32:00Z",
		"offset": "1979-05-27T00:32:00+00:00",
		"local":  "1979-05-27T07:32:00.5",
		"clock":  "07:32:00",
	}
	for key, want := range tests {
		assert.Equal(t, want, mustGet(t, v, key).Str, key)
	}

	history := mustGet(t, v, "history")
	require.Len(t, history.Items, 2)
	assert.Equal(t, "1979-05-27 00:00:00Z", history.Items[0].Str)
	assert.Equal(t, "1980-01-01T00:00:00-07:00", history.Items[1].Str)

	releases := mustGet(t, v, "release")
	require.Len(t, releases.Items, 2)
	assert.Equal(t, "2024-01-02 03:04:05+01:00", mustGet(t, releases.Items[0], "at").Str)
	assert.Equal(t, "2024-02-03T04:05:06Z", mustGet(t, releases.Items[1], "at").Str)
}

func TestParseTOMLEmpty(t *testing.T) {
	v, err := Parse([]byte(""), TOML)
	require.NoError(t, err)
	assert.Equal(t, value.Object, v.Kind)
	assert.Equal(t, 0, v.Len())
}

func TestParseTOMLErrorPosition(t *testing.T) {
	_, err := Parse([]byte("a = 1\nb = = 2\n"), TOML)
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
}
