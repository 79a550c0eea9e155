package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/pelletier/go-toml/v2"

	"github.com/fioncat/otree/internal/value"
)

// ErrNotTOML is returned for values TOML cannot express: non-object
// documents and nulls.
var ErrNotTOML = errors.New("value cannot be represented as toml")

// FormatTOML renders an object as a TOML document. Keys are written in
// sorted order.
func FormatTOML(v value.Value) (string, error) {
	if v.Kind != value.Object {
		return "", fmt.Errorf("%s document: %w", v.Kind, ErrNotTOML)
	}
	doc, err := tomlValue(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode toml: %w", err)
	}
	return buf.String(), nil
}

func tomlValue(v value.Value) (any, error) {
	switch v.Kind {
	case value.Null:
		return nil, fmt.Errorf("null: %w", ErrNotTOML)
	case value.Bool:
		return v.Bool, nil
	case value.Number:
		if v.Number == math.Trunc(v.Number) && math.Abs(v.Number) < 1<<53 {
			return int64(v.Number), nil
		}
		return v.Number, nil
	case value.String:
		return v.Str, nil
	case value.Array:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			converted, err := tomlValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, converted)
		}
		return items, nil
	default:
		fields := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			converted, err := tomlValue(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Key, err)
			}
			fields[f.Key] = converted
		}
		return fields, nil
	}
}
