package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fioncat/otree/internal/value"
)

// jsonParser walks the token stream of encoding/json so object key order
// survives, which decoding into map[string]any would lose.
type jsonParser struct {
	dec     *json.Decoder
	data    []byte
	started bool
}

func parseJSON(data []byte) (value.Value, error) {
	v, perr := decodeJSON(data)
	if perr != nil {
		perr.Format = JSON
		return value.Value{}, perr
	}
	return v, nil
}

func decodeJSON(data []byte) (value.Value, *ParseError) {
	p := &jsonParser{dec: json.NewDecoder(bytes.NewReader(data)), data: data}
	p.dec.UseNumber()

	v, err := p.parseValue(0)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			msg := "unexpected end of input"
			if !p.started {
				msg = "empty document"
			}
			return value.Value{}, newParseError(JSON, err, msg).atOffset(data, int64(len(data)))
		}
		return value.Value{}, p.wrap(err)
	}
	if _, err := p.dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return value.Value{}, p.wrap(err)
		}
		return value.Value{}, newParseError(JSON, nil, "unexpected data after top-level value").atOffset(data, p.dec.InputOffset())
	}
	return v, nil
}

func (p *jsonParser) wrap(err error) *ParseError {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr
	}
	offset := p.dec.InputOffset()
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		offset = int64(len(p.data))
	}
	return newParseError(JSON, err, err.Error()).atOffset(p.data, offset)
}

func (p *jsonParser) parseValue(depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, tooDeep(JSON).atOffset(p.data, p.dec.InputOffset())
	}
	tok, err := p.dec.Token()
	if err != nil {
		return value.Value{}, err
	}
	p.started = true
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.parseObject(depth)
		case '[':
			return p.parseArray(depth)
		}
		return value.Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
	case string:
		return value.NewString(t), nil
	case json.Number:
		return parseJSONNumber(t), nil
	case bool:
		return value.NewBool(t), nil
	case nil:
		return value.NewNull(), nil
	}
	return value.Value{}, fmt.Errorf("unexpected token %v", tok)
}

func (p *jsonParser) parseObject(depth int) (value.Value, error) {
	b := value.NewObjectBuilder(0)
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return value.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("object key must be a string, got %v", tok)
		}
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		b.Set(key, v)
	}
	// closing '}'
	if _, err := p.dec.Token(); err != nil {
		return value.Value{}, err
	}
	return b.Build(), nil
}

func (p *jsonParser) parseArray(depth int) (value.Value, error) {
	items := []value.Value{}
	for p.dec.More() {
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	if _, err := p.dec.Token(); err != nil {
		return value.Value{}, err
	}
	return value.NewArray(items...), nil
}

// parseJSONNumber keeps out-of-range numbers as +/-Inf rather than failing.
func parseJSONNumber(n json.Number) value.Value {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return value.NewString(n.String())
		}
	}
	return value.NewNumber(f)
}
