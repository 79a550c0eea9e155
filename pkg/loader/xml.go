package loader

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fioncat/otree/internal/value"
)

const (
	xmlAttrPrefix = "@"
	xmlTextKey    = "#text"
)

// xmlElement collects one open element until its end tag arrives.
// Children are grouped by tag in first-seen order and turned into Values
// once, when the element closes.
type xmlElement struct {
	name     string
	attrs    []value.Field
	tags     []string
	children map[string][]value.Value
	text     []string
}

func newXMLElement(name string) *xmlElement {
	return &xmlElement{name: name, children: make(map[string][]value.Value)}
}

func (e *xmlElement) addChild(name string, v value.Value) {
	if _, ok := e.children[name]; !ok {
		e.tags = append(e.tags, name)
	}
	e.children[name] = append(e.children[name], v)
}

// childFields returns one field per tag; repeated tags collapse into an
// Array at the position of the first occurrence.
func (e *xmlElement) childFields() []value.Field {
	fields := make([]value.Field, 0, len(e.tags))
	for _, tag := range e.tags {
		vs := e.children[tag]
		if len(vs) == 1 {
			fields = append(fields, value.Field{Key: tag, Value: vs[0]})
			continue
		}
		fields = append(fields, value.Field{Key: tag, Value: value.NewArray(vs...)})
	}
	return fields
}

// build maps the element onto a Value: plain text for simple elements,
// an Object once attributes or child elements are present.
func (e *xmlElement) build() value.Value {
	text := strings.Join(e.text, " ")
	if len(e.attrs) == 0 && len(e.tags) == 0 {
		if text == "" {
			return value.NewNull()
		}
		return value.NewString(text)
	}
	b := value.NewObjectBuilder(len(e.attrs) + len(e.tags) + 1)
	for _, attr := range e.attrs {
		b.Set(attr.Key, attr.Value)
	}
	for _, f := range e.childFields() {
		b.Set(f.Key, f.Value)
	}
	if text != "" {
		b.Set(xmlTextKey, value.NewString(text))
	}
	return b.Build()
}

// parseXML uses raw tokens so prefixed names keep their source spelling;
// start/end tag pairing is checked here instead.
func parseXML(data []byte) (value.Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	document := newXMLElement("")
	stack := []*xmlElement{document}
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return value.Value{}, xmlError(dec, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > MaxDepth {
				line, col := dec.InputPos()
				return value.Value{}, tooDeep(XML).atLine(line, col)
			}
			el := newXMLElement(xmlName(t.Name))
			for _, attr := range t.Attr {
				el.attrs = append(el.attrs, value.Field{
					Key:   xmlAttrPrefix + xmlName(attr.Name),
					Value: value.NewString(attr.Value),
				})
			}
			stack = append(stack, el)
		case xml.EndElement:
			name := xmlName(t.Name)
			top := stack[len(stack)-1]
			if len(stack) == 1 || top.name != name {
				line, col := dec.InputPos()
				return value.Value{}, newParseError(XML, nil,
					fmt.Sprintf("unexpected end element </%s>", name)).atLine(line, col)
			}
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].addChild(name, top.build())
		case xml.CharData:
			if len(stack) == 1 {
				continue
			}
			if text := strings.TrimSpace(string(t)); text != "" {
				top := stack[len(stack)-1]
				top.text = append(top.text, text)
			}
		}
	}
	if len(stack) > 1 {
		line, col := dec.InputPos()
		return value.Value{}, newParseError(XML, io.ErrUnexpectedEOF,
			fmt.Sprintf("element <%s> is not closed", stack[len(stack)-1].name)).atLine(line, col)
	}
	if len(document.tags) == 0 {
		return value.Value{}, newParseError(XML, nil, "no root element")
	}
	return value.NewObject(document.childFields()...), nil
}

func xmlName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func xmlError(dec *xml.Decoder, err error) *ParseError {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return newParseError(XML, err, syntaxErr.Msg).atLine(syntaxErr.Line, 0)
	}
	line, col := dec.InputPos()
	return newParseError(XML, err, err.Error()).atLine(line, col)
}
