package loader

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/fioncat/otree/internal/value"
)

// parseHCL converts native HCL syntax. Attributes and blocks keep source
// order; blocks nest under their type and labels. Expressions that need
// variables or functions are kept as their source text.
func parseHCL(data []byte) (value.Value, error) {
	file, diags := hclsyntax.ParseConfig(data, "", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return value.Value{}, hclError(data, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return value.Value{}, newParseError(HCL, nil, "unexpected body type")
	}
	c := &hclConverter{src: data}
	return c.body(body, 0)
}

func hclError(data []byte, diags hcl.Diagnostics) *ParseError {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg = fmt.Sprintf("%s; %s", d.Summary, d.Detail)
		}
		perr := newParseError(HCL, diags, msg)
		if d.Subject != nil {
			perr.atOffset(data, int64(d.Subject.Start.Byte))
		}
		return perr
	}
	return newParseError(HCL, diags, diags.Error())
}

type hclConverter struct {
	src []byte
}

type hclItem struct {
	start int
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

func (c *hclConverter) body(body *hclsyntax.Body, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, tooDeep(HCL)
	}
	items := make([]hclItem, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		items = append(items, hclItem{start: attr.SrcRange.Start.Byte, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, hclItem{start: block.TypeRange.Start.Byte, block: block})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].start < items[j].start })

	obj := newHCLObject()
	for _, item := range items {
		if item.attr != nil {
			v, err := c.expr(item.attr.Expr, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			obj.setAttr(item.attr.Name, v)
			continue
		}
		v, err := c.body(item.block.Body, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		obj.addBlock(append([]string{item.block.Type}, item.block.Labels...), v)
	}
	return obj.build(), nil
}

// hclObject gathers the entries of one body level in first-seen key order.
// Values are built once in build, so repeated blocks cost no copying.
type hclObject struct {
	keys    []string
	entries map[string]*hclEntry
}

// hclEntry holds exactly one of: an attribute value, the bodies of blocks
// with no further labels, or the next label level.
type hclEntry struct {
	attr   *value.Value
	bodies []value.Value
	nested *hclObject
}

func newHCLObject() *hclObject {
	return &hclObject{entries: make(map[string]*hclEntry)}
}

func (o *hclObject) entry(key string) *hclEntry {
	e, ok := o.entries[key]
	if !ok {
		e = &hclEntry{}
		o.entries[key] = e
		o.keys = append(o.keys, key)
	}
	return e
}

// setAttr stores an attribute; a later entry of another kind under the same
// key replaces the earlier one in place.
func (o *hclObject) setAttr(key string, v value.Value) {
	*o.entry(key) = hclEntry{attr: &v}
}

// addBlock stores a block body at type -> label... Blocks repeated with the
// same type and labels collapse into an Array.
func (o *hclObject) addBlock(path []string, body value.Value) {
	e := o.entry(path[0])
	if len(path) == 1 {
		if e.attr != nil || e.nested != nil {
			*e = hclEntry{}
		}
		e.bodies = append(e.bodies, body)
		return
	}
	if e.nested == nil {
		*e = hclEntry{nested: newHCLObject()}
	}
	e.nested.addBlock(path[1:], body)
}

func (o *hclObject) build() value.Value {
	fields := make([]value.Field, 0, len(o.keys))
	for _, key := range o.keys {
		e := o.entries[key]
		var v value.Value
		switch {
		case e.attr != nil:
			v = *e.attr
		case e.nested != nil:
			v = e.nested.build()
		case len(e.bodies) == 1:
			v = e.bodies[0]
		default:
			v = value.NewArray(e.bodies...)
		}
		fields = append(fields, value.Field{Key: key, Value: v})
	}
	return value.NewObject(fields...)
}

// expr walks object and tuple constructors itself so key order survives;
// cty objects iterate their attributes sorted.
func (c *hclConverter) expr(e hclsyntax.Expression, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, tooDeep(HCL)
	}
	switch t := e.(type) {
	case *hclsyntax.ObjectConsExpr:
		b := value.NewObjectBuilder(len(t.Items))
		for _, item := range t.Items {
			v, err := c.expr(item.ValueExpr, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			b.Set(c.objectKey(item.KeyExpr), v)
		}
		return b.Build(), nil
	case *hclsyntax.TupleConsExpr:
		items := make([]value.Value, 0, len(t.Exprs))
		for _, item := range t.Exprs {
			v, err := c.expr(item, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.NewArray(items...), nil
	}
	v, diags := e.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return value.NewString(c.source(e)), nil
	}
	return ctyToValue(v, depth)
}

func (c *hclConverter) objectKey(e hclsyntax.Expression) string {
	v, diags := e.Value(nil)
	if diags.HasErrors() || v.IsNull() || !v.IsKnown() {
		return c.source(e)
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		return fmt.Sprint(v.True())
	}
	return c.source(e)
}

func (c *hclConverter) source(e hclsyntax.Expression) string {
	return string(e.Range().SliceBytes(c.src))
}

func ctyToValue(v cty.Value, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, tooDeep(HCL)
	}
	if v.IsNull() {
		return value.NewNull(), nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return value.NewString(v.AsString()), nil
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return value.NewNumber(f), nil
	case ty == cty.Bool:
		return value.NewBool(v.True()), nil
	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		items := make([]value.Value, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := ctyToValue(ev, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, item)
		}
		return value.NewArray(items...), nil
	case ty.IsMapType(), ty.IsObjectType():
		b := value.NewObjectBuilder(v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			item, err := ctyToValue(ev, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			b.Set(k.AsString(), item)
		}
		return b.Build(), nil
	}
	return value.NewString(v.GoString()), nil
}
