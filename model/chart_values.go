package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DataPoint is a single entry of a dataset. Most charts carry plain numbers;
// scatter charts carry {x, y} pairs. The JSON form matches what the charting
// library expects for each case, and the BSON form mirrors it.
type DataPoint struct {
	Value *float64
	X     *float64
	Y     *float64
}

type xyPoint struct {
	X *float64 `json:"x" bson:"x"`
	Y *float64 `json:"y" bson:"y"`
}

// Value returns a plain numeric data point.
func Value(v float64) DataPoint {
	return DataPoint{Value: &v}
}

// Point returns a scatter data point.
func Point(x, y float64) DataPoint {
	return DataPoint{X: &x, Y: &y}
}

// IsPoint reports whether the data point is an {x, y} pair.
func (p DataPoint) IsPoint() bool {
	return p.X != nil || p.Y != nil
}

// MarshalJSON renders numbers as numbers and pairs as objects.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	if p.IsPoint() {
		return json.Marshal(xyPoint{X: p.X, Y: p.Y})
	}
	if p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}

// UnmarshalJSON accepts a number, an {x, y} object or null.
func (p *DataPoint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*p = DataPoint{}
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '{':
		var xy xyPoint
		if err := json.Unmarshal(b, &xy); err != nil {
			return fmt.Errorf("invalid data point: %w", err)
		}
		p.X, p.Y = xy.X, xy.Y
		return nil
	default:
		var v float64
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("data point must be a number or {x, y} object")
		}
		p.Value = &v
		return nil
	}
}

// MarshalBSONValue stores the data point in the same shape as its JSON form.
func (p DataPoint) MarshalBSONValue() (byte, []byte, error) {
	if p.IsPoint() {
		t, data, err := bson.MarshalValue(xyPoint{X: p.X, Y: p.Y})
		return byte(t), data, err
	}
	if p.Value == nil {
		return byte(bson.TypeNull), nil, nil
	}
	t, data, err := bson.MarshalValue(*p.Value)
	return byte(t), data, err
}

// UnmarshalBSONValue accepts any numeric type, an {x, y} document or null.
func (p *DataPoint) UnmarshalBSONValue(typ byte, data []byte) error {
	*p = DataPoint{}
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch rv.Type {
	case bson.TypeNull, bson.TypeUndefined:
		return nil
	case bson.TypeEmbeddedDocument:
		var xy xyPoint
		if err := rv.Unmarshal(&xy); err != nil {
			return fmt.Errorf("invalid data point: %w", err)
		}
		p.X, p.Y = xy.X, xy.Y
		return nil
	}
	v, ok := rv.AsFloat64OK()
	if !ok {
		return fmt.Errorf("data point must be a number or {x, y} document, got %s", rv.Type)
	}
	p.Value = &v
	return nil
}

// ColorSpec holds either one CSS color or a list of them, remembering which
// form the client sent so it round-trips unchanged.
type ColorSpec struct {
	Colors []string
	List   bool
}

// SingleColor returns a color spec rendered as a plain string.
func SingleColor(c string) *ColorSpec {
	return &ColorSpec{Colors: []string{c}}
}

// ColorList returns a color spec rendered as an array.
func ColorList(colors ...string) *ColorSpec {
	return &ColorSpec{Colors: append([]string{}, colors...), List: true}
}

func (c ColorSpec) clone() ColorSpec {
	return ColorSpec{Colors: append([]string(nil), c.Colors...), List: c.List}
}

// MarshalJSON writes a string for single colors and an array otherwise.
func (c ColorSpec) MarshalJSON() ([]byte, error) {
	if !c.List && len(c.Colors) == 1 {
		return json.Marshal(c.Colors[0])
	}
	if c.Colors == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Colors)
}

// UnmarshalJSON accepts a string or an array of strings.
func (c *ColorSpec) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = ColorSpec{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		c.List = true
		if err := json.Unmarshal(b, &c.Colors); err != nil {
			return fmt.Errorf("color list must contain strings: %w", err)
		}
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err != nil {
		return fmt.Errorf("color must be a string or an array of strings")
	}
	c.Colors = []string{single}
	return nil
}

// MarshalBSONValue writes a string for single colors and an array otherwise.
func (c ColorSpec) MarshalBSONValue() (byte, []byte, error) {
	var v interface{} = c.Colors
	switch {
	case !c.List && len(c.Colors) == 1:
		v = c.Colors[0]
	case c.Colors == nil:
		v = []string{}
	}
	t, data, err := bson.MarshalValue(v)
	return byte(t), data, err
}

// UnmarshalBSONValue accepts a string or an array of strings.
func (c *ColorSpec) UnmarshalBSONValue(typ byte, data []byte) error {
	*c = ColorSpec{}
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch rv.Type {
	case bson.TypeNull, bson.TypeUndefined:
		return nil
	case bson.TypeString:
		c.Colors = []string{rv.StringValue()}
		return nil
	case bson.TypeArray:
		c.List = true
		if err := rv.Unmarshal(&c.Colors); err != nil {
			return fmt.Errorf("color list must contain strings: %w", err)
		}
		return nil
	}
	return fmt.Errorf("color must be a string or an array of strings, got %s", rv.Type)
}
