package xisf

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Property is a decoded XISF property. Numeric scalars, vectors and
// matrices are held in Values; matrices are row-major.
type Property struct {
	ID     string
	Type   string
	Text   string
	Values []float64
	Rows   int
	Cols   int
}

// Float returns a numeric scalar, or the first element of a vector.
func (p Property) Float() (float64, bool) {
	if len(p.Values) > 0 {
		return p.Values[0], true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(p.Text), 64)
	return v, err == nil
}

// Vector returns the elements of a vector property.
func (p Property) Vector() []float64 {
	return p.Values
}

// Matrix returns a matrix property as rows.
func (p Property) Matrix() [][]float64 {
	if p.Rows == 0 || p.Cols == 0 || len(p.Values) < p.Rows*p.Cols {
		return nil
	}
	out := make([][]float64, p.Rows)
	for i := range out {
		out[i] = p.Values[i*p.Cols : (i+1)*p.Cols]
	}
	return out
}

// element sizes of numeric vector and matrix types
var elemSize = map[string]int{
	"I8": 1, "UI8": 1, "I16": 2, "UI16": 2,
	"I32": 4, "UI32": 4, "I64": 8, "UI64": 8,
	"F32": 4, "F64": 8,
}

func (r *Reader) property(xp xmlProperty) (Property, error) {
	p := Property{ID: xp.ID, Type: xp.Type}

	switch {
	case xp.Type == "String" || xp.Type == "TimePoint":
		if xp.Value != "" || xp.Location == "" {
			p.Text = xp.Value
			if p.Text == "" {
				p.Text = strings.TrimSpace(xp.Text)
			}
			return p, nil
		}
		data, err := r.propertyBlock(xp)
		if err != nil {
			return p, err
		}
		p.Text = string(data)
		return p, nil

	case strings.HasSuffix(xp.Type, "Vector"), strings.HasSuffix(xp.Type, "Matrix"):
		elem := strings.TrimSuffix(strings.TrimSuffix(xp.Type, "Vector"), "Matrix")
		if _, ok := elemSize[elem]; !ok {
			// complex and byte-array values are not needed
			return p, nil
		}
		data, err := r.propertyBlock(xp)
		if err != nil {
			return p, err
		}
		if p.Values, err = decodeNumbers(elem, data, xp.ByteOrder == "big"); err != nil {
			return p, err
		}
		if strings.HasSuffix(xp.Type, "Matrix") {
			p.Rows, _ = strconv.Atoi(xp.Rows)
			p.Cols, _ = strconv.Atoi(xp.Columns)
		}
		return p, nil

	case xp.Type == "Boolean":
		p.Text = xp.Value
		switch strings.ToLower(xp.Value) {
		case "1", "true":
			p.Values = []float64{1}
		default:
			p.Values = []float64{0}
		}
		return p, nil
	}

	p.Text = xp.Value
	if v, err := strconv.ParseFloat(strings.TrimSpace(xp.Value), 64); err == nil {
		p.Values = []float64{v}
	}
	return p, nil
}

func (r *Reader) propertyBlock(xp xmlProperty) ([]byte, error) {
	b, err := parseBlock(xp.Location, xp.Compression, xp.Checksum, xp.ByteOrder)
	if err != nil {
		return nil, err
	}
	switch b.method {
	case "inline":
		b.text = xp.Text
	case "embedded":
		if xp.Data == nil {
			return nil, fmt.Errorf("embedded property without Data element")
		}
		b.encoding, b.text = xp.Data.Encoding, xp.Data.Text
		if xp.Data.Compression != "" && b.codec == "" {
			cb, err := parseBlock("", xp.Data.Compression, "", "")
			if err != nil {
				return nil, err
			}
			b.codec, b.shuffled, b.rawSize, b.itemSize = cb.codec, cb.shuffled, cb.rawSize, cb.itemSize
		}
	}
	return r.readBlock(b)
}

func decodeNumbers(elem string, data []byte, bigEndian bool) ([]float64, error) {
	size := elemSize[elem]
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%s data length %d is not a multiple of %d", elem, len(data), size)
	}
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}

	out := make([]float64, len(data)/size)
	for i := range out {
		c := data[i*size : (i+1)*size]
		switch elem {
		case "I8":
			out[i] = float64(int8(c[0]))
		case "UI8":
			out[i] = float64(c[0])
		case "I16":
			out[i] = float64(int16(order.Uint16(c)))
		case "UI16":
			out[i] = float64(order.Uint16(c))
		case "I32":
			out[i] = float64(int32(order.Uint32(c)))
		case "UI32":
			out[i] = float64(order.Uint32(c))
		case "I64":
			out[i] = float64(int64(order.Uint64(c)))
		case "UI64":
			out[i] = float64(order.Uint64(c))
		case "F32":
			out[i] = float64(math.Float32frombits(order.Uint32(c)))
		case "F64":
			out[i] = math.Float64frombits(order.Uint64(c))
		}
	}
	return out, nil
}
