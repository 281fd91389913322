package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProductInput is a create or update payload exactly as the client sent it.
// Fields remember whether they were present and what JSON type they carried,
// so the validator can report every problem instead of failing on decode.
type ProductInput struct {
	Name        TextField   `json:"name"`
	Description TextField   `json:"description"`
	Price       NumberField `json:"price"`
	Image       TextField   `json:"image"`
	Category    TextField   `json:"category"`
	Stock       NumberField `json:"stock"`
}

// InputFromFields builds a well-formed input from already typed values.
func InputFromFields(f ProductFields) ProductInput {
	return ProductInput{
		Name:        Text(f.Name),
		Description: Text(f.Description),
		Price:       Number(strconv.FormatFloat(f.Price, 'f', -1, 64)),
		Image:       Text(f.Image),
		Category:    Text(f.Category),
		Stock:       Number(strconv.Itoa(f.Stock)),
	}
}

// TextField is a JSON value expected to be a string.
type TextField struct {
	value    string
	present  bool
	isString bool
}

// Text returns a present string field.
func Text(s string) TextField {
	return TextField{value: s, present: true, isString: true}
}

// UnmarshalJSON records the value; non-string JSON values are kept as present
// but not string-typed. null is treated as absent.
func (f *TextField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = TextField{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = TextField{value: string(data), present: true}
		return nil
	}

	*f = Text(s)
	return nil
}

// MarshalJSON writes the string value, or null when absent.
func (f TextField) MarshalJSON() ([]byte, error) {
	if !f.present {
		return []byte("null"), nil
	}
	if !f.isString {
		return []byte(f.value), nil
	}
	return json.Marshal(f.value)
}

// Present reports whether the key carried a non-null value.
func (f TextField) Present() bool { return f.present }

// String returns the trimmed text if the field holds a string.
func (f TextField) String() (string, bool) {
	if !f.present || !f.isString {
		return "", false
	}
	return strings.TrimSpace(f.value), true
}

// NumberField is a JSON number or a string holding a number.
type NumberField struct {
	raw     string
	present bool
}

// Number returns a present numeric field with the given textual form.
func Number(raw string) NumberField {
	return NumberField{raw: raw, present: true}
}

// UnmarshalJSON accepts numbers and strings; other JSON types are kept as
// present values that never parse. null is treated as absent.
func (f *NumberField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = NumberField{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Number(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*f = Number(string(data))
	default:
		*f = NumberField{present: true}
	}
	return nil
}

// MarshalJSON writes the numeric text as a JSON number when it parses, as a
// string otherwise.
func (f NumberField) MarshalJSON() ([]byte, error) {
	if !f.present {
		return []byte("null"), nil
	}
	if _, ok := f.Float(); ok {
		return []byte(strings.TrimSpace(f.raw)), nil
	}
	return json.Marshal(f.raw)
}

// Present reports whether the key carried a non-null value.
func (f NumberField) Present() bool { return f.present }

// Float parses the field as a finite decimal float64. Hexadecimal forms
// such as "0x1p-2" are not numbers to a client and are rejected.
func (f NumberField) Float() (float64, bool) {
	if !f.present {
		return 0, false
	}
	raw := strings.TrimSpace(f.raw)
	if isHexLiteral(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int parses the field as an integer. Integral decimals such as "5" or 5.0
// are accepted; fractional values are not.
func (f NumberField) Int() (int64, bool) {
	if !f.present {
		return 0, false
	}
	raw := strings.TrimSpace(f.raw)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true
	}
	v, ok := f.Float()
	if !ok || v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}

func isHexLiteral(raw string) bool {
	raw = strings.TrimLeft(raw, "+-")
	return len(raw) >= 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X')
}
