package grid

// normalize.go defines how loosely typed cell values are reduced to strings.
//
// Three forms are derived from a cell value:
//   - sort form: case-folded, trimmed string used by the comparator
//   - filter key: trimmed (not folded) string used for filter equality and
//     for deduplicating filter options
//   - display form: the label shown for a value in filter option lists
//
// Cells fall into four kinds: null (nil or nil pointer), array (slice or
// array), object (map or struct without a text form) and scalar (everything
// else, including time.Time and other fmt.Stringer values).

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindArray
	kindObject
	kindScalar
)

// Filter keys use a NUL prefix so they cannot collide with scalar keys.
const (
	emptyFilterKey   = "\x00empty"
	lengthKeyPrefix  = "\x00len:"
	emptyDisplayText = "Empty"
)

// classify returns the kind of v and its dereferenced reflect value.
func classify(v any) (valueKind, reflect.Value) {
	if v == nil {
		return kindNull, reflect.Value{}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return kindNull, reflect.Value{}
	}

	switch v.(type) {
	case string, bool, int, int64, int32, float64, float32, uint, uint64:
		return kindScalar, rv
	case encoding.TextMarshaler, fmt.Stringer, error:
		return kindScalar, rv
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return kindArray, rv
	case reflect.Map, reflect.Struct:
		if rv.CanInterface() {
			switch rv.Interface().(type) {
			case encoding.TextMarshaler, fmt.Stringer:
				return kindScalar, rv
			}
		}
		return kindObject, rv
	default:
		return kindScalar, rv
	}
}

// IsNull reports whether v is treated as a missing value.
func IsNull(v any) bool {
	k, _ := classify(v)
	return k == kindNull
}

// scalarString renders a scalar the way a loosely typed UI would.
func scalarString(rv reflect.Value) string {
	if !rv.IsValid() {
		return ""
	}
	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case string:
			return x
		case encoding.TextMarshaler:
			if b, err := x.MarshalText(); err == nil {
				return string(b)
			}
		case fmt.Stringer:
			return x.String()
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		case float32:
			return strconv.FormatFloat(float64(x), 'f', -1, 32)
		}
		return fmt.Sprint(rv.Interface())
	}
	return rv.String()
}

// canonicalJSON renders an object deterministically (sorted map keys).
func canonicalJSON(rv reflect.Value) string {
	if !rv.CanInterface() {
		return fmt.Sprintf("%v", rv)
	}
	b, err := json.Marshal(rv.Interface())
	if err != nil {
		return fmt.Sprintf("%v", rv.Interface())
	}
	return string(b)
}

// stringForm is the plain string form of any non-null value.
// Arrays use their first element (empty array is "").
func stringForm(v any) string {
	kind, rv := classify(v)
	switch kind {
	case kindNull:
		return ""
	case kindArray:
		if rv.Len() == 0 {
			return ""
		}
		return stringForm(rv.Index(0).Interface())
	case kindObject:
		return canonicalJSON(rv)
	default:
		return scalarString(rv)
	}
}

// FilterKey returns the normalized key used for filter equality.
//
// Array cells are grouped by length, not by content: [1,2,3] and [9,8,7]
// share a key. This is a known approximation kept for compatibility with
// relation-list cells.
func FilterKey(v any) string {
	kind, rv := classify(v)
	switch kind {
	case kindNull:
		return emptyFilterKey
	case kindArray:
		return lengthKeyPrefix + strconv.Itoa(rv.Len())
	case kindObject:
		return canonicalJSON(rv)
	default:
		return strings.TrimSpace(scalarString(rv))
	}
}

// DisplayValue returns the label for a value in filter option lists.
func DisplayValue(v any) string {
	kind, rv := classify(v)
	switch kind {
	case kindNull:
		return emptyDisplayText
	case kindArray:
		return fmt.Sprintf("%d items", rv.Len())
	case kindObject:
		return canonicalJSON(rv)
	default:
		return scalarString(rv)
	}
}

// CellText is the default cell formatter. Nulls render as an empty string;
// arrays and objects use their display form.
func CellText(v any) string {
	kind, rv := classify(v)
	switch kind {
	case kindNull:
		return ""
	case kindScalar:
		return scalarString(rv)
	default:
		return DisplayValue(v)
	}
}
