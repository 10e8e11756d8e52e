// Package convert turns raw strings and loosely typed values into values of
// a target reflect.Type.
package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	uuidType     = reflect.TypeOf(uuid.UUID{})
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// FromString parses s into a value of type t. Scalars use strconv, uuid and
// time values use their own parsers, and anything else is decoded as JSON.
func FromString(s string, t reflect.Type) (reflect.Value, error) {
	switch t {
	case uuidType:
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(id), nil
	case timeType:
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(ts), nil
	case durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	case reflect.Interface:
		if reflect.TypeOf(s).AssignableTo(t) {
			v.Set(reflect.ValueOf(s))
			return v, nil
		}
		return reflect.Value{}, fmt.Errorf("cannot assign string to %s", t)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(s))
			return v, nil
		}
		fallthrough
	default:
		ptr := reflect.New(t)
		if err := json.Unmarshal([]byte(s), ptr.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("cannot decode %q as %s: %w", s, t, err)
		}
		return ptr.Elem(), nil
	}
	return v, nil
}

// FromStrings parses several raw values into a slice type, or the first
// value into a scalar type
func FromStrings(values []string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		out := reflect.MakeSlice(t, 0, len(values))
		for _, raw := range values {
			elem, err := FromString(raw, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, elem)
		}
		return out, nil
	}
	if len(values) == 0 {
		return reflect.Zero(t), nil
	}
	return FromString(values[0], t)
}

// Assign coerces v to type t: nil becomes the zero value, assignable values
// pass through and numeric or string-like values are converted. A numeric
// value that does not fit t, or a float with a fraction going to an
// integer type, is an error, as is anything else.
func Assign(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if convertible(rv.Type(), t) {
		if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
			if err := fits(rv, t); err != nil {
				return reflect.Value{}, err
			}
		}
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), t)
}

// fits reports an error when converting the numeric value v to t would
// change it
func fits(v reflect.Value, t reflect.Type) error {
	lossy := false
	target := reflect.New(t).Elem()
	switch {
	case isFloat(v.Kind()):
		f := v.Float()
		switch {
		case math.IsNaN(f) || math.IsInf(f, 0):
			lossy = !isFloat(t.Kind())
		case isSigned(t.Kind()):
			lossy = f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 || target.OverflowInt(int64(f))
		case isUnsigned(t.Kind()):
			lossy = f != math.Trunc(f) || f < 0 || f >= 1<<64 || target.OverflowUint(uint64(f))
		default:
			lossy = target.OverflowFloat(f)
		}
	case isSigned(v.Kind()):
		n := v.Int()
		switch {
		case isSigned(t.Kind()):
			lossy = target.OverflowInt(n)
		case isUnsigned(t.Kind()):
			lossy = n < 0 || target.OverflowUint(uint64(n))
		default:
			lossy = target.OverflowFloat(float64(n))
		}
	default:
		n := v.Uint()
		switch {
		case isSigned(t.Kind()):
			lossy = n > math.MaxInt64 || target.OverflowInt(int64(n))
		case isUnsigned(t.Kind()):
			lossy = target.OverflowUint(n)
		default:
			lossy = target.OverflowFloat(float64(n))
		}
	}
	if lossy {
		return fmt.Errorf("%v does not fit in %s", v.Interface(), t)
	}
	return nil
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// convertible limits reflect conversion to numeric-to-numeric and between
// types sharing a string or bool kind, so an int never silently becomes a
// one-rune string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	switch {
	case isNumeric(from.Kind()) && isNumeric(to.Kind()):
		return true
	case from.Kind() == to.Kind():
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Nillable reports whether a nil argument is acceptable for t
func Nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
