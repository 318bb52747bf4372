// Package display renders attribute values for human-readable output.
package display

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// NoValue is rendered in place of the values of an empty attribute.
const NoValue = "<no value>"

// Encode renders a value as text that is safe to write to a terminal. Sequences are
// rendered as bracketed, comma separated lists.
func Encode(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return printable(v)
	case []byte:
		if utf8.Valid(v) && isPrintable(string(v)) {
			return string(v)
		}
		return "0x" + hex.EncodeToString(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return printable(v.String())
	}
	if values, ok := Sequence(value); ok {
		return EncodeAll(values)
	}
	return printable(fmt.Sprint(value))
}

// EncodeAll renders a sequence of values.
func EncodeAll(values []any) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, value := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Encode(value))
	}
	b.WriteByte(']')
	return b.String()
}

// IsSequence returns true if the value is a slice or array of values. Byte slices are
// single octet string values, not sequences.
func IsSequence(value any) bool {
	if value == nil {
		return false
	}
	typ := reflect.TypeOf(value)
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		return typ.Elem().Kind() != reflect.Uint8
	}
	return false
}

// Sequence returns the elements of a sequence value in order.
func Sequence(value any) (values []any, ok bool) {
	if !IsSequence(value) {
		return
	}
	if anys, isAnys := value.([]any); isAnys {
		values = make([]any, len(anys))
		copy(values, anys)
		ok = true
		return
	}
	v := reflect.ValueOf(value)
	n := v.Len()
	values = make([]any, n)
	for i := 0; i < n; i++ {
		values[i] = v.Index(i).Interface()
	}
	ok = true
	return
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func printable(s string) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	if isPrintable(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return utf8.RuneError
	}, s)
}
