package abstract

import (
	"bytes"
	"reflect"
	"time"

	"github.com/dball/ldapabstract/internal/display"
)

// Canonical is the value of an attribute: its single value when it holds exactly one,
// otherwise the sequence of its values, possibly empty.
type Canonical struct {
	values []any
}

// IsSingle returns true if the attribute holds exactly one value.
func (c Canonical) IsSingle() bool {
	return len(c.values) == 1
}

// Single returns the value of a single valued attribute.
func (c Canonical) Single() (value any, ok bool) {
	if c.IsSingle() {
		value = c.values[0]
		ok = true
	}
	return
}

// Multiple returns the values of an attribute that does not hold exactly one value.
func (c Canonical) Multiple() (values []any, ok bool) {
	if !c.IsSingle() {
		values = make([]any, len(c.values))
		copy(values, c.values)
		ok = true
	}
	return
}

// Interface returns the single value, or a []any of the values.
func (c Canonical) Interface() any {
	if value, ok := c.Single(); ok {
		return value
	}
	values, _ := c.Multiple()
	return values
}

func (c Canonical) String() string {
	return display.Encode(c.Interface())
}

// Equal returns true if other equals the single value, or is a sequence whose elements
// equal the values in order. Comparisons that cannot be made are false.
func (c Canonical) Equal(other any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	switch o := other.(type) {
	case Canonical:
		other = o.Interface()
	case *Attribute:
		other = o.Value().Interface()
	}
	if value, ok := c.Single(); ok {
		return equalValues(value, other)
	}
	others, ok := display.Sequence(other)
	if !ok || len(others) != len(c.values) {
		return false
	}
	for i, value := range c.values {
		if !equalValues(value, others[i]) {
			return false
		}
	}
	return true
}

// equalValues panics if both values have the same incomparable dynamic type. Signed
// integers of any width compare by value, as integer syntaxes accept them all.
func equalValues(a any, b any) bool {
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	}
	if ai, ok := signedInt(a); ok {
		bi, ok := signedInt(b)
		return ok && ai == bi
	}
	return a == b
}

func signedInt(value any) (i int64, ok bool) {
	v := reflect.ValueOf(value)
	if isInt(v.Kind()) {
		i = v.Int()
		ok = true
	}
	return
}
