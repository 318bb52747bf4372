package abstract

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/models"
	"github.com/dball/ldapabstract/internal/types"
)

var bytesType = reflect.TypeOf([]byte(nil))

// ObjectDefFor derives an object definition from a struct type whose fields carry ldap
// tags:
//
//	type Person struct {
//		_      struct{} `ldap:"inetOrgPerson"`
//		Name   string   `ldap:"cn"`
//		Mail   []string `ldap:"mail"`
//		Number int64    `ldap:"employeeNumber,key=number,syntax=integer"`
//	}
//
// Scalar and pointer fields define single valued attributes; slice fields define multi
// valued ones unless the single directive is given.
func ObjectDefFor(typ reflect.Type) (od *ObjectDef, err error) {
	model, err := models.Analyze(typ)
	if err != nil {
		return
	}
	od = NewObjectDef(model.ObjectClasses...)
	for _, field := range model.AttrFields {
		def := NewAttrDef(field.Name).
			WithKey(field.Key).
			WithSyntax(field.Syntax).
			WithSingleValue(field.SingleValue)
		if err = od.Add(def); err != nil {
			od = nil
			return
		}
	}
	return
}

// Unmarshal stores the entry's values in the tagged fields of the struct v points to.
// Fields of attributes without values are set to their zero values; fields with no
// matching attribute are left alone.
func (entry *Entry) Unmarshal(v any) (err error) {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		err = types.NewError("entry.unmarshal.notPointer", "type", reflect.TypeOf(v))
		return
	}
	model, err := models.Analyze(ptr.Type())
	if err != nil {
		return
	}
	target := ptr.Elem()
	for _, field := range model.AttrFields {
		attr, found := entry.Attribute(field.Name)
		if !found {
			continue
		}
		if err = setField(target.Field(field.Index), attr.values); err != nil {
			err = errors.Wrapf(err, "unmarshal %s into %s", field.Name, field.Key)
			return
		}
	}
	return
}

func setField(field reflect.Value, values []any) (err error) {
	typ := field.Type()
	if len(values) == 0 {
		field.Set(reflect.Zero(typ))
		return
	}
	switch {
	case typ == bytesType:
		err = assign(field, values[0])
	case typ.Kind() == reflect.Pointer:
		ptr := reflect.New(typ.Elem())
		if err = assign(ptr.Elem(), values[0]); err != nil {
			return
		}
		field.Set(ptr)
	case typ.Kind() == reflect.Slice:
		slice := reflect.MakeSlice(typ, len(values), len(values))
		for i, value := range values {
			if err = assign(slice.Index(i), value); err != nil {
				return
			}
		}
		field.Set(slice)
	default:
		err = assign(field, values[0])
	}
	return
}

func assign(target reflect.Value, value any) (err error) {
	v := reflect.ValueOf(value)
	switch {
	case !v.IsValid():
		target.Set(reflect.Zero(target.Type()))
	case v.Type().AssignableTo(target.Type()):
		target.Set(v)
	case isInt(v.Kind()) && isInt(target.Kind()) && !target.OverflowInt(v.Int()):
		target.SetInt(v.Int())
	case v.Kind() == reflect.String && target.Kind() == reflect.String:
		target.SetString(v.String())
	default:
		err = types.NewError("entry.unmarshal.invalidType", "type", target.Type(), "value", value)
	}
	return
}

func isInt(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
