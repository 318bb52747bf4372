// Package models provides models of structs with attribute bindings.
package models

import (
	"reflect"
	"strings"
	"time"

	"github.com/dball/ldapabstract/internal/sys"
	. "github.com/dball/ldapabstract/internal/types"
	"github.com/google/uuid"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// StructModel models a struct that has fields bound to attributes, whose instances
// correspond to entries.
type StructModel struct {
	// Type is the struct type, whose kind must be a struct.
	Type reflect.Type
	// ObjectClasses are given by the tag of a blank field named _, if any.
	ObjectClasses []string
	// AttrFields are the fields bound to attributes, in field order.
	AttrFields []AttrFieldModel
}

// AttrFieldModel models a field bound to an attribute.
type AttrFieldModel struct {
	// Name is the directory name of the attribute.
	Name string
	// Key is the name by which callers refer to the attribute. It defaults to the field name.
	Key string
	// Index is the position of the field in the struct.
	Index int
	// FieldType is the field's go type.
	FieldType reflect.Type
	// Syntax is the attribute syntax, inferred from the field type unless given.
	Syntax sys.Syntax
	// SingleValue is true for scalar fields or when the single directive is given.
	SingleValue bool
}

// Analyze builds a struct model for the given type. Fields bind to attributes with the
// ldap tag, e.g. `ldap:"uidNumber,key=UID"`; the blank field `_ struct{} ldap:"person,top"`
// declares object classes.
func Analyze(typ reflect.Type) (model StructModel, err error) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		err = NewError("models.notStruct", "type", typ)
		return
	}
	model.Type = typ
	n := typ.NumField()
	attrFields := make([]AttrFieldModel, 0, n)
	for i := 0; i < n; i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("ldap")
		if !ok || tag == "-" {
			continue
		}
		if field.Name == "_" {
			model.ObjectClasses = strings.Split(tag, ",")
			continue
		}
		attr, fieldErr := parseAttrField(field, tag)
		if fieldErr != nil {
			err = fieldErr
			return
		}
		attr.Index = i
		attrFields = append(attrFields, attr)
	}
	model.AttrFields = attrFields
	return
}

// SyntaxForType returns the syntax to which values of the go type most naturally encode.
func SyntaxForType(typ reflect.Type) (syntax sys.Syntax, ok bool) {
	ok = true
	switch {
	case typ == timeType:
		syntax = sys.SyntaxGeneralizedTime
	case typ == uuidType:
		syntax = sys.SyntaxUUID
	case typ == bytesType:
		syntax = sys.SyntaxOctetString
	default:
		switch typ.Kind() {
		case reflect.Bool:
			syntax = sys.SyntaxBoolean
		case reflect.Int, reflect.Int64, reflect.Int32:
			syntax = sys.SyntaxInteger
		case reflect.String:
			syntax = sys.SyntaxDirectoryString
		default:
			ok = false
		}
	}
	return
}

func parseAttrField(field reflect.StructField, tag string) (attr AttrFieldModel, err error) {
	parts := strings.Split(tag, ",")
	attr.Name = parts[0]
	attr.Key = field.Name
	attr.FieldType = field.Type
	if attr.Name == "" {
		err = NewError("models.missingName", "field", field.Name)
		return
	}
	scalar := field.Type
	switch {
	case field.Type == bytesType:
		attr.SingleValue = true
	case field.Type.Kind() == reflect.Slice:
		scalar = field.Type.Elem()
	case field.Type.Kind() == reflect.Pointer:
		scalar = field.Type.Elem()
		attr.SingleValue = true
	default:
		attr.SingleValue = true
	}
	for _, part := range parts[1:] {
		switch {
		case part == "single":
			attr.SingleValue = true
		case strings.HasPrefix(part, "key="):
			attr.Key = part[4:]
		case strings.HasPrefix(part, "syntax="):
			syntax, ok := sys.ParseSyntax(part[7:])
			if !ok {
				err = NewError("models.invalidSyntax", "tag", tag)
				return
			}
			attr.Syntax = syntax
		default:
			err = NewError("models.invalidDirective", "tag", tag)
			return
		}
	}
	if attr.Syntax != "" {
		return
	}
	if attrType, ok := sys.LookupAttrType(attr.Name); ok && scalar.Kind() == reflect.String {
		attr.Syntax = attrType.Syntax
		return
	}
	syntax, ok := SyntaxForType(scalar)
	if !ok {
		err = NewError("models.invalidType", "tag", tag, "type", field.Type, "kind", field.Type.Kind())
		return
	}
	attr.Syntax = syntax
	return
}
