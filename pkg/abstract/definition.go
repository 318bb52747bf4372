package abstract

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/display"
	"github.com/dball/ldapabstract/internal/sys"
	"github.com/dball/ldapabstract/internal/types"
)

// Syntax is the object identifier of an attribute syntax.
type Syntax = sys.Syntax

const (
	SyntaxDirectoryString = sys.SyntaxDirectoryString
	SyntaxDN              = sys.SyntaxDN
	SyntaxInteger         = sys.SyntaxInteger
	SyntaxBoolean         = sys.SyntaxBoolean
	SyntaxOctetString     = sys.SyntaxOctetString
	SyntaxGeneralizedTime = sys.SyntaxGeneralizedTime
	SyntaxOID             = sys.SyntaxOID
	SyntaxTelephoneNumber = sys.SyntaxTelephoneNumber
	SyntaxIA5String       = sys.SyntaxIA5String
	SyntaxPrintableString = sys.SyntaxPrintableString
	SyntaxNumericString   = sys.SyntaxNumericString
	SyntaxUUID            = sys.SyntaxUUID
)

// Definition describes an attribute to the values it holds.
type Definition interface {
	// Key is the name callers use for the attribute.
	Key() string
	// Name is the attribute's name in the directory.
	Name() string
	// Validate returns true if the value, a single value or a sequence of them, may be
	// stored in the named attribute.
	Validate(name string, value any) bool
}

// Validator decides whether a value may be stored in the named attribute.
type Validator func(name string, value any) bool

// PostQuery transforms the decoded values of an attribute after a search.
type PostQuery func(key string, values []any) []any

// PreCommit transforms a staged value before it is encoded for a commit.
type PreCommit func(key string, value any) any

// AttrDef defines an attribute by its directory name and syntax.
type AttrDef struct {
	key         string
	name        string
	syntax      Syntax
	singleValue bool
	validator   Validator
	postQuery   PostQuery
	preCommit   PreCommit
}

var _ Definition = (*AttrDef)(nil)

// NewAttrDef returns a definition for the named attribute. The key defaults to the name;
// syntax and cardinality default to those of the standard attribute type of that name, or
// a multi-valued Directory String.
func NewAttrDef(name string) *AttrDef {
	def := &AttrDef{key: name, name: name, syntax: SyntaxDirectoryString}
	if attrType, ok := sys.LookupAttrType(name); ok {
		def.syntax = attrType.Syntax
		def.singleValue = attrType.SingleValue
	}
	return def
}

func (def *AttrDef) Key() string { return def.key }

func (def *AttrDef) Name() string { return def.name }

// Syntax returns the attribute syntax.
func (def *AttrDef) Syntax() Syntax { return def.syntax }

// SingleValue returns true if the attribute may hold at most one value.
func (def *AttrDef) SingleValue() bool { return def.singleValue }

// WithKey sets the key by which callers refer to the attribute.
func (def *AttrDef) WithKey(key string) *AttrDef {
	def.key = key
	return def
}

// WithSyntax sets the attribute syntax.
func (def *AttrDef) WithSyntax(syntax Syntax) *AttrDef {
	def.syntax = syntax
	return def
}

// WithSingleValue sets whether the attribute may hold at most one value.
func (def *AttrDef) WithSingleValue(single bool) *AttrDef {
	def.singleValue = single
	return def
}

// WithValidator replaces the syntax check used by Validate.
func (def *AttrDef) WithValidator(validator Validator) *AttrDef {
	def.validator = validator
	return def
}

// WithPostQuery sets the transformation applied to decoded values.
func (def *AttrDef) WithPostQuery(postQuery PostQuery) *AttrDef {
	def.postQuery = postQuery
	return def
}

// WithPreCommit sets the transformation applied to staged values before encoding.
func (def *AttrDef) WithPreCommit(preCommit PreCommit) *AttrDef {
	def.preCommit = preCommit
	return def
}

// Validate checks the value with the definition's validator if it has one. Otherwise every
// element must conform to the syntax, and single valued attributes accept at most one.
func (def *AttrDef) Validate(name string, value any) bool {
	if def.validator != nil {
		return def.validator(name, value)
	}
	values, ok := display.Sequence(value)
	if !ok {
		values = []any{value}
	}
	if def.singleValue && len(values) > 1 {
		return false
	}
	for _, v := range values {
		if v == nil || !sys.ValidValue(def.syntax, v) {
			return false
		}
	}
	return true
}

// Decode converts values in wire form to processed values.
func (def *AttrDef) Decode(raw [][]byte) (values []any, err error) {
	values = make([]any, 0, len(raw))
	for _, r := range raw {
		value, decodeErr := sys.Decode(def.syntax, r)
		if decodeErr != nil {
			err = errors.Wrapf(decodeErr, "decode %s", def.name)
			values = nil
			return
		}
		values = append(values, value)
	}
	if def.postQuery != nil {
		values = def.postQuery(def.key, values)
	}
	return
}

// Encode converts processed values to wire form.
func (def *AttrDef) Encode(values []any) (raw [][]byte, err error) {
	raw = make([][]byte, 0, len(values))
	for _, value := range values {
		if def.preCommit != nil {
			value = def.preCommit(def.key, value)
		}
		r, encodeErr := sys.Encode(def.syntax, value)
		if encodeErr != nil {
			err = errors.Wrapf(encodeErr, "encode %s", def.name)
			raw = nil
			return
		}
		raw = append(raw, r)
	}
	return
}

// ObjectDef is an ordered set of attribute definitions describing a kind of entry.
type ObjectDef struct {
	// ObjectClasses restrict searches to entries of every one of these classes.
	ObjectClasses []string
	defs          []*AttrDef
}

// NewObjectDef returns an empty object definition for the given object classes.
func NewObjectDef(objectClasses ...string) *ObjectDef {
	return &ObjectDef{ObjectClasses: objectClasses}
}

// Add appends attribute definitions. Keys and names must be unique, compared case-insensitively.
func (od *ObjectDef) Add(defs ...*AttrDef) (err error) {
	for _, def := range defs {
		if _, found := od.Get(def.key); found {
			err = types.MarkError(ErrDuplicateDefinition, "definition.duplicate", "key", def.key)
			return
		}
		if _, found := od.Get(def.name); found {
			err = types.MarkError(ErrDuplicateDefinition, "definition.duplicate", "name", def.name)
			return
		}
		od.defs = append(od.defs, def)
	}
	return
}

// Get returns the definition with the given key or name.
func (od *ObjectDef) Get(keyOrName string) (def *AttrDef, found bool) {
	for _, d := range od.defs {
		if strings.EqualFold(d.key, keyOrName) || strings.EqualFold(d.name, keyOrName) {
			def = d
			found = true
			return
		}
	}
	return
}

// Defs returns the attribute definitions in the order they were added.
func (od *ObjectDef) Defs() []*AttrDef {
	defs := make([]*AttrDef, len(od.defs))
	copy(defs, od.defs)
	return defs
}

// Keys returns the attribute keys in definition order.
func (od *ObjectDef) Keys() []string {
	keys := make([]string, len(od.defs))
	for i, def := range od.defs {
		keys[i] = def.key
	}
	return keys
}

// Names returns the directory names of the attributes in definition order.
func (od *ObjectDef) Names() []string {
	names := make([]string, len(od.defs))
	for i, def := range od.defs {
		names[i] = def.name
	}
	return names
}

// Len returns the number of attribute definitions.
func (od *ObjectDef) Len() int {
	return len(od.defs)
}
