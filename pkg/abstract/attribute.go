package abstract

import (
	"iter"
	"strings"
	"unicode/utf8"
	"weak"

	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/display"
	"github.com/dball/ldapabstract/internal/iterator"
	"github.com/dball/ldapabstract/internal/types"
	"golang.org/x/exp/slices"
)

type staged struct {
	values  []any
	present bool
}

// Attribute holds the values a directory returned for one attribute of an entry, and the
// modifications staged for that attribute until they are committed.
//
// The values are fixed when the attribute is built and can only be read. Modifications are
// staged with AddValue, SetValue and DeleteValue, each of which replaces any modification of
// its kind staged before. Attributes are not safe for concurrent use.
type Attribute struct {
	key        string
	definition Definition
	values     []any
	rawValues  [][]byte
	entry      weak.Pointer[Entry]
	reader     weak.Pointer[Reader]

	toAdd     staged
	toReplace staged
	toDelete  staged
}

// newAttribute builds an attribute without values for the entry and reader, either of which
// may be nil. Neither is kept alive by the attribute.
func newAttribute(definition Definition, entry *Entry, reader *Reader) (attr *Attribute) {
	attr = &Attribute{
		key:        definition.Key(),
		definition: definition,
		values:     []any{},
		rawValues:  [][]byte{},
	}
	if entry != nil {
		attr.entry = weak.Make(entry)
	}
	if reader != nil {
		attr.reader = weak.Make(reader)
	}
	return
}

// populate sets the values during materialization, before the attribute is exposed.
func (attr *Attribute) populate(values []any, rawValues [][]byte) {
	attr.values = slices.Clone(values)
	attr.rawValues = slices.Clone(rawValues)
	if attr.values == nil {
		attr.values = []any{}
	}
	if attr.rawValues == nil {
		attr.rawValues = [][]byte{}
	}
}

// NewAttribute returns a detached attribute holding copies of the given values, for
// callers that materialize attributes from their own sources.
func NewAttribute(definition Definition, values []any, rawValues [][]byte) *Attribute {
	attr := newAttribute(definition, nil, nil)
	attr.populate(values, rawValues)
	return attr
}

// Key returns the name by which callers refer to the attribute.
func (attr *Attribute) Key() string { return attr.key }

// Definition returns the attribute's definition.
func (attr *Attribute) Definition() Definition { return attr.definition }

// Entry returns the entry the attribute belongs to, or nil if it is detached or the entry
// is no longer referenced.
func (attr *Attribute) Entry() *Entry { return attr.entry.Value() }

// Reader returns the reader that read the attribute, or nil.
func (attr *Attribute) Reader() *Reader { return attr.reader.Value() }

// Values returns a copy of the processed values in the order the directory returned them.
func (attr *Attribute) Values() []any {
	return slices.Clone(attr.values)
}

// RawValues returns a copy of the values in wire form.
func (attr *Attribute) RawValues() [][]byte {
	raw := make([][]byte, len(attr.rawValues))
	for i, r := range attr.rawValues {
		raw[i] = slices.Clone(r)
	}
	return raw
}

// Len returns the number of values.
func (attr *Attribute) Len() int {
	return len(attr.values)
}

// At returns the value at the position.
func (attr *Attribute) At(i int) (value any, err error) {
	if i < 0 || i >= len(attr.values) {
		err = types.MarkError(ErrIndexOutOfRange, "attribute.indexOutOfRange", "attribute", attr.key, "index", i, "len", len(attr.values))
		return
	}
	value = attr.values[i]
	return
}

// Slice returns a copy of the values from position i up to but excluding j.
func (attr *Attribute) Slice(i int, j int) (values []any, err error) {
	if i < 0 || j < i || j > len(attr.values) {
		err = types.MarkError(ErrIndexOutOfRange, "attribute.indexOutOfRange", "attribute", attr.key, "from", i, "to", j, "len", len(attr.values))
		return
	}
	values = slices.Clone(attr.values[i:j])
	return
}

// Iter returns a fresh iterator over the values. Callers that stop early must call Stop.
func (attr *Attribute) Iter() *iterator.Iterator[any] {
	return iterator.BuildIterator[any](iterator.Slice[any](attr.values))
}

// All returns a range function over the values. Each range starts a fresh traversal.
func (attr *Attribute) All() iter.Seq[any] {
	values := attr.values
	return func(yield func(any) bool) {
		for _, value := range values {
			if !yield(value) {
				return
			}
		}
	}
}

// Value returns the canonical value of the attribute.
func (attr *Attribute) Value() Canonical {
	return Canonical{values: attr.values}
}

// Equal returns true if the canonical value equals other. It never panics.
func (attr *Attribute) Equal(other any) bool {
	return attr.Value().Equal(other)
}

// Text returns the single value as text, or the list of values when there is not
// exactly one.
func (attr *Attribute) Text() string {
	if len(attr.values) == 1 {
		return display.Encode(attr.values[0])
	}
	return display.EncodeAll(attr.values)
}

func (attr *Attribute) String() string {
	return attr.Format(0)
}

// Format renders the attribute indented by the given number of spaces as "key: value",
// with any further values on their own lines aligned under the first.
func (attr *Attribute) Format(indent int) string {
	prefix := strings.Repeat(" ", indent) + attr.key + ": "
	if len(attr.values) == 0 {
		return prefix + display.Encode(display.NoValue)
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(display.Encode(attr.values[0]))
	filler := strings.Repeat(" ", utf8.RuneCountInString(prefix))
	for _, value := range attr.values[1:] {
		b.WriteString("\n")
		b.WriteString(filler)
		b.WriteString(display.Encode(value))
	}
	return b.String()
}

// SetField is the generic assignment path for callers that set attribute fields by name.
// Attributes are read only, so it always fails.
func (attr *Attribute) SetField(name string, value any) error {
	err := types.MarkError(ErrReadOnly, "attribute.readOnly", "field", name)
	return errors.WithHint(err, "use AddValue, SetValue or DeleteValue")
}

// AddValue stages values to add to the attribute on commit. A sequence stages each of its
// elements; any other value stages itself. A nil value is not validated and stages no values.
func (attr *Attribute) AddValue(value any) error {
	return attr.stage(&attr.toAdd, value)
}

// SetValue stages values to replace all of the attribute's values on commit.
func (attr *Attribute) SetValue(value any) error {
	return attr.stage(&attr.toReplace, value)
}

// DeleteValue stages values to delete from the attribute on commit. A nil value stages the
// deletion of every value.
func (attr *Attribute) DeleteValue(value any) error {
	return attr.stage(&attr.toDelete, value)
}

func (attr *Attribute) stage(target *staged, value any) (err error) {
	name := attr.definition.Name()
	if value != nil && !attr.definition.Validate(name, value) {
		err = types.MarkError(ErrInvalidValue, "attribute.invalidValue", "attribute", name, "value", display.Encode(value))
		return
	}
	*target = staged{values: normalize(value), present: true}
	return
}

func normalize(value any) (values []any) {
	if value == nil {
		values = []any{}
		return
	}
	values, ok := display.Sequence(value)
	if !ok {
		values = []any{value}
	}
	return
}

// StagedAdd returns the values staged by AddValue, if any.
func (attr *Attribute) StagedAdd() ([]any, bool) {
	return attr.toAdd.get()
}

// StagedReplace returns the values staged by SetValue, if any.
func (attr *Attribute) StagedReplace() ([]any, bool) {
	return attr.toReplace.get()
}

// StagedDelete returns the values staged by DeleteValue, if any.
func (attr *Attribute) StagedDelete() ([]any, bool) {
	return attr.toDelete.get()
}

// HasStaged returns true if any modification is staged.
func (attr *Attribute) HasStaged() bool {
	return attr.toAdd.present || attr.toReplace.present || attr.toDelete.present
}

// ClearStaged discards every staged modification, once they have been committed.
func (attr *Attribute) ClearStaged() {
	attr.toAdd = staged{}
	attr.toReplace = staged{}
	attr.toDelete = staged{}
}

func (s staged) get() (values []any, ok bool) {
	if !s.present {
		return
	}
	values = slices.Clone(s.values)
	ok = true
	return
}
