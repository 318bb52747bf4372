package types

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	err := NewError("directory.add.entryExists", "dn", "cn=x")
	assert.Equal(t, "directory.add.entryExists", err.Code)
	assert.Equal(t, map[string]any{"dn": "cn=x"}, err.Context)
	assert.Contains(t, err.Error(), "cn=x")

	assert.Panics(t, func() { NewError("odd", "dn") })
	assert.Panics(t, func() { NewError("unnamed", 1, 2) })
}

func TestMarkError(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := MarkError(sentinel, "test.marked", "n", 1)
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, "test.marked", Code(err))
	assert.Equal(t, "test.marked", Code(errors.Wrap(err, "context")))
	assert.Equal(t, "", Code(sentinel))
	assert.Equal(t, "", Code(nil))
}

func TestRecord(t *testing.T) {
	record := Record{DN: "cn=x", Attributes: []RawAttribute{
		{Name: "objectClass", Values: [][]byte{[]byte("person"), []byte("top")}},
		{Name: "cn", Values: [][]byte{[]byte("x")}},
	}}
	values, ok := record.Get("OBJECTCLASS")
	assert.True(t, ok)
	assert.Len(t, values, 2)
	_, ok = record.Get("sn")
	assert.False(t, ok)
	assert.True(t, record.HasValue("objectclass", []byte("Person")))
	assert.False(t, record.HasValue("objectClass", []byte("organization")))
	assert.False(t, record.HasValue("sn", []byte("x")))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "sub", ScopeSubtree.String())
	assert.Equal(t, "one", ScopeOneLevel.String())
	assert.Equal(t, "replace", OperationReplace.String())
	assert.Equal(t, "#change[add mail 1]", Change{Operation: OperationAdd, Attribute: "mail", Values: [][]byte{[]byte("a")}}.String())
}
