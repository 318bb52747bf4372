package abstract

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDef struct {
	key   string
	name  string
	valid bool
	calls int
}

func (def *stubDef) Key() string { return def.key }

func (def *stubDef) Name() string { return def.name }

func (def *stubDef) Validate(name string, value any) bool {
	def.calls++
	return def.valid
}

func strAttr(key string, values ...string) *Attribute {
	vs := make([]any, len(values))
	raw := make([][]byte, len(values))
	for i, v := range values {
		vs[i] = v
		raw[i] = []byte(v)
	}
	return NewAttribute(&stubDef{key: key, name: key, valid: true}, vs, raw)
}

func TestAttributeValues(t *testing.T) {
	t.Run("single value", func(t *testing.T) {
		attr := strAttr("city", "Paris")
		assert.Equal(t, "city: Paris", attr.String())
		assert.Equal(t, "Paris", attr.Text())
		assert.Equal(t, 1, attr.Len())
		value, ok := attr.Value().Single()
		assert.True(t, ok)
		assert.Equal(t, "Paris", value)
		assert.Equal(t, "Paris", attr.Value().Interface())
		assert.Equal(t, []byte("Paris"), attr.RawValues()[0])
	})

	t.Run("multiple values", func(t *testing.T) {
		attr := strAttr("letters", "a", "b", "c")
		assert.Equal(t, "[a, b, c]", attr.Text())
		assert.Equal(t, "letters: a\n         b\n         c", attr.String())
		lines := strings.Split(attr.String(), "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, strings.Index(lines[0], "a"), strings.Index(lines[1], "b"))
		values, ok := attr.Value().Multiple()
		assert.True(t, ok)
		assert.Equal(t, []any{"a", "b", "c"}, values)
		assert.False(t, attr.Value().IsSingle())
	})

	t.Run("no values", func(t *testing.T) {
		attr := strAttr("key")
		assert.Equal(t, "key: <no value>", attr.String())
		assert.Equal(t, 0, attr.Len())
		assert.Equal(t, []any{}, attr.Value().Interface())
		_, ok := attr.Value().Single()
		assert.False(t, ok)
	})

	t.Run("indented format", func(t *testing.T) {
		attr := strAttr("mail", "a@example.com", "b@example.com")
		assert.Equal(t, "    mail: a@example.com\n          b@example.com", attr.Format(4))
	})

	t.Run("non printable values", func(t *testing.T) {
		attr := NewAttribute(&stubDef{key: "photo", name: "photo"}, []any{[]byte{0xff, 0x00}, "bell\x07"}, nil)
		assert.Equal(t, "photo: 0xff00\n       bell\uFFFD", attr.String())
	})

	t.Run("representation has a line per value", func(t *testing.T) {
		for n := 0; n < 5; n++ {
			values := make([]string, n)
			for i := range values {
				values[i] = strings.Repeat("v", i+1)
			}
			lines := strings.Split(strAttr("k", values...).String(), "\n")
			assert.Len(t, lines, max(n, 1))
		}
	})

	t.Run("values are copies", func(t *testing.T) {
		attr := strAttr("cn", "x")
		values := attr.Values()
		values[0] = "y"
		raw := attr.RawValues()
		raw[0][0] = 'z'
		assert.Equal(t, []any{"x"}, attr.Values())
		assert.Equal(t, [][]byte{[]byte("x")}, attr.RawValues())
	})
}

func TestAttributeAccess(t *testing.T) {
	attr := strAttr("letters", "a", "b", "c")

	t.Run("indexed access", func(t *testing.T) {
		value, err := attr.At(1)
		assert.NoError(t, err)
		assert.Equal(t, "b", value)
		_, err = attr.At(3)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
		assert.Equal(t, "attribute.indexOutOfRange", ErrorCode(err))
		_, err = attr.At(-1)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	})

	t.Run("slices", func(t *testing.T) {
		values, err := attr.Slice(1, 3)
		assert.NoError(t, err)
		assert.Equal(t, []any{"b", "c"}, values)
		values, err = attr.Slice(0, 0)
		assert.NoError(t, err)
		assert.Empty(t, values)
		_, err = attr.Slice(2, 1)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
		_, err = attr.Slice(0, 4)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	})

	t.Run("iteration matches indexed access and restarts", func(t *testing.T) {
		first := attr.Iter().Drain()
		second := attr.Iter().Drain()
		assert.Equal(t, []any{"a", "b", "c"}, first)
		assert.Equal(t, first, second)
		for i, value := range first {
			indexed, err := attr.At(i)
			assert.NoError(t, err)
			assert.Equal(t, indexed, value)
		}
		var ranged []any
		for value := range attr.All() {
			ranged = append(ranged, value)
		}
		assert.Equal(t, first, ranged)
	})

	t.Run("early termination", func(t *testing.T) {
		iter := attr.Iter()
		assert.True(t, iter.Next())
		assert.Equal(t, "a", iter.Value())
		iter.Stop()
	})
}

func TestAttributeEquality(t *testing.T) {
	assert.True(t, strAttr("city", "Paris").Equal("Paris"))
	assert.False(t, strAttr("city", "Paris").Equal("London"))
	assert.False(t, strAttr("city", "Paris").Equal([]string{"Paris", "London"}))
	assert.True(t, strAttr("letters", "a", "b").Equal([]string{"a", "b"}))
	assert.True(t, strAttr("letters", "a", "b").Equal([]any{"a", "b"}))
	assert.False(t, strAttr("letters", "a", "b").Equal([]string{"b", "a"}))
	assert.True(t, strAttr("none").Equal([]string{}))
	assert.True(t, strAttr("letters", "a", "b").Equal(strAttr("other", "a", "b")))
	assert.True(t, strAttr("city", "Paris").Equal(strAttr("town", "Paris").Value()))
	assert.False(t, strAttr("city", "Paris").Equal(nil))
	assert.False(t, strAttr("city", "Paris").Equal(map[string]int{}))

	t.Run("incomparable values are unequal", func(t *testing.T) {
		attr := NewAttribute(&stubDef{key: "k", name: "k"}, []any{[]int{1}}, nil)
		assert.NotPanics(t, func() {
			assert.False(t, attr.Equal([]int{1}))
		})
		assert.NotPanics(t, func() {
			assert.False(t, attr.Equal((*Attribute)(nil)))
		})
	})

	t.Run("integers compare by value", func(t *testing.T) {
		dir := seed(t)
		reader := NewReader(dir, personDef(t), Config{})
		entry, err := reader.Get("uid=ada,ou=people,dc=example,dc=com")
		require.NoError(t, err)
		uid, _ := entry.Attribute("uidNumber")
		assert.True(t, uid.Equal(1000))
		assert.True(t, uid.Equal(int64(1000)))
		assert.False(t, uid.Equal([]int{1000}))
		assert.False(t, uid.Equal(1001))
		assert.False(t, uid.Equal("1000"))
		require.NoError(t, uid.SetValue(1001))
		require.NoError(t, reader.Commit(entry))
		uid, _ = entry.Attribute("uidNumber")
		assert.True(t, uid.Equal(1001))
	})

	t.Run("bytes and times compare by content", func(t *testing.T) {
		stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		attr := NewAttribute(&stubDef{key: "k", name: "k"}, []any{[]byte("x"), stamp}, nil)
		assert.True(t, attr.Equal([]any{[]byte("x"), stamp.In(time.FixedZone("EST", -5*3600))}))
	})
}

func TestAttributeStaging(t *testing.T) {
	t.Run("valid scalar stages a one element sequence", func(t *testing.T) {
		attr := strAttr("city", "Paris")
		require.NoError(t, attr.AddValue("x"))
		staged, ok := attr.StagedAdd()
		assert.True(t, ok)
		assert.Equal(t, []any{"x"}, staged)
		assert.True(t, attr.HasStaged())
		assert.Equal(t, []any{"Paris"}, attr.Values())
	})

	t.Run("sequences stage their elements", func(t *testing.T) {
		attr := strAttr("mail")
		require.NoError(t, attr.SetValue([]string{"a", "b"}))
		staged, ok := attr.StagedReplace()
		assert.True(t, ok)
		assert.Equal(t, []any{"a", "b"}, staged)
	})

	t.Run("invalid value leaves the staged field untouched", func(t *testing.T) {
		def := &stubDef{key: "city", name: "locality", valid: true}
		attr := NewAttribute(def, nil, nil)
		require.NoError(t, attr.AddValue("good"))
		def.valid = false
		err := attr.AddValue("bad")
		assert.True(t, errors.Is(err, ErrInvalidValue))
		assert.Equal(t, "attribute.invalidValue", ErrorCode(err))
		assert.Contains(t, err.Error(), "bad")
		assert.Contains(t, err.Error(), "locality")
		staged, ok := attr.StagedAdd()
		assert.True(t, ok)
		assert.Equal(t, []any{"good"}, staged)
	})

	t.Run("staging overwrites", func(t *testing.T) {
		attr := strAttr("mail")
		require.NoError(t, attr.AddValue("a"))
		require.NoError(t, attr.AddValue([]string{"b", "c"}))
		staged, _ := attr.StagedAdd()
		assert.Equal(t, []any{"b", "c"}, staged)
	})

	t.Run("nil is not validated", func(t *testing.T) {
		def := &stubDef{key: "mail", name: "mail"}
		attr := NewAttribute(def, []any{"a"}, nil)
		require.NoError(t, attr.DeleteValue(nil))
		assert.Equal(t, 0, def.calls)
		staged, ok := attr.StagedDelete()
		assert.True(t, ok)
		assert.Equal(t, []any{}, staged)
	})

	t.Run("each kind is staged separately", func(t *testing.T) {
		attr := strAttr("mail", "a")
		require.NoError(t, attr.AddValue("b"))
		require.NoError(t, attr.DeleteValue("a"))
		_, ok := attr.StagedReplace()
		assert.False(t, ok)
		added, _ := attr.StagedAdd()
		deleted, _ := attr.StagedDelete()
		assert.Equal(t, []any{"b"}, added)
		assert.Equal(t, []any{"a"}, deleted)
		attr.ClearStaged()
		assert.False(t, attr.HasStaged())
		_, ok = attr.StagedAdd()
		assert.False(t, ok)
	})

	t.Run("staged values are copies", func(t *testing.T) {
		attr := strAttr("mail")
		input := []any{"a"}
		require.NoError(t, attr.AddValue(input))
		input[0] = "z"
		staged, _ := attr.StagedAdd()
		staged[0] = "y"
		staged, _ = attr.StagedAdd()
		assert.Equal(t, []any{"a"}, staged)
	})
}

func TestAttributeReadOnly(t *testing.T) {
	attr := strAttr("city", "Paris")
	err := attr.SetField("some_field", 5)
	assert.True(t, errors.Is(err, ErrReadOnly))
	assert.Equal(t, "attribute.readOnly", ErrorCode(err))
	assert.Contains(t, err.Error(), "some_field")
	assert.Contains(t, errors.FlattenHints(err), "AddValue")
	assert.Equal(t, []any{"Paris"}, attr.Values())
}

func TestAttributeBackReferences(t *testing.T) {
	attr := strAttr("cn", "x")
	assert.Nil(t, attr.Entry())
	assert.Nil(t, attr.Reader())

	entry := newEntry("cn=x", nil)
	attr = newAttribute(&stubDef{key: "cn", name: "cn"}, entry, nil)
	entry.attributes = []*Attribute{attr}
	assert.Same(t, entry, attr.Entry())

	attr = func() *Attribute {
		entry := newEntry("cn=y", nil)
		return newAttribute(&stubDef{key: "cn", name: "cn"}, entry, nil)
	}()
	runtime.GC()
	assert.Nil(t, attr.Entry())
}
