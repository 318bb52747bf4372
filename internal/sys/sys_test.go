package sys

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyntax(t *testing.T) {
	syntax, ok := ParseSyntax("DirectoryString")
	assert.True(t, ok)
	assert.Equal(t, SyntaxDirectoryString, syntax)

	syntax, ok = ParseSyntax("1.3.6.1.4.1.1466.115.121.1.27")
	assert.True(t, ok)
	assert.Equal(t, SyntaxInteger, syntax)

	_, ok = ParseSyntax("nope")
	assert.False(t, ok)
}

func TestLookupAttrType(t *testing.T) {
	attrType, ok := LookupAttrType("UIDNumber")
	assert.True(t, ok)
	assert.Equal(t, "uidNumber", attrType.Name)
	assert.True(t, attrType.SingleValue)
	assert.Equal(t, SyntaxDirectoryString, SyntaxOf("favouriteColour"))
	assert.Equal(t, SyntaxDN, SyntaxOf("member"))
}

func TestValidRaw(t *testing.T) {
	tests := []struct {
		syntax Syntax
		value  string
		valid  bool
	}{
		{SyntaxDirectoryString, "Paris", true},
		{SyntaxDirectoryString, "", false},
		{SyntaxDirectoryString, "\xff", false},
		{SyntaxInteger, "-42", true},
		{SyntaxInteger, "4x2", false},
		{SyntaxBoolean, "TRUE", true},
		{SyntaxBoolean, "true", false},
		{SyntaxGeneralizedTime, "20240102030405Z", true},
		{SyntaxGeneralizedTime, "20240102030405.5Z", true},
		{SyntaxGeneralizedTime, "yesterday", false},
		{SyntaxOID, "2.5.6.6", true},
		{SyntaxOID, "inetOrgPerson", true},
		{SyntaxOID, "2..5", false},
		{SyntaxDN, "cn=a,dc=example,dc=com", true},
		{SyntaxDN, "cn", false},
		{SyntaxDN, "cn=Smith\\, John,dc=com", true},
		{SyntaxDN, "cn=Smith, John,dc=com", false},
		{SyntaxTelephoneNumber, "+1 (555) 010-0000", true},
		{SyntaxTelephoneNumber, "call me", false},
		{SyntaxIA5String, "user@example.com", true},
		{SyntaxIA5String, "é", false},
		{SyntaxPrintableString, "Hello", true},
		{SyntaxPrintableString, "Hello!", false},
		{SyntaxNumericString, "12 34", true},
		{SyntaxNumericString, "12a", false},
		{SyntaxUUID, "b2c7a3a4-31e5-4a0b-9c2e-2c1f3a6b7d8e", true},
		{SyntaxUUID, "b2c7", false},
		{SyntaxOctetString, "\x00\x01", true},
	}
	for _, test := range tests {
		assert.Equal(t, test.valid, ValidRaw(test.syntax, []byte(test.value)), "%s %q", test.syntax, test.value)
	}
}

func TestSplitDN(t *testing.T) {
	assert.Equal(t, []string{"cn=Smith\\, John", "ou=People", "dc=example"}, SplitDN("cn=Smith\\, John, ou=People,dc=example"))
	assert.Nil(t, SplitDN(""))
}

func TestValidValue(t *testing.T) {
	assert.True(t, ValidValue(SyntaxInteger, int64(3)))
	assert.True(t, ValidValue(SyntaxInteger, 3))
	assert.False(t, ValidValue(SyntaxInteger, "3"))
	assert.True(t, ValidValue(SyntaxBoolean, false))
	assert.True(t, ValidValue(SyntaxGeneralizedTime, time.Now()))
	assert.True(t, ValidValue(SyntaxOctetString, []byte{1}))
	assert.True(t, ValidValue(SyntaxUUID, uuid.New()))
	assert.True(t, ValidValue(SyntaxDirectoryString, "x"))
	assert.False(t, ValidValue(SyntaxDirectoryString, 7))
	assert.False(t, ValidValue(SyntaxIA5String, "é"))
}

func TestDecode(t *testing.T) {
	value, err := Decode(SyntaxInteger, []byte("1001"))
	require.NoError(t, err)
	assert.Equal(t, int64(1001), value)

	value, err = Decode(SyntaxBoolean, []byte("FALSE"))
	require.NoError(t, err)
	assert.Equal(t, false, value)

	value, err = Decode(SyntaxGeneralizedTime, []byte("20240102030405Z"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), value)

	id := uuid.New()
	value, err = Decode(SyntaxUUID, []byte(id.String()))
	require.NoError(t, err)
	assert.Equal(t, id, value)

	value, err = Decode(SyntaxDirectoryString, []byte("Paris"))
	require.NoError(t, err)
	assert.Equal(t, "Paris", value)

	_, err = Decode(SyntaxInteger, []byte("many"))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	raw, err := Encode(SyntaxInteger, int64(-7))
	require.NoError(t, err)
	assert.Equal(t, []byte("-7"), raw)

	raw, err = Encode(SyntaxBoolean, true)
	require.NoError(t, err)
	assert.Equal(t, []byte("TRUE"), raw)

	raw, err = Encode(SyntaxGeneralizedTime, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []byte("20240102030405Z"), raw)

	raw, err = Encode(SyntaxInteger, "12")
	require.NoError(t, err)
	assert.Equal(t, []byte("12"), raw)

	_, err = Encode(SyntaxInteger, "twelve")
	assert.Error(t, err)

	_, err = Encode(SyntaxDirectoryString, struct{}{})
	assert.Error(t, err)
}
