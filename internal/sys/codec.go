package sys

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	. "github.com/dball/ldapabstract/internal/types"
	"github.com/google/uuid"
)

// GeneralizedTimeFormat is the layout used when encoding generalized times.
const GeneralizedTimeFormat = "20060102150405Z"

var generalizedTimeLayouts = []string{
	"20060102150405Z",
	"20060102150405.999999999Z",
	"20060102150405-0700",
	"20060102150405.999999999-0700",
	"200601021504Z",
	"2006010215Z",
}

// ValidRaw returns true if the value in wire form conforms to the syntax. Unknown
// syntaxes accept any value.
func ValidRaw(syntax Syntax, value []byte) bool {
	switch syntax {
	case SyntaxDirectoryString:
		return len(value) > 0 && utf8.Valid(value)
	case SyntaxDN:
		return validDN(string(value))
	case SyntaxInteger:
		_, err := strconv.ParseInt(string(value), 10, 64)
		return err == nil
	case SyntaxBoolean:
		s := string(value)
		return s == "TRUE" || s == "FALSE"
	case SyntaxGeneralizedTime:
		_, ok := parseGeneralizedTime(string(value))
		return ok
	case SyntaxOID:
		return validOID(string(value))
	case SyntaxTelephoneNumber:
		return len(value) > 0 && allBytes(value, isTelephoneChar)
	case SyntaxIA5String:
		return allBytes(value, func(b byte) bool { return b < 0x80 })
	case SyntaxPrintableString:
		return len(value) > 0 && allBytes(value, isPrintableChar)
	case SyntaxNumericString:
		return len(value) > 0 && allBytes(value, func(b byte) bool { return b == ' ' || (b >= '0' && b <= '9') })
	case SyntaxUUID:
		_, err := uuid.ParseBytes(value)
		return err == nil
	}
	return true
}

// ValidValue returns true if the processed value has the type the syntax decodes to
// and its wire form is valid.
func ValidValue(syntax Syntax, value any) (ok bool) {
	switch syntax {
	case SyntaxInteger:
		switch value.(type) {
		case int, int64, int32:
			ok = true
		}
	case SyntaxBoolean:
		_, ok = value.(bool)
	case SyntaxGeneralizedTime:
		_, ok = value.(time.Time)
	case SyntaxOctetString:
		_, ok = value.([]byte)
	case SyntaxUUID:
		switch v := value.(type) {
		case uuid.UUID:
			ok = true
		case string:
			_, err := uuid.Parse(v)
			ok = err == nil
		}
	default:
		s, isString := value.(string)
		ok = isString && ValidRaw(syntax, []byte(s))
	}
	return
}

// Decode converts a value in wire form to its processed form.
func Decode(syntax Syntax, raw []byte) (value any, err error) {
	if !ValidRaw(syntax, raw) {
		err = NewError("sys.decode.invalidValue", "syntax", syntax, "value", string(raw))
		return
	}
	switch syntax {
	case SyntaxInteger:
		value, err = strconv.ParseInt(string(raw), 10, 64)
	case SyntaxBoolean:
		value = string(raw) == "TRUE"
	case SyntaxGeneralizedTime:
		value, _ = parseGeneralizedTime(string(raw))
	case SyntaxOctetString:
		value = append([]byte(nil), raw...)
	case SyntaxUUID:
		value, err = uuid.ParseBytes(raw)
	default:
		value = string(raw)
	}
	return
}

// Encode converts a processed value to its wire form. Strings are accepted for every
// syntax and are checked against it.
func Encode(syntax Syntax, value any) (raw []byte, err error) {
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case bool:
		if v {
			raw = []byte("TRUE")
		} else {
			raw = []byte("FALSE")
		}
	case int:
		raw = strconv.AppendInt(nil, int64(v), 10)
	case int32:
		raw = strconv.AppendInt(nil, int64(v), 10)
	case int64:
		raw = strconv.AppendInt(nil, v, 10)
	case time.Time:
		raw = []byte(v.UTC().Format(GeneralizedTimeFormat))
	case uuid.UUID:
		raw = []byte(v.String())
	default:
		err = NewError("sys.encode.unsupportedType", "syntax", syntax, "value", value)
		return
	}
	if !ValidRaw(syntax, raw) {
		err = NewError("sys.encode.invalidValue", "syntax", syntax, "value", value)
		raw = nil
	}
	return
}

func parseGeneralizedTime(s string) (t time.Time, ok bool) {
	for _, layout := range generalizedTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t = parsed.UTC()
			ok = true
			return
		}
	}
	return
}

func validDN(s string) bool {
	if s == "" {
		// The root DSE.
		return true
	}
	for _, rdn := range SplitDN(s) {
		typ, value, found := strings.Cut(rdn, "=")
		if !found || strings.TrimSpace(typ) == "" || strings.TrimSpace(value) == "" {
			return false
		}
	}
	return true
}

// SplitDN splits a distinguished name into its relative distinguished names, leaf first,
// honoring backslash escaped commas.
func SplitDN(dn string) (rdns []string) {
	if strings.TrimSpace(dn) == "" {
		return
	}
	var b strings.Builder
	escaped := false
	for _, r := range dn {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == ',':
			rdns = append(rdns, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	rdns = append(rdns, strings.TrimSpace(b.String()))
	return
}

func validOID(s string) bool {
	if s == "" {
		return false
	}
	// A descriptor such as "person".
	if isAlpha(s[0]) {
		for i := 1; i < len(s); i++ {
			if !isAlpha(s[i]) && !isDigit(s[i]) && s[i] != '-' {
				return false
			}
		}
		return true
	}
	for _, arc := range strings.Split(s, ".") {
		if arc == "" || !allBytes([]byte(arc), isDigit) {
			return false
		}
	}
	return true
}

func allBytes(value []byte, pred func(byte) bool) bool {
	for _, b := range value {
		if !pred(b) {
			return false
		}
	}
	return true
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isPrintableChar(b byte) bool {
	if isAlpha(b) || isDigit(b) {
		return true
	}
	switch b {
	case ' ', '\'', '(', ')', '+', ',', '-', '.', '/', ':', '=', '?':
		return true
	}
	return false
}

func isTelephoneChar(b byte) bool {
	if isDigit(b) {
		return true
	}
	switch b {
	case ' ', '-', '(', ')', '+', '.':
		return true
	}
	return false
}
