package index

import (
	"strings"

	"github.com/dball/ldapabstract/internal/sys"
)

// Key is a normalized, root-first form of a distinguished name. Keys sort so that every
// entry's descendants immediately follow it.
type Key string

const keySeparator = "\x00"

func normalizeRDN(rdn string) string {
	typ, value, found := strings.Cut(rdn, "=")
	if !found {
		return strings.ToLower(rdn)
	}
	return strings.ToLower(strings.TrimSpace(typ)) + "=" + strings.ToLower(strings.TrimSpace(value))
}

// KeyOf returns the index key of a distinguished name. The empty name is the root.
func KeyOf(dn string) Key {
	rdns := sys.SplitDN(dn)
	var b strings.Builder
	for i := len(rdns) - 1; i >= 0; i-- {
		b.WriteString(normalizeRDN(rdns[i]))
		b.WriteString(keySeparator)
	}
	return Key(b.String())
}

// Depth returns the number of relative distinguished names in the key.
func (key Key) Depth() int {
	return strings.Count(string(key), keySeparator)
}

// Within returns true if the key is the base key or one of its descendants.
func (key Key) Within(base Key) bool {
	return strings.HasPrefix(string(key), string(base))
}
