package microxml

import (
	"strconv"
	"unicode/utf8"
)

// PredefinedEntities are the named references every table resolves.
var PredefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"quot": `"`,
	"apos": "'",
}

const maxCodePoint = 0x10FFFF

// entityTable resolves named references. extra adds names to the
// predefined entities; it cannot redefine them.
type entityTable struct {
	extra map[string]string
}

func (t entityTable) lookup(name string) (string, bool) {
	if v, ok := PredefinedEntities[name]; ok {
		return v, true
	}
	v, ok := t.extra[name]
	return v, ok
}

// resolveNamed returns the text for &name;. Unknown names come back verbatim
// with ok set to false.
func (t entityTable) resolveNamed(name string) (text string, ok bool) {
	if v, ok := t.lookup(name); ok {
		return v, true
	}
	return "&" + name + ";", false
}

// resolveNumeric returns the text for a numeric reference given its hex or
// decimal digits (exactly one is non-empty). Out-of-range values come back as
// the reference text as written, with ok set to false. Surrogate code points
// cannot be represented in UTF-8 and resolve to U+FFFD, also with ok false.
func resolveNumeric(hex, dec string) (text string, ok bool) {
	var (
		v   uint64
		err error
		raw string
	)
	if hex != "" {
		raw = "&#x" + hex + ";"
		v, err = strconv.ParseUint(hex, 16, 32)
	} else {
		raw = "&#" + dec + ";"
		v, err = strconv.ParseUint(dec, 10, 32)
	}
	if err != nil || v > maxCodePoint {
		return raw, false
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return string(utf8.RuneError), false
	}
	return string(r), true
}
