package storage

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultDownloadName is used when the requested filename is empty after cleaning.
const DefaultDownloadName = "download"

// ContentDisposition builds an attachment Content-Disposition value for filename.
//
// The quoted filename parameter always holds a printable-ASCII rendering with
// quotes and backslashes escaped. When that rendering differs from the cleaned
// name, an RFC 5987 filename* parameter carries the exact UTF-8 name.
func ContentDisposition(filename string) string {
	name := cleanFilename(filename)
	fallback := asciiFallback(name)

	var b strings.Builder
	b.WriteString(`attachment; filename="`)
	b.WriteString(quoteEscape(fallback))
	b.WriteByte('"')

	if fallback != name || strings.ContainsAny(name, `"\`) {
		b.WriteString("; filename*=UTF-8''")
		b.WriteString(encodeRFC5987(name))
	}
	return b.String()
}

// FilenameFromKey returns the last path segment of an object key.
func FilenameFromKey(key string) string {
	base := path.Base(strings.TrimRight(key, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// cleanFilename drops control characters, flattens path separators and trims space.
func cleanFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, s)

	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultDownloadName
	}
	return s
}

// asciiFallback strips diacritics and replaces what is left outside printable ASCII.
func asciiFallback(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, stripped)
}

func quoteEscape(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

// encodeRFC5987 percent-encodes every byte outside attr-char.
func encodeRFC5987(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
