package http11

import (
	"strconv"
	"strings"
	"time"
)

// SameSite is the Set-Cookie SameSite attribute.
type SameSite uint8

const (
	SameSiteDefault SameSite = iota
	SameSiteLax
	SameSiteStrict
	SameSiteNone
)

func (s SameSite) String() string {
	switch s {
	case SameSiteLax:
		return "Lax"
	case SameSiteStrict:
		return "Strict"
	case SameSiteNone:
		return "None"
	default:
		return ""
	}
}

// Cookie is a Set-Cookie value object. Name and Value are the unescaped
// logical strings; String() percent-escapes Value on emission so callers
// never have to hand-escape cookie payloads themselves.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int // seconds; 0 means "unset", negative means "delete now"
	Secure   bool
	HttpOnly bool
	SameSite SameSite
}

// cookieEscape percent-escapes the cookie-octet-unsafe bytes in v: control
// characters, space, quote, comma, semicolon and backslash, plus any
// non-ASCII byte. This is narrower than url.QueryEscape (it leaves the
// common separators '=' and most punctuation alone) so typical tokens like
// JWTs round-trip without inflation.
func cookieEscape(v string) string {
	needsEscape := false
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c < 0x21 || c == 0x22 || c == 0x2c || c == 0x3b || c == 0x5c || c >= 0x7f {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return v
	}

	var b strings.Builder
	b.Grow(len(v) + 8)
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c < 0x21 || c == 0x22 || c == 0x2c || c == 0x3b || c == 0x5c || c >= 0x7f {
			b.WriteByte('%')
			b.WriteByte(hexDigit(c >> 4))
			b.WriteByte(hexDigit(c & 0x0f))
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + (n - 10)
}

// String renders the Cookie in Set-Cookie wire format.
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(cookieEscape(c.Value))

	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(FormatHTTPTime(c.Expires))
	}
	if c.MaxAge != 0 {
		b.WriteString("; Max-Age=")
		if c.MaxAge < 0 {
			b.WriteString("0")
		} else {
			b.WriteString(strconv.Itoa(c.MaxAge))
		}
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if s := c.SameSite.String(); s != "" {
		b.WriteString("; SameSite=")
		b.WriteString(s)
	}
	return b.String()
}

// AddCookie appends a Set-Cookie header. Unlike the other typed setters,
// multiple cookies coexist as separate header lines, so this always Adds
// rather than Sets.
func (rw *ResponseWriter) AddCookie(c Cookie) {
	rw.header.Add([]byte("Set-Cookie"), []byte(c.String()))
}

// DeleteCookie emits a Set-Cookie that expires name immediately on path.
func (rw *ResponseWriter) DeleteCookie(name, path string) {
	rw.AddCookie(Cookie{
		Name:    name,
		Value:   "",
		Path:    path,
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}
