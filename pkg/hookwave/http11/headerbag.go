package http11

import (
	"strconv"
	"strings"
	"time"
)

// WValue represents an ETag or similar weak-validator header: a (weak,
// value) pair. String renders it per SPEC_FULL.md §6: W/"..." if weak,
// else "...".
type WValue struct {
	Weak  bool
	Value string
}

// String renders the WValue in ETag wire format.
func (w WValue) String() string {
	if w.Weak {
		return `W/"` + w.Value + `"`
	}
	return `"` + w.Value + `"`
}

// ContentRange represents the Content-Range response header's triple
// (from, to, total). Rendered as "bytes F-T/TOT".
type ContentRange struct {
	From, To, Total int64
}

// String renders the ContentRange in wire format.
func (c ContentRange) String() string {
	return "bytes " + strconv.FormatInt(c.From, 10) + "-" +
		strconv.FormatInt(c.To, 10) + "/" + strconv.FormatInt(c.Total, 10)
}

// CacheDirective is one element of a Cache-Control directive sequence: a
// name optionally followed by "=value". When Quoted is true and Value is
// non-empty, the value is wrapped in double quotes (used for the
// field-name parameter of the private/no-cache directives).
type CacheDirective struct {
	Name   string
	Value  string
	Quoted bool
}

// String renders one directive in wire format.
func (d CacheDirective) String() string {
	if d.Value == "" {
		return d.Name
	}
	if d.Quoted {
		return d.Name + `="` + d.Value + `"`
	}
	return d.Name + "=" + d.Value
}

// CacheControl joins a sequence of directives with ", " per SPEC_FULL.md §6.
func CacheControl(directives ...CacheDirective) string {
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

// ContentDisposition represents the mode + filename pair for the
// Content-Disposition response header.
type ContentDisposition struct {
	Attachment bool
	Filename   string
}

// String renders in wire format: "attachment" with an optional
// filename= parameter; "inline" when Attachment is false.
func (cd ContentDisposition) String() string {
	mode := "inline"
	if cd.Attachment {
		mode = "attachment"
	}
	if cd.Filename == "" {
		return mode
	}
	return mode + `; filename="` + cd.Filename + `"`
}

// httpTimeFormat is RFC 1123 rendered in UTC, per SPEC_FULL.md §6's
// Date/Expires/Last-Modified/cookie-Expires wire format requirement.
const httpTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// FormatHTTPTime renders t in RFC 1123 UTC, the format used across every
// date-valued header in this package.
func FormatHTTPTime(t time.Time) string {
	return t.UTC().Format(httpTimeFormat)
}

// SetETag sets the ETag header from a WValue.
func (rw *ResponseWriter) SetETag(v WValue) {
	rw.header.Set([]byte("ETag"), []byte(v.String()))
}

// SetContentRange sets the Content-Range header.
func (rw *ResponseWriter) SetContentRange(cr ContentRange) {
	rw.header.Set([]byte("Content-Range"), []byte(cr.String()))
}

// SetCacheControl sets the Cache-Control header from an ordered directive
// sequence.
func (rw *ResponseWriter) SetCacheControl(directives ...CacheDirective) {
	rw.header.Set([]byte("Cache-Control"), []byte(CacheControl(directives...)))
}

// SetContentDisposition sets the Content-Disposition header.
func (rw *ResponseWriter) SetContentDisposition(cd ContentDisposition) {
	rw.header.Set([]byte("Content-Disposition"), []byte(cd.String()))
}

// SetDate sets a date-valued header (Date, Expires, Last-Modified) in
// RFC 1123 UTC.
func (rw *ResponseWriter) SetDate(name string, t time.Time) {
	rw.header.Set([]byte(name), []byte(FormatHTTPTime(t)))
}

// RequestHeaderBag is the typed view over a request's headers: well-known
// fields get their own slot and a parsed representation (sets, flags, a
// parsed time), everything else collects into Extra in wire order. Built by
// ParseRequestHeaderBag from the flat Header the parser fills in.
type RequestHeaderBag struct {
	Accept          string
	AcceptCharset   string
	AcceptEncoding  EncodingSet
	AcceptLanguage  string
	AcceptRanges    AcceptRanges
	Connection      ConnectionFlags
	ContentLength   int64
	ContentType     string
	Cookies         []RequestCookie
	Host            string
	IfModifiedSince time.Time
	IfNoneMatch     string
	UserAgent       string
	Extra           []HeaderField
}

// HeaderField is one (name, value) pair that didn't map to a well-known
// RequestHeaderBag field, preserved in wire order.
type HeaderField struct {
	Name  string
	Value string
}

// RequestCookie is one name=value pair parsed out of a Cookie request
// header. Unlike the response-side Cookie (cookie.go) it carries no
// attributes: RFC 6265 §4.2 forbids a client from echoing those back.
type RequestCookie struct {
	Name  string
	Value string
}

// ParseRequestHeaderBag builds a RequestHeaderBag by visiting every header
// in h once. contentLength is threaded in from the caller (the parser
// already validated and parsed the raw Content-Length text) rather than
// re-parsed here.
func ParseRequestHeaderBag(h *Header, contentLength int64) *RequestHeaderBag {
	bag := &RequestHeaderBag{ContentLength: contentLength}
	seen := make(map[string]bool, 8)

	h.VisitAll(func(name, value []byte) bool {
		switch {
		case bytesEqualCaseInsensitive(name, headerAccept):
			setOnce(&bag.Accept, string(value), seen, "accept")
		case bytesEqualCaseInsensitive(name, headerAcceptCharset):
			setOnce(&bag.AcceptCharset, string(value), seen, "accept-charset")
		case bytesEqualCaseInsensitive(name, headerAcceptEncoding):
			if !seen["accept-encoding"] {
				bag.AcceptEncoding = parseAcceptEncodingSet(value)
				seen["accept-encoding"] = true
			}
		case bytesEqualCaseInsensitive(name, headerAcceptLanguage):
			setOnce(&bag.AcceptLanguage, string(value), seen, "accept-language")
		case bytesEqualCaseInsensitive(name, headerAcceptRanges):
			if !seen["accept-ranges"] {
				bag.AcceptRanges = parseAcceptRanges(value)
				seen["accept-ranges"] = true
			}
		case bytesEqualCaseInsensitive(name, headerConnection):
			bag.Connection |= parseConnectionFlags(value)
		case bytesEqualCaseInsensitive(name, headerContentType):
			setOnce(&bag.ContentType, string(value), seen, "content-type")
		case bytesEqualCaseInsensitive(name, headerCookie):
			bag.Cookies = append(bag.Cookies, parseCookieHeader(value)...)
		case bytesEqualCaseInsensitive(name, headerHost):
			setOnce(&bag.Host, string(value), seen, "host")
		case bytesEqualCaseInsensitive(name, headerIfModifiedSince):
			if !seen["if-modified-since"] {
				if t, err := time.Parse(httpTimeFormat, string(value)); err == nil {
					bag.IfModifiedSince = t
				}
				seen["if-modified-since"] = true
			}
		case bytesEqualCaseInsensitive(name, headerIfNoneMatch):
			setOnce(&bag.IfNoneMatch, string(value), seen, "if-none-match")
		case bytesEqualCaseInsensitive(name, headerUserAgent):
			setOnce(&bag.UserAgent, string(value), seen, "user-agent")
		case bytesEqualCaseInsensitive(name, headerContentLength):
			// carried in via the contentLength parameter instead; the parser
			// already rejected malformed/duplicate Content-Length text.
		default:
			bag.Extra = append(bag.Extra, HeaderField{Name: string(name), Value: string(value)})
		}
		return true
	})

	return bag
}

// setOnce assigns value to *dst the first time name is seen. Repeats of a
// well-known single-valued field are dropped per SPEC_FULL.md §3 rather than
// overwriting the first occurrence.
func setOnce(dst *string, value string, seen map[string]bool, name string) {
	if seen[name] {
		return
	}
	*dst = value
	seen[name] = true
}

func parseAcceptRanges(value []byte) AcceptRanges {
	if strings.EqualFold(strings.TrimSpace(string(value)), "bytes") {
		return AcceptRangesBytes
	}
	return AcceptRangesNone
}

func parseConnectionFlags(value []byte) ConnectionFlags {
	var flags ConnectionFlags
	for _, tok := range strings.Split(string(value), ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "close":
			flags |= ConnectionClose
		case "keep-alive":
			flags |= ConnectionKeepAlive
		case "upgrade":
			flags |= ConnectionUpgrade
		}
	}
	return flags
}

// parseAcceptEncodingSet tokenizes an Accept-Encoding value the same way
// NegotiateEncoding (gzip.go) does, but records every coding offered instead
// of picking one: a request's HeaderBag should expose what the client can
// accept, independent of which policy a handler later negotiates with.
func parseAcceptEncodingSet(value []byte) EncodingSet {
	var set EncodingSet
	for _, tok := range strings.Split(string(value), ",") {
		tok = strings.TrimSpace(tok)
		if semi := strings.IndexByte(tok, ';'); semi >= 0 {
			tok = strings.TrimSpace(tok[:semi])
		}
		switch strings.ToLower(tok) {
		case "gzip", "x-gzip":
			set |= EncodingSetGzip
		case "deflate":
			set |= EncodingSetDeflate
		case "compress", "x-compress":
			set |= EncodingSetCompress
		case "identity", "*":
			set |= EncodingSetIdentity
		}
	}
	return set
}

// parseCookieHeader splits a Cookie header's "name1=value1; name2=value2"
// form per RFC 6265 §4.2.2.
func parseCookieHeader(value []byte) []RequestCookie {
	var cookies []RequestCookie
	for _, pair := range strings.Split(string(value), ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		cookies = append(cookies, RequestCookie{
			Name:  strings.TrimSpace(pair[:eq]),
			Value: strings.TrimSpace(pair[eq+1:]),
		})
	}
	return cookies
}
