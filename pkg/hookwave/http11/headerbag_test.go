package http11

import (
	"testing"
	"time"
)

func TestWValueString(t *testing.T) {
	if got := (WValue{Weak: false, Value: "abc"}).String(); got != `"abc"` {
		t.Fatalf("got %q", got)
	}
	if got := (WValue{Weak: true, Value: "abc"}).String(); got != `W/"abc"` {
		t.Fatalf("got %q", got)
	}
}

func TestContentRangeString(t *testing.T) {
	cr := ContentRange{From: 0, To: 499, Total: 1000}
	if got := cr.String(); got != "bytes 0-499/1000" {
		t.Fatalf("got %q", got)
	}
}

func TestCacheControlJoinsDirectives(t *testing.T) {
	got := CacheControl(
		CacheDirective{Name: "no-cache"},
		CacheDirective{Name: "max-age", Value: "3600"},
	)
	want := "no-cache, max-age=3600"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSetETagRoundTrip(t *testing.T) {
	rw := GetResponseWriter(nopWriter{})
	defer PutResponseWriter(rw)

	rw.SetETag(WValue{Weak: true, Value: "v1"})
	if got := rw.header.GetString([]byte("ETag")); got != `W/"v1"` {
		t.Fatalf("got %q", got)
	}
}

func TestSetDateFormatsRFC1123UTC(t *testing.T) {
	rw := GetResponseWriter(nopWriter{})
	defer PutResponseWriter(rw)

	ts := time.Date(2026, 7, 31, 12, 0, 0, 0, time.FixedZone("X", 3600))
	rw.SetDate("Date", ts)
	if got := rw.header.GetString([]byte("Date")); got != "Fri, 31 Jul 2026 11:00:00 GMT" {
		t.Fatalf("got %q", got)
	}
}

func TestParseRequestHeaderBagWellKnownFields(t *testing.T) {
	var h Header
	h.Add([]byte("Accept"), []byte("text/html"))
	h.Add([]byte("Accept-Encoding"), []byte("gzip, deflate"))
	h.Add([]byte("Accept-Ranges"), []byte("bytes"))
	h.Add([]byte("Connection"), []byte("keep-alive, Upgrade"))
	h.Add([]byte("Content-Type"), []byte("application/json"))
	h.Add([]byte("Cookie"), []byte("a=1; b=2"))
	h.Add([]byte("Host"), []byte("example.com"))
	h.Add([]byte("If-None-Match"), []byte(`"v1"`))
	h.Add([]byte("User-Agent"), []byte("test-agent/1.0"))
	h.Add([]byte("X-Custom-Trace"), []byte("abc"))

	bag := ParseRequestHeaderBag(&h, 42)

	if bag.Accept != "text/html" {
		t.Fatalf("Accept = %q", bag.Accept)
	}
	if !bag.AcceptEncoding.Has(EncodingGzip) || !bag.AcceptEncoding.Has(EncodingDeflate) {
		t.Fatalf("AcceptEncoding = %v, want gzip+deflate", bag.AcceptEncoding)
	}
	if bag.AcceptEncoding.Has(EncodingCompress) {
		t.Fatal("AcceptEncoding should not include compress")
	}
	if bag.AcceptRanges != AcceptRangesBytes {
		t.Fatalf("AcceptRanges = %v, want bytes", bag.AcceptRanges)
	}
	if !bag.Connection.Has(ConnectionKeepAlive) || !bag.Connection.Has(ConnectionUpgrade) {
		t.Fatalf("Connection = %v, want keep-alive|upgrade", bag.Connection)
	}
	if bag.Connection.Has(ConnectionClose) {
		t.Fatal("Connection should not include close")
	}
	if bag.ContentType != "application/json" {
		t.Fatalf("ContentType = %q", bag.ContentType)
	}
	if bag.ContentLength != 42 {
		t.Fatalf("ContentLength = %d, want 42", bag.ContentLength)
	}
	if len(bag.Cookies) != 2 || bag.Cookies[0].Name != "a" || bag.Cookies[1].Value != "2" {
		t.Fatalf("Cookies = %+v", bag.Cookies)
	}
	if bag.Host != "example.com" {
		t.Fatalf("Host = %q", bag.Host)
	}
	if bag.IfNoneMatch != `"v1"` {
		t.Fatalf("IfNoneMatch = %q", bag.IfNoneMatch)
	}
	if bag.UserAgent != "test-agent/1.0" {
		t.Fatalf("UserAgent = %q", bag.UserAgent)
	}
	if len(bag.Extra) != 1 || bag.Extra[0].Name != "X-Custom-Trace" {
		t.Fatalf("Extra = %+v", bag.Extra)
	}
}

func TestParseRequestHeaderBagDropsDuplicateWellKnownHeaders(t *testing.T) {
	var h Header
	h.Add([]byte("Host"), []byte("first.example.com"))
	h.Add([]byte("Host"), []byte("second.example.com"))

	bag := ParseRequestHeaderBag(&h, 0)
	if bag.Host != "first.example.com" {
		t.Fatalf("Host = %q, want first occurrence kept", bag.Host)
	}
}

func TestRequestHeaderBagLazyAndCached(t *testing.T) {
	req := GetRequest()
	defer PutRequest(req)

	req.Header.Add([]byte("Host"), []byte("cached.example.com"))
	req.ContentLength = 7

	first := req.HeaderBag()
	second := req.HeaderBag()
	if first != second {
		t.Fatal("HeaderBag() should cache and return the same instance")
	}
	if first.Host != "cached.example.com" {
		t.Fatalf("Host = %q", first.Host)
	}
}
