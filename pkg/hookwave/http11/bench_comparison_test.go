//go:build bench

package http11

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
)

// Three-way comparison benchmarks: this engine vs fasthttp vs net/http.
//
// Run with: go test -tags bench -bench=BenchmarkCompare -benchmem -benchtime=3s

var (
	compareSimpleGET = "GET /api/users HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"User-Agent: Go-http-client/1.1\r\n" +
		"\r\n"

	comparePOST = "POST /api/users HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: 25\r\n" +
		"\r\n" +
		`{"name":"Alice","age":30}`

	compareMultipleHeaders = "GET /api/data HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"User-Agent: Mozilla/5.0\r\n" +
		"Accept: application/json\r\n" +
		"Accept-Encoding: gzip, deflate\r\n" +
		"Accept-Language: en-US,en;q=0.9\r\n" +
		"Cache-Control: no-cache\r\n" +
		"Connection: keep-alive\r\n" +
		"Cookie: session=abc123\r\n" +
		"\r\n"

	compareJSONData = []byte(`{"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`)
)

func BenchmarkCompare_ParseSimpleGET_Hookwave(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(compareSimpleGET)))
	for i := 0; i < b.N; i++ {
		parser := GetParser()
		req, err := parser.Parse(strings.NewReader(compareSimpleGET))
		if err != nil {
			b.Fatal(err)
		}
		PutRequest(req)
		PutParser(parser)
	}
}

func BenchmarkCompare_ParseSimpleGET_FastHTTP(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(compareSimpleGET)))
	for i := 0; i < b.N; i++ {
		var req fasthttp.Request
		if err := req.Read(bufio.NewReader(strings.NewReader(compareSimpleGET))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_ParseSimpleGET_NetHTTP(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(compareSimpleGET)))
	for i := 0; i < b.N; i++ {
		r := bufio.NewReader(strings.NewReader(compareSimpleGET))
		if _, err := http.ReadRequest(r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_ParsePOST_Hookwave(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(comparePOST)))
	for i := 0; i < b.N; i++ {
		parser := GetParser()
		req, err := parser.Parse(strings.NewReader(comparePOST))
		if err != nil {
			b.Fatal(err)
		}
		PutRequest(req)
		PutParser(parser)
	}
}

func BenchmarkCompare_ParsePOST_FastHTTP(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(comparePOST)))
	for i := 0; i < b.N; i++ {
		var req fasthttp.Request
		if err := req.Read(bufio.NewReader(strings.NewReader(comparePOST))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_ParsePOST_NetHTTP(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(comparePOST)))
	for i := 0; i < b.N; i++ {
		r := bufio.NewReader(strings.NewReader(comparePOST))
		if _, err := http.ReadRequest(r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_ParseMultipleHeaders_Hookwave(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(compareMultipleHeaders)))
	for i := 0; i < b.N; i++ {
		parser := GetParser()
		req, err := parser.Parse(strings.NewReader(compareMultipleHeaders))
		if err != nil {
			b.Fatal(err)
		}
		PutRequest(req)
		PutParser(parser)
	}
}

func BenchmarkCompare_ParseMultipleHeaders_FastHTTP(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(compareMultipleHeaders)))
	for i := 0; i < b.N; i++ {
		var req fasthttp.Request
		if err := req.Read(bufio.NewReader(strings.NewReader(compareMultipleHeaders))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_ParseMultipleHeaders_NetHTTP(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(compareMultipleHeaders)))
	for i := 0; i < b.N; i++ {
		r := bufio.NewReader(strings.NewReader(compareMultipleHeaders))
		if _, err := http.ReadRequest(r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_WriteJSON_Hookwave(b *testing.B) {
	b.ReportAllocs()

	var buf bytes.Buffer
	bufWriter := bufio.NewWriter(&buf)

	for i := 0; i < b.N; i++ {
		buf.Reset()
		bufWriter.Reset(&buf)

		rw := GetResponseWriter(bufWriter)
		if err := rw.WriteJSON(200, compareJSONData); err != nil {
			b.Fatal(err)
		}
		if err := rw.Flush(); err != nil {
			b.Fatal(err)
		}
		PutResponseWriter(rw)
	}
	b.SetBytes(int64(buf.Len()))
}

func BenchmarkCompare_WriteJSON_FastHTTP(b *testing.B) {
	b.ReportAllocs()

	var buf bytes.Buffer

	for i := 0; i < b.N; i++ {
		buf.Reset()

		var resp fasthttp.Response
		resp.SetStatusCode(200)
		resp.Header.SetContentType("application/json")
		resp.SetBody(compareJSONData)
		if _, err := resp.WriteTo(&buf); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(buf.Len()))
}

func BenchmarkCompare_WriteJSON_NetHTTP(b *testing.B) {
	b.ReportAllocs()

	var buf bytes.Buffer

	for i := 0; i < b.N; i++ {
		buf.Reset()

		resp := &http.Response{
			StatusCode: 200,
			ProtoMajor: 1,
			ProtoMinor: 1,
			Header:     make(http.Header),
			Body:       io.NopCloser(bytes.NewReader(compareJSONData)),
		}
		resp.Header.Set("Content-Type", "application/json")
		if err := resp.Write(&buf); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(buf.Len()))
}
