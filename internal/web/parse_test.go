package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHeadersAndBody(t *testing.T) {
	head, body, err := SplitHeadersAndBody([]byte("HTTP/1.1 200 OK\r\nA: b\r\n\r\nhello\n\nworld"))
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\nA: b", string(head))
	assert.Equal(t, "hello\n\nworld", string(body))

	head, body, err = SplitHeadersAndBody([]byte("HTTP/1.0 200 OK\nA: b\n\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.0 200 OK\nA: b", string(head))
	assert.Equal(t, "body", string(body))

	_, _, err = SplitHeadersAndBody([]byte("HTTP/1.1 200 OK\r\nA: b\r\n"))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestSplitHeadersAndBody_FirstBlankLineWins(t *testing.T) {
	head, body, err := SplitHeadersAndBody([]byte("HTTP/1.1 200 OK\nContent-Length: 10\n\nab\r\n\r\ncdef"))
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\nContent-Length: 10", string(head))
	assert.Equal(t, "ab\r\n\r\ncdef", string(body))
}

func TestParseStatusLine(t *testing.T) {
	code, reason, err := ParseStatusLine("HTTP/1.1 404 Not   Found")
	require.NoError(t, err)
	assert.Equal(t, uint16(404), code)
	assert.Equal(t, "Not Found", reason)

	code, reason, err = ParseStatusLine("HTTP/1.1 204")
	require.NoError(t, err)
	assert.Equal(t, uint16(204), code)
	assert.Equal(t, "", reason)

	_, _, err = ParseStatusLine("HTTP/1.1 abc OK")
	assert.ErrorIs(t, err, ErrInvalidData)

	_, _, err = ParseStatusLine("HTTP/1.1")
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestParseHeaders_SkipsMalformed(t *testing.T) {
	h := ParseHeaders([]string{"Content-Type: text/html", "malformed-no-colon", "X: Y"})

	assert.Equal(t, Header{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "X", Value: "Y"},
	}, h)
}

func TestParseHeaders_SplitsAtFirstColon(t *testing.T) {
	h := ParseHeaders([]string{"  Location :  http://example.com:8080/  "})
	require.Len(t, h, 1)
	assert.Equal(t, "Location", h[0].Name)
	assert.Equal(t, "http://example.com:8080/", h[0].Value)
}

func TestParseResponse(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nX-Dup: 1\r\nx-dup: 2\r\n\r\n<p>hi</p>"
	res, err := ParseResponse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, uint16(200), res.StatusCode)
	assert.Equal(t, "OK", res.ReasonPhrase)
	assert.Equal(t, "<p>hi</p>", res.Text())

	v, ok := res.GetHeader("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/html", v)

	v, ok = res.GetHeader("X-DUP")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = res.GetHeader("Missing")
	assert.False(t, ok)
}

func TestParseResponse_DecodesChunked(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n1;ext=1\r\n \r\n5\r\nworld\r\n0\r\n\r\n"
	res, err := ParseResponse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(res.Body))
}

func TestParseResponse_LFOnlyHead(t *testing.T) {
	raw := "HTTP/1.1 200 OK\nTransfer-Encoding: chunked\n\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	res, err := ParseResponse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(res.Body))

	raw = "HTTP/1.1 200 OK\nContent-Length: 10\n\nab\r\n\r\ncdef"
	res, err = ParseResponse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "ab\r\n\r\ncdef", res.Text())
	v, ok := res.GetHeader("Content-Length")
	assert.True(t, ok)
	assert.Equal(t, "10", v)
}

func TestParseResponse_Errors(t *testing.T) {
	tests := map[string]string{
		"no separator":     "HTTP/1.1 200 OK\r\n",
		"missing status":   "\r\n\r\nbody",
		"bad status code":  "HTTP/1.1 twohundred OK\r\n\r\n",
		"non utf8 headers": "HTTP/1.1 200 OK\r\nX: \xff\xfe\r\n\r\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidData)
		})
	}
}

func TestParseResponse_BadChunkSize(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\nhello\r\n0\r\n\r\n"
	_, err := ParseResponse([]byte(raw))
	assert.ErrorIs(t, err, ErrParse)
}

func TestDecodeChunked_Truncated(t *testing.T) {
	_, err := DecodeChunked([]byte("a\r\nshort"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestResponse_ContentType(t *testing.T) {
	res := &Response{Headers: Header{{Name: "Content-Type", Value: "Text/HTML; charset=utf-8"}}}
	assert.Equal(t, "text/html", res.ContentType())

	res = &Response{}
	assert.Equal(t, "text/html", res.ContentType())
}
