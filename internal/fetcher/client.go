package fetcher

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HRemonen/Flux/internal/web"
)

type state int

const (
	disconnected state = iota
	connected
)

func (s state) String() string {
	if s == connected {
		return "connected"
	}
	return "disconnected"
}

// Client owns one TCP connection and speaks a single HTTP/1.1 exchange
// over it. A Client is not safe for concurrent use; run independent
// fetches on independent Clients.
//
// Any transport error drops the connection, after which Connect has to be
// called again.
type Client struct {
	cfg   Config
	state state
	conn  net.Conn
	br    *bufio.Reader
	host  string
	port  uint16
}

// NewClient returns a disconnected Client.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool {
	return c.state == connected
}

// Connect opens a TCP connection to host:port, closing any previous one.
func (c *Client) Connect(host string, port uint16) error {
	_ = c.Close()

	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	d := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return web.ConnectionError("dial "+addr, err)
	}

	tracer().Debugf("connected to %s", addr)
	c.conn = conn
	c.br = bufio.NewReader(conn)
	c.host, c.port = host, port
	c.state = connected
	return nil
}

// Close releases the connection. It is a no-op when disconnected.
func (c *Client) Close() error {
	if c.state != connected {
		return nil
	}
	c.state = disconnected
	c.br = nil
	err := c.conn.Close()
	c.conn = nil
	return err
}

// SendRequest writes req to the connection. A Host header for the
// connected host is added unless req carries one.
func (c *Client) SendRequest(req *web.Request) error {
	if c.state != connected {
		return web.ConnectionError("send before connect", nil)
	}

	host := c.host
	if c.port != 80 {
		host = net.JoinHostPort(c.host, strconv.Itoa(int(c.port)))
	}

	bw := bufio.NewWriter(c.conn)
	if _, err := bw.Write(req.Serialize(host)); err != nil {
		return c.fail(web.IOError("write", err))
	}
	if err := bw.Flush(); err != nil {
		return c.fail(web.IOError("flush", err))
	}

	tracer().Debugf("sent %s %s to %s", req.Method, req.Path, c.conn.RemoteAddr())
	return nil
}

// ReceiveRawResponse reads one complete response: the header block plus a
// body framed by chunked encoding, Content-Length, or connection close, in
// that order of precedence. The bytes are returned exactly as read,
// including chunk framing.
func (c *Client) ReceiveRawResponse() ([]byte, error) {
	if c.state != connected {
		return nil, web.ConnectionError("receive before connect", nil)
	}

	var raw bytes.Buffer
	head, err := c.readHead()
	if err != nil {
		return nil, c.fail(err)
	}
	raw.Write(head)

	headers := web.ParseHeaders(strings.Split(string(head), "\n")[1:])
	switch {
	case headers.IsChunked():
		err = c.readChunked(&raw)
	default:
		if cl, ok := headers.Get("Content-Length"); ok {
			err = c.readContentLength(&raw, cl)
		} else {
			err = c.readUntilClose(&raw)
		}
	}
	if err != nil {
		return nil, c.fail(err)
	}

	tracer().Debugf("received %d raw bytes from %s", raw.Len(), c.conn.RemoteAddr())
	return raw.Bytes(), nil
}

// ParseResponse parses bytes returned by ReceiveRawResponse.
func (c *Client) ParseResponse(raw []byte) (*web.Response, error) {
	return web.ParseResponse(raw)
}

// fail drops the connection and returns err.
func (c *Client) fail(err error) error {
	if cerr := c.Close(); cerr != nil {
		tracer().Errorf("closing connection after failure: %v", cerr)
	}
	return err
}

// readHead reads byte by byte until the buffer ends with a blank line,
// CRLF or bare LF, whichever shows up first.
func (c *Client) readHead() ([]byte, error) {
	var head []byte
	for {
		b, err := c.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, web.IOError("read", err)
		}
		head = append(head, b)
		if b == '\n' && (bytes.HasSuffix(head, []byte("\r\n\r\n")) || bytes.HasSuffix(head, []byte("\n\n"))) {
			return head, nil
		}
		if c.cfg.MaxHeaderBytes > 0 && len(head) > c.cfg.MaxHeaderBytes {
			return nil, web.ParseError("header block exceeds %d bytes", c.cfg.MaxHeaderBytes)
		}
	}
}

func (c *Client) readLine() ([]byte, error) {
	line, err := c.br.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, web.IOError("read", err)
	}
	return line, nil
}

func (c *Client) readChunked(out *bytes.Buffer) error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		out.Write(line)

		size, err := web.ParseChunkSize(string(line))
		if err != nil {
			return err
		}
		if size == 0 {
			return c.readTrailer(out)
		}

		// chunk data plus its trailing CRLF
		if _, err := io.CopyN(out, c.br, int64(size)+2); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return web.IOError("read", err)
		}
	}
}

// readTrailer consumes optional trailer fields and the final empty line.
func (c *Client) readTrailer(out *bytes.Buffer) error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		out.Write(line)
		if len(bytes.TrimRight(line, "\r\n")) == 0 {
			return nil
		}
	}
}

func (c *Client) readContentLength(out *bytes.Buffer, value string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n < 0 {
		return web.ParseError("invalid Content-Length %q", value)
	}
	if _, err := io.CopyN(out, c.br, n); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return web.IOError("read", err)
	}
	return nil
}

// readUntilClose reads until the peer closes the connection or stays idle
// for IdleReadTimeout. Both count as the end of the body.
func (c *Client) readUntilClose(out *bytes.Buffer) error {
	defer func() {
		if c.conn != nil {
			_ = c.conn.SetReadDeadline(time.Time{})
		}
	}()

	buf := make([]byte, 4096)
	for {
		if c.cfg.IdleReadTimeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleReadTimeout)); err != nil {
				return web.IOError("read", err)
			}
		}
		n, err := c.br.Read(buf)
		out.Write(buf[:n])
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, os.ErrDeadlineExceeded):
			tracer().Debugf("no data for %s, treating body as complete", c.cfg.IdleReadTimeout)
			return nil
		default:
			return web.IOError("read", err)
		}
	}
}
