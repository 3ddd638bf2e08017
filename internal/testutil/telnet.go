package testutil

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a line-oriented client for exercising a chance session.
type TelnetClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
	seen   strings.Builder
}

// NewTelnetClient dials addr and returns a connected client.
//
// Precondition: addr must be a "host:port" with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, reader: bufio.NewReader(conn), t: t}
}

// Expect reads until substr appears in the ANSI- and IAC-stripped output
// and returns everything read by this call. Output after the match is
// kept for the next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) Expect(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		text := c.seen.String()
		if i := strings.Index(text, substr); i >= 0 {
			end := i + len(substr)
			c.seen.Reset()
			c.seen.WriteString(text[end:])
			return text[:end]
		}
		b, err := c.reader.ReadByte()
		if err != nil {
			c.t.Fatalf("waiting for %q: got %q, error: %v", substr, text, err)
		}
		c.consume(b)
	}
}

// consume appends b unless it belongs to a telnet command or escape sequence.
func (c *TelnetClient) consume(b byte) {
	switch b {
	case 255:
		cmd, _ := c.reader.ReadByte()
		if cmd >= 251 && cmd <= 254 {
			_, _ = c.reader.ReadByte()
		}
	case 0x1b:
		next, _ := c.reader.ReadByte()
		if next != '[' {
			return
		}
		for {
			x, err := c.reader.ReadByte()
			if err != nil || (x >= '@' && x <= '~') {
				return
			}
		}
	case '\a':
	default:
		c.seen.WriteByte(b)
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
