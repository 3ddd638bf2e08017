package telnet

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"sync"
	"time"
)

// Telnet command bytes per RFC 854.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240
	NOP  byte = 241

	OptSuppressGoAhead byte = 3
)

// Conn wraps a TCP connection with Telnet line handling.
//
// Reads happen on the session goroutine; writes may come from any
// goroutine and are serialised.
type Conn struct {
	// ID identifies the session for logging.
	ID string

	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	// status reports whether the cursor sits on an unterminated status or
	// prompt line that the next write should replace.
	status bool

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads one line of input with Telnet commands and control
// characters removed. The trailing CR/LF is not included.
//
// Postcondition: Returns the next line of text input, or an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	line, err := c.readLine()
	if err == nil {
		// The client's own newline ended the prompt line.
		c.mu.Lock()
		c.status = false
		c.mu.Unlock()
	}
	return line, err
}

func (c *Conn) readLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b == '\b' || b == 0x7f:
			if line.Len() > 0 {
				line.Truncate(line.Len() - 1)
			}
		case b < 32 && b != '\t':
		default:
			line.WriteByte(b)
		}
	}
}

// skipCommand consumes the remainder of an IAC sequence.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err := c.reader.ReadByte()
		return err
	case SB:
		prev := byte(0)
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

func (c *Conn) write(s string) error {
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := fmt.Fprint(c.raw, s)
	return err
}

// WriteLine sends text followed by CRLF, first terminating any status line.
func (c *Conn) WriteLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := ""
	if c.status {
		prefix = ClearLine
		c.status = false
	}
	return c.write(prefix + text + "\r\n")
}

// WriteStatus overwrites the current line in place. Consecutive calls
// animate a single line; the next WriteLine replaces it.
func (c *Conn) WriteStatus(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = true
	return c.write(ClearLine + text)
}

// WritePrompt sends a prompt without a trailing newline. Output written
// before the next ReadLine returns replaces the prompt line.
func (c *Conn) WritePrompt(prompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := ""
	if c.status {
		prefix = ClearLine
	}
	c.status = true
	return c.write(prefix + prompt)
}

// Write sends raw bytes to the client.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Ring sounds the terminal bell.
func (c *Conn) Ring() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(Bell)
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
