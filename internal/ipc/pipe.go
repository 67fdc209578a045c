// Package ipc implements the duplex named-pipe transport of spec.md §4.1:
// length-prefixed messages, a server that accepts at most one client at a
// time and restarts on disconnect, and a client whose writes are
// best-effort. Message boundaries are preserved; there is no flow control
// beyond the OS pipe buffers.
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/anvilforge/rig/internal/logging"
)

var log = logging.L("ipc")

// maxFrameSize bounds a single length-prefixed message to guard against a
// corrupt length header turning into an unbounded allocation.
const maxFrameSize = 64 * 1024 * 1024

// writeFrame writes one length-prefixed message: 4-byte big-endian length
// followed by the payload.
func writeFrame(w io.Writer, payload []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("ipc: write header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("ipc: write payload: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed message.
func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header)
	if length > maxFrameSize {
		return nil, fmt.Errorf("ipc: frame too large: %d", length)
	}
	if length == 0 {
		return []byte{}, nil
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("ipc: read payload: %w", err)
	}
	return payload, nil
}

// MessageHandler is called on every fully-received message. A call with
// data == nil signals peer disconnect; the handler should schedule a
// restart (see the rig package's Restart Coordinator).
type MessageHandler func(data []byte)

// Server accepts at most one client connection at a time on a named pipe
// and restarts automatically after disconnect (spec.md §4.1).
type Server struct {
	name    string
	handler MessageHandler

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	stopped  bool
}

// NewServer creates (but does not start) a pipe server under the given
// name. bufferHint < 0 requests the platform default buffer size.
func NewServer(name string, bufferHint int, handler MessageHandler) *Server {
	return &Server{name: name, handler: handler}
}

// Start begins listening and accepting connections. It returns once the
// listener is established; connection handling runs in background
// goroutines.
func (s *Server) Start() error {
	ln, err := listen(s.name)
	if err != nil {
		return fmt.Errorf("ipc: listen %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go s.acceptLoop()
	log.Info("ipc server started", "pipe", s.name)
	return nil
}

func (s *Server) acceptLoop() {
	for {
		s.mu.Lock()
		ln := s.listener
		stopped := s.stopped
		s.mu.Unlock()
		if stopped || ln == nil {
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return
			}
			log.Warn("ipc accept failed", "pipe", s.name, "error", err)
			continue
		}

		s.mu.Lock()
		if s.conn != nil {
			// Only one client at a time: reject by closing immediately.
			_ = conn.Close()
			s.mu.Unlock()
			continue
		}
		s.conn = conn
		s.mu.Unlock()

		s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		s.handler(nil) // peer disconnect signal
	}()

	for {
		data, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				log.Debug("ipc read ended", "pipe", s.name, "error", err)
			}
			return
		}
		s.handler(data)
	}
}

// Stop closes the listener and any active connection. Stop is idempotent.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Restart stops and restarts the listener under the same name. Used by the
// Restart Coordinator (spec.md §4.2) after a disconnect.
func (s *Server) Restart() error {
	s.mu.Lock()
	s.stopped = false
	old := s.listener
	s.listener = nil
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return s.Start()
}

// Client is a best-effort writer to a named pipe server. Writes when not
// connected return false; the caller must buffer or drop per channel
// semantics (spec.md §4.1, §4.3).
type Client struct {
	name string
	mu   sync.Mutex
	conn net.Conn
}

// NewClient creates an unopened client.
func NewClient(name string) *Client {
	return &Client{name: name}
}

// Open connects to the named pipe server.
func (c *Client) Open() error {
	conn, err := dial(c.name)
	if err != nil {
		return fmt.Errorf("ipc: dial %s: %w", c.name, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Write sends one length-prefixed message. Returns false (not an error) if
// not currently connected, matching spec.md §4.1's "best-effort" contract.
func (c *Client) Write(payload []byte) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false
	}
	if err := writeFrame(conn, payload); err != nil {
		log.Debug("ipc client write failed", "pipe", c.name, "error", err)
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		return false
	}
	return true
}

// Connected reports whether the client currently holds an open connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close closes the client connection, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
