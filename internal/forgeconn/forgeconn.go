// Package forgeconn implements the Capture Host's control/event channel to
// Forge (spec.md §4.9): a reconnecting WebSocket client carrying Forge's
// commands (connect, capture_new_process, query_mics, update_settings,
// save_recording_buffer) one way and CH's events (started_recording,
// stopped_recording, buffer_ready, mic_list) the other.
//
// Unlike RiG's Forge Event Channel (internal/rig.EventChannel), which drops
// events while disconnected, this channel queues them (§8 invariant #8) and
// drains the queue in order on the first successful write after reconnect,
// per original_source/IPC.hpp's pre-connection buffering behavior.
package forgeconn

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/protocol"
)

var log = logging.L("forgeconn")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
	jitterFactor   = 0.3

	// defaultQueueCap bounds the pending-event queue. spec.md leaves the
	// bound unspecified; original_source/IPC.hpp drops the oldest queued
	// message on overflow rather than blocking the producer, which this
	// carries over verbatim (§5 supplemented features).
	defaultQueueCap = 256
)

var errNotConnected = errors.New("forgeconn: not connected")

// CommandHandler processes one raw JSON command frame received from Forge.
type CommandHandler func(data []byte)

// Config holds the CH-side WebSocket client configuration.
type Config struct {
	ServerURL string
}

// Channel is the CH <-> Forge control/event WebSocket client.
type Channel struct {
	cfg      *Config
	handler  CommandHandler
	queueCap int

	mu    sync.Mutex
	queue []protocol.Event

	connMu sync.RWMutex
	conn   *websocket.Conn

	// writeFunc, when set, replaces the real socket write for tests.
	writeFunc func(data []byte) error

	notify    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	runningMu sync.RWMutex
	isRunning bool
}

// New creates a Channel dialing cfg.ServerURL, dispatching any inbound
// command frames to handler (nil is valid if CH only ever sends events).
func New(cfg *Config, handler CommandHandler) *Channel {
	return &Channel{
		cfg:      cfg,
		handler:  handler,
		queueCap: defaultQueueCap,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start begins the reconnect loop. It blocks until Stop is called; run it
// in its own goroutine.
func (c *Channel) Start() {
	c.runningMu.Lock()
	if c.isRunning {
		c.runningMu.Unlock()
		return
	}
	c.isRunning = true
	c.runningMu.Unlock()

	c.reconnectLoop()
}

// Stop closes the connection and ends the reconnect loop.
func (c *Channel) Stop() {
	c.stopOnce.Do(func() {
		c.runningMu.Lock()
		c.isRunning = false
		c.runningMu.Unlock()

		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()

		log.Info("channel stopped")
	})
}

// SendEvent enqueues ev for delivery. If connected, it is written as soon
// as the drain loop observes the notify signal; if disconnected, it
// accumulates until reconnect. Overflow drops the oldest queued event
// (§5 supplemented features) rather than blocking the caller.
func (c *Channel) SendEvent(ev protocol.Event) {
	c.mu.Lock()
	if len(c.queue) >= c.queueCap {
		dropped := c.queue[0]
		c.queue = c.queue[1:]
		log.Warn("queue full, dropping oldest queued event",
			"dropped", dropped.Event, "cap", c.queueCap)
	}
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// QueueLen reports the number of events still waiting to be drained, for
// tests and diagnostics.
func (c *Channel) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Channel) connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(c.cfg.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("forgeconn: dial failed: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	conn.SetReadLimit(maxMessageSize)
	log.Info("connected", "server", c.cfg.ServerURL)
	return nil
}

func (c *Channel) reconnectLoop() {
	backoff := initialBackoff

	for {
		select {
		case <-c.done:
			return
		default:
		}

		if c.writeFunc == nil {
			if err := c.connect(); err != nil {
				log.Warn("connect failed", "error", err)

				jitter := time.Duration(float64(backoff) * jitterFactor * (rand.Float64()*2 - 1))
				sleep := backoff + jitter
				if sleep < 0 {
					sleep = backoff
				}

				select {
				case <-c.done:
					return
				case <-time.After(sleep):
				}

				backoff = time.Duration(float64(backoff) * backoffFactor)
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			backoff = initialBackoff
		}

		c.runConnection()

		c.runningMu.RLock()
		running := c.isRunning
		c.runningMu.RUnlock()
		if !running || c.writeFunc != nil {
			return
		}
	}
}

// connSession lets pingLoop/readPump/drainLoop independently signal that
// the current connection attempt is over, without racing on who closes
// the shared done channel.
type connSession struct {
	done chan struct{}
	once sync.Once
}

func newConnSession() *connSession {
	return &connSession{done: make(chan struct{})}
}

func (s *connSession) down() {
	s.once.Do(func() { close(s.done) })
}

func (c *Channel) runConnection() {
	sess := newConnSession()

	go c.pingLoop(sess)
	go func() {
		c.readPump(sess)
		sess.down()
	}()

	c.drainLoop(sess)
	sess.down()

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
}

// flushQueue writes queued events in order, stopping (without popping) at
// the first write failure so the failed event is retried after reconnect.
func (c *Channel) flushQueue() error {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return nil
		}
		ev := c.queue[0]
		c.mu.Unlock()

		data, err := ev.Marshal()
		if err != nil {
			log.Warn("dropping unmarshalable queued event", "event", ev.Event, "error", err)
			c.mu.Lock()
			c.queue = c.queue[1:]
			c.mu.Unlock()
			continue
		}

		if err := c.write(data); err != nil {
			return err
		}

		c.mu.Lock()
		c.queue = c.queue[1:]
		c.mu.Unlock()
	}
}

func (c *Channel) write(data []byte) error {
	if c.writeFunc != nil {
		return c.writeFunc(data)
	}

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return errNotConnected
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Channel) drainLoop(sess *connSession) {
	if err := c.flushQueue(); err != nil {
		return
	}
	for {
		select {
		case <-sess.done:
			return
		case <-c.done:
			return
		case <-c.notify:
			if err := c.flushQueue(); err != nil {
				return
			}
		}
	}
}

func (c *Channel) pingLoop(sess *connSession) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn == nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.down()
				return
			}
		}
	}
}

func (c *Channel) readPump(sess *connSession) {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read error", "error", err)
			}
			return
		}

		select {
		case <-sess.done:
			return
		default:
		}

		if c.handler != nil {
			c.handler(message)
		}
	}
}
