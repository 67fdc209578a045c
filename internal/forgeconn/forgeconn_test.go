package forgeconn

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anvilforge/rig/internal/protocol"
)

func testEvent(t *testing.T, name string) protocol.Event {
	t.Helper()
	ev, err := protocol.NewEvent(name, 1000, nil)
	if err != nil {
		t.Fatalf("NewEvent(%s): %v", name, err)
	}
	return ev
}

func TestSendEventQueuesWhenDisconnected(t *testing.T) {
	c := New(&Config{ServerURL: "ws://unused"}, nil)

	c.SendEvent(testEvent(t, protocol.EventStartedRecording))
	c.SendEvent(testEvent(t, protocol.EventBufferReady))

	if got := c.QueueLen(); got != 2 {
		t.Fatalf("QueueLen() = %d, want 2", got)
	}
}

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	c := New(&Config{ServerURL: "ws://unused"}, nil)
	c.queueCap = 2

	c.SendEvent(testEvent(t, "a"))
	c.SendEvent(testEvent(t, "b"))
	c.SendEvent(testEvent(t, "c"))

	if got := c.QueueLen(); got != 2 {
		t.Fatalf("QueueLen() = %d, want 2 (cap enforced)", got)
	}

	c.mu.Lock()
	first := c.queue[0].Event
	c.mu.Unlock()
	if first != "b" {
		t.Fatalf("oldest surviving event = %q, want %q ('a' should have been dropped)", first, "b")
	}
}

func TestFlushQueueDrainsInOrderOnSuccessfulWrite(t *testing.T) {
	c := New(&Config{ServerURL: "ws://unused"}, nil)

	var mu sync.Mutex
	var order []string
	c.writeFunc = func(data []byte) error {
		mu.Lock()
		order = append(order, string(data))
		mu.Unlock()
		return nil
	}

	c.SendEvent(testEvent(t, "first"))
	c.SendEvent(testEvent(t, "second"))
	c.SendEvent(testEvent(t, "third"))

	c.runConnection()

	if c.QueueLen() != 0 {
		t.Fatalf("expected queue fully drained, got %d remaining", c.QueueLen())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 {
		t.Fatalf("got %d writes, want 3: %v", len(order), order)
	}
	wantSubstrings := []string{"first", "second", "third"}
	for i, want := range wantSubstrings {
		if !contains(order[i], want) {
			t.Fatalf("write %d = %q, want to contain %q", i, order[i], want)
		}
	}
}

func TestFlushQueueStopsAtFirstFailureAndRetriesInOrderAfterReconnect(t *testing.T) {
	c := New(&Config{ServerURL: "ws://unused"}, nil)

	c.SendEvent(testEvent(t, "first"))
	c.SendEvent(testEvent(t, "second"))

	c.writeFunc = func(data []byte) error {
		return errors.New("simulated disconnect")
	}
	c.runConnection()

	if got := c.QueueLen(); got != 2 {
		t.Fatalf("failed write must not pop the event; QueueLen() = %d, want 2", got)
	}

	var mu sync.Mutex
	var order []string
	c.writeFunc = func(data []byte) error {
		mu.Lock()
		order = append(order, string(data))
		mu.Unlock()
		return nil
	}
	c.runConnection()

	if c.QueueLen() != 0 {
		t.Fatalf("expected queue fully drained after reconnect, got %d remaining", c.QueueLen())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || !contains(order[0], "first") || !contains(order[1], "second") {
		t.Fatalf("got %v, want [first, second] in order", order)
	}
}

func TestSendEventWakesWaitingDrainLoop(t *testing.T) {
	c := New(&Config{ServerURL: "ws://unused"}, nil)

	written := make(chan string, 4)
	c.writeFunc = func(data []byte) error {
		written <- string(data)
		return nil
	}

	runDone := make(chan struct{})
	go func() {
		c.runConnection()
		close(runDone)
	}()

	// give drainLoop a moment to reach its empty-queue wait state
	time.Sleep(20 * time.Millisecond)

	c.SendEvent(testEvent(t, "late_arrival"))

	select {
	case got := <-written:
		if !contains(got, "late_arrival") {
			t.Fatalf("got %q, want it to contain %q", got, "late_arrival")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notify-driven drain")
	}

	c.Stop()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("runConnection did not return after Stop")
	}
}

func TestReadPumpWithoutConnectionDoesNotDispatch(t *testing.T) {
	received := make(chan []byte, 1)
	c := New(&Config{ServerURL: "ws://unused"}, func(data []byte) {
		received <- data
	})

	// readPump returns immediately with no real connection, so the handler
	// must never be called.
	c.readPump(newConnSession())
	select {
	case <-received:
		t.Fatal("handler should not fire: no connection was ever established")
	default:
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
