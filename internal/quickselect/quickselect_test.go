package quickselect

import (
	"testing"
	"time"
)

func TestMiddleClickWithoutArmDoesNothing(t *testing.T) {
	timer := New(nil, nil)
	if timer.MiddleClick() {
		t.Fatal("middle-click without Start should not enter selection")
	}
	if timer.Active() {
		t.Fatal("should not be active")
	}
}

func TestArmedMiddleClickEntersSelection(t *testing.T) {
	entered := 0
	timer := New(func() { entered++ }, nil)
	now := newFixedClock(0)
	timer.nowFunc = now.now

	timer.Start(500)
	now.advance(100) // within window
	if !timer.MiddleClick() {
		t.Fatal("middle-click within window should enter selection")
	}
	if !timer.Active() {
		t.Fatal("should be active")
	}
	if entered != 1 {
		t.Fatalf("onEnter called %d times, want 1", entered)
	}
}

func TestMiddleClickAfterDeadlineDoesNotEnter(t *testing.T) {
	timer := New(nil, nil)
	now := newFixedClock(0)
	timer.nowFunc = now.now

	timer.Start(100)
	now.advance(200) // past deadline
	if timer.MiddleClick() {
		t.Fatal("middle-click past deadline should not enter selection")
	}
	if timer.Active() {
		t.Fatal("should not be active")
	}
}

func TestEndClearsActiveAndCallsOnExit(t *testing.T) {
	exited := 0
	timer := New(nil, func() { exited++ })
	now := newFixedClock(0)
	timer.nowFunc = now.now

	timer.Start(500)
	timer.MiddleClick()
	if !timer.Active() {
		t.Fatal("expected active before End")
	}

	timer.End()
	if timer.Active() {
		t.Fatal("expected inactive after End")
	}
	if exited != 1 {
		t.Fatalf("onExit called %d times, want 1", exited)
	}
}

func TestEndWithoutActiveIsNoOp(t *testing.T) {
	exited := 0
	timer := New(nil, func() { exited++ })
	timer.End()
	if exited != 0 {
		t.Fatalf("onExit should not fire when never active, got %d calls", exited)
	}
}

func TestArmIsConsumedByAnyClickAttempt(t *testing.T) {
	timer := New(nil, nil)
	now := newFixedClock(0)
	timer.nowFunc = now.now

	timer.Start(100)
	now.advance(200) // past deadline, consumes the arm
	timer.MiddleClick()

	now.advance(0)
	if timer.MiddleClick() {
		t.Fatal("second click without a new Start should not enter selection")
	}
}

// fixedClock is a small injectable-time test double.
type fixedClock struct {
	t time.Time
}

func newFixedClock(ms int64) *fixedClock {
	return &fixedClock{t: time.UnixMilli(ms)}
}

func (c *fixedClock) now() time.Time {
	return c.t
}

func (c *fixedClock) advance(ms int64) {
	c.t = c.t.Add(time.Duration(ms) * time.Millisecond)
}
