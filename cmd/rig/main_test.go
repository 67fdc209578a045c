package main

import (
	"testing"

	"github.com/anvilforge/rig/internal/config"
	"github.com/anvilforge/rig/internal/hotkey"
	"github.com/anvilforge/rig/internal/protocol"
)

func newTestApp(t *testing.T) *rigApp {
	t.Helper()
	cfg := config.DefaultRigConfig()
	return newRigApp(cfg, 4242)
}

func TestToggleOverlayFlipsVisibility(t *testing.T) {
	app := newTestApp(t)

	app.toggleOverlay()
	app.mu.Lock()
	visible := app.overlayVisible
	app.mu.Unlock()
	if !visible {
		t.Fatal("expected overlay to become visible after first toggle")
	}

	app.toggleOverlay()
	app.mu.Lock()
	visible = app.overlayVisible
	app.mu.Unlock()
	if visible {
		t.Fatal("expected overlay to become hidden after second toggle")
	}
}

func TestSetHotkeyTableTracksCancelAndSelectForQuickSelect(t *testing.T) {
	app := newTestApp(t)

	app.SetHotkeyTable(map[hotkey.Role]struct {
		VK        int
		Whitelist hotkey.Modifier
	}{
		hotkey.RoleCancel: {VK: 0x1B},
		hotkey.RoleSelect: {VK: 0x0D},
	})

	app.mu.Lock()
	retained := append([]int(nil), app.quickSelectRetainedVKs...)
	app.mu.Unlock()

	if len(retained) != 2 {
		t.Fatalf("retained = %v, want 2 entries", retained)
	}
}

func TestResetIndicatorToNoneClearsCurrent(t *testing.T) {
	app := newTestApp(t)
	app.SetIndicator(protocol.IndicatorCapturing)
	if app.current.Kind() != protocol.IndicatorCapturing {
		t.Fatal("expected indicator to be set")
	}

	app.ResetIndicatorToNone()
	if app.current.Kind() != protocol.IndicatorNone {
		t.Fatalf("kind = %v, want NONE after reset", app.current.Kind())
	}
}

func TestDismissOverlayHidesOverlay(t *testing.T) {
	app := newTestApp(t)
	app.mu.Lock()
	app.overlayVisible = true
	app.mu.Unlock()

	app.DismissOverlay("highlighter")

	app.mu.Lock()
	visible := app.overlayVisible
	app.mu.Unlock()
	if visible {
		t.Fatal("expected DismissOverlay to hide the overlay")
	}
}

func TestOnMiddleMouseDownArmsThenEntersSelection(t *testing.T) {
	app := newTestApp(t)

	app.onMiddleMouseDown() // arms the window
	if app.quickSelect.Active() {
		t.Fatal("expected the first middle-click to only arm, not enter selection")
	}

	app.onMiddleMouseDown() // second click within the window enters selection
	if !app.quickSelect.Active() {
		t.Fatal("expected the second middle-click to enter selection mode")
	}
}
