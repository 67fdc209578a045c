package hotkey

import "testing"

func TestSlotMatchesWhitelistBlacklist(t *testing.T) {
	s := Slot{VK: 0x42, Whitelist: ModCtrl, Blacklist: ModShift}
	if !s.Matches(ModCtrl) {
		t.Fatal("ctrl alone should match")
	}
	if s.Matches(ModCtrl | ModShift) {
		t.Fatal("blacklisted shift should not match")
	}
	if s.Matches(0) {
		t.Fatal("missing required ctrl should not match")
	}
	if !s.Matches(ModCtrl | ModAlt) {
		t.Fatal("extra non-blacklisted modifier should still match")
	}
}

func TestReplaceZeroesUnlistedRoles(t *testing.T) {
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark: {VK: 0x42, Whitelist: ModCtrl},
	})
	if tbl.Slot(RoleOverlay).Enabled() {
		t.Fatal("unlisted role should be disabled")
	}
	if !tbl.Slot(RoleBookmark).Enabled() {
		t.Fatal("listed role should be enabled")
	}
}

// TestHotkeyUniquenessInvariant is spec.md §8 invariant #2: after any
// update_settings, for all roles i != j and all modifier masks M, it must
// not be the case that both roles match simultaneously with the same VK.
func TestHotkeyUniquenessInvariant(t *testing.T) {
	tbl := NewTable()
	// Bookmark: Ctrl+B. Screenshot: B alone (no modifier). Same VK, and
	// bookmark's whitelist (Ctrl) is a superset situation that needs a
	// blacklist on Screenshot to avoid firing under Ctrl+B too.
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark:   {VK: 0x42, Whitelist: ModCtrl},
		RoleScreenshot: {VK: 0x42, Whitelist: 0},
	})

	allMasks := []Modifier{0, ModCtrl, ModShift, ModAlt, ModMeta, ModCtrl | ModShift, ModCtrl | ModAlt | ModMeta}
	for _, mask := range allMasks {
		matchCount := 0
		for _, role := range []Role{RoleBookmark, RoleScreenshot} {
			if tbl.Slot(role).Matches(mask) && tbl.Slot(role).VK == 0x42 {
				matchCount++
			}
		}
		if matchCount > 1 {
			t.Fatalf("mask %v matched %d roles simultaneously, want <= 1", mask, matchCount)
		}
	}
}

func TestReplaceBlacklistRecompute(t *testing.T) {
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark:   {VK: 0x42, Whitelist: ModCtrl},
		RoleScreenshot: {VK: 0x42, Whitelist: 0},
	})

	// Screenshot (whitelist=0) should gain Bookmark's whitelist bits
	// (Ctrl) in its blacklist, since Screenshot's own whitelist lacks them.
	if tbl.Slot(RoleScreenshot).Blacklist&ModCtrl == 0 {
		t.Fatal("screenshot should blacklist ctrl to avoid colliding with bookmark")
	}
	// Bookmark's whitelist already requires Ctrl, so it should not
	// blacklist ctrl from screenshot's (empty) whitelist.
	if tbl.Slot(RoleBookmark).Blacklist&ModCtrl != 0 {
		t.Fatal("bookmark should not blacklist ctrl")
	}
}

func TestMatchingRoleAtMostOne(t *testing.T) {
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark:   {VK: 0x42, Whitelist: ModCtrl},
		RoleScreenshot: {VK: 0x42, Whitelist: 0},
	})

	role, ok := tbl.MatchingRole(0x42, ModCtrl)
	if !ok || role != RoleBookmark {
		t.Fatalf("Ctrl+B should match Bookmark, got %v, %v", role, ok)
	}
	role, ok = tbl.MatchingRole(0x42, 0)
	if !ok || role != RoleScreenshot {
		t.Fatalf("B alone should match Screenshot, got %v, %v", role, ok)
	}
}

type fakeGate struct{ active bool }

func (f *fakeGate) Active() bool { return f.active }

func TestDispatcherEdgeSemantics(t *testing.T) {
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark: {VK: 0x42, Whitelist: ModCtrl},
	})

	count := 0
	d := NewDispatcher(tbl, Handlers{OnBookmark: func() { count++ }}, nil)

	d.HandleKey(0x42, ModCtrl, true) // press -> fires
	d.HandleKey(0x42, ModCtrl, true) // held -> must not re-fire
	d.HandleKey(0x42, ModCtrl, true) // still held
	d.HandleKey(0x42, ModCtrl, false) // release

	if count != 1 {
		t.Fatalf("bookmark fired %d times, want 1", count)
	}
}

// TestDispatcherOverlayAndStreamFireOnPress matches
// original_source/AnvilRendering/TaksiInput/HotKeys.cpp's press-edge
// toggle (activated on HKEVENT_PRESS) and spec.md's Scenario D ("Press
// the Overlay hotkey: RiG sends show_browser").
func TestDispatcherOverlayAndStreamFireOnPress(t *testing.T) {
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleOverlay: {VK: 0x42, Whitelist: 0},
		RoleStream:  {VK: 0x43, Whitelist: 0},
	})

	var overlays, streams int
	d := NewDispatcher(tbl, Handlers{
		ToggleOverlay: func() { overlays++ },
		ToggleStream:  func() { streams++ },
	}, nil)

	d.HandleKey(0x42, 0, true) // press -> fires immediately
	if overlays != 1 {
		t.Fatalf("overlay toggled %d times on press, want 1", overlays)
	}
	d.HandleKey(0x42, 0, false) // release -> must not re-fire
	if overlays != 1 {
		t.Fatalf("overlay toggled %d times after release, want still 1", overlays)
	}

	d.HandleKey(0x43, 0, true)
	if streams != 1 {
		t.Fatalf("stream toggled %d times on press, want 1", streams)
	}
	d.HandleKey(0x43, 0, false)
	if streams != 1 {
		t.Fatalf("stream toggled %d times after release, want still 1", streams)
	}
}

func TestDispatcherPerRoleNotPerVK(t *testing.T) {
	// Two roles sharing a VK but distinguished by modifiers must track
	// press state independently.
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark:   {VK: 0x42, Whitelist: ModCtrl},
		RoleScreenshot: {VK: 0x42, Whitelist: 0},
	})

	var bookmarks, screenshots int
	d := NewDispatcher(tbl, Handlers{
		OnBookmark:   func() { bookmarks++ },
		OnScreenshot: func() { screenshots++ },
	}, nil)

	d.HandleKey(0x42, 0, true) // B alone -> screenshot press
	d.HandleKey(0x42, 0, false)
	if screenshots != 1 || bookmarks != 0 {
		t.Fatalf("screenshots=%d bookmarks=%d", screenshots, bookmarks)
	}

	d.HandleKey(0x42, ModCtrl, true) // Ctrl+B -> bookmark press
	d.HandleKey(0x42, ModCtrl, false)
	if bookmarks != 1 {
		t.Fatalf("bookmarks=%d, want 1", bookmarks)
	}
}

func TestDispatcherQuickSelectScope(t *testing.T) {
	tbl := NewTable()
	tbl.Replace(map[Role]struct {
		VK        int
		Whitelist Modifier
	}{
		RoleBookmark: {VK: 0x42, Whitelist: 0},
		RoleCancel:   {VK: 0x1B, Whitelist: 0},
		RoleSelect:   {VK: 0x20, Whitelist: 0},
	})

	gate := &fakeGate{active: true}
	var bookmarks, cancels, selects int
	d := NewDispatcher(tbl, Handlers{
		OnBookmark: func() { bookmarks++ },
		OnCancel:   func() { cancels++ },
		OnSelect:   func() { selects++ },
	}, gate)

	d.HandleKey(0x42, 0, true) // suppressed while selecting
	d.HandleKey(0x1B, 0, true) // cancel fires
	d.HandleKey(0x20, 0, true) // select fires

	if bookmarks != 0 {
		t.Fatalf("bookmark should be suppressed during quick-select, got %d", bookmarks)
	}
	if cancels != 1 || selects != 1 {
		t.Fatalf("cancels=%d selects=%d, want 1,1", cancels, selects)
	}

	gate.active = false
	d.HandleKey(0x1B, 0, false)
	d.HandleKey(0x1B, 0, true) // Cancel/Select not meaningful outside selection
	if cancels != 1 {
		t.Fatalf("cancel should not fire outside quick-select, got %d", cancels)
	}
}
