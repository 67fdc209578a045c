// Package hotkey implements the Hotkey table and Hotkey Dispatcher of
// spec.md §3 and §4.8: a fixed-size array of role slots, whitelist/
// blacklist modifier matching, and edge-triggered role firing.
package hotkey

// Role is the closed enumeration of hotkey roles (spec.md §3).
type Role int

const (
	RoleBookmark Role = iota
	RoleOverlay
	RoleScreenshot
	RoleStream
	RoleStartStopStream
	RolePTT
	RoleQuickClip
	RoleQuickForwardClip
	RoleCancel
	RoleSelect
	roleCount
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

// Slot is one hotkey table entry: a virtual-key code (0 disables the
// slot), a modifier whitelist (must all be held), and a modifier blacklist
// (must not be held; computed from conflicts with other roles sharing the
// same VK).
type Slot struct {
	VK        int
	Whitelist Modifier
	Blacklist Modifier
}

// Enabled reports whether this slot is bound (VK != 0).
func (s Slot) Enabled() bool {
	return s.VK != 0
}

// Matches reports whether the held modifier mask m satisfies this slot's
// whitelist/blacklist: (m & whitelist) == whitelist && (m & blacklist) == 0
// (spec.md §4.8).
func (s Slot) Matches(m Modifier) bool {
	return (m&s.Whitelist) == s.Whitelist && (m&s.Blacklist) == 0
}

// Table is the fixed-size hotkey table. The zero value is a fully-zeroed
// table (every slot disabled), matching the Restart Coordinator's "zero
// the entire hotkey table" step (spec.md §4.2).
type Table struct {
	slots [roleCount]Slot
}

// NewTable returns a table with every slot disabled.
func NewTable() *Table {
	return &Table{}
}

// Slot returns the slot bound to role.
func (t *Table) Slot(role Role) Slot {
	return t.slots[role]
}

// Zero clears every slot, matching the Restart Coordinator's reset step.
func (t *Table) Zero() {
	t.slots = [roleCount]Slot{}
}

// Replace atomically installs new bindings and recomputes every slot's
// blacklist from scratch (spec.md §4.8: "recomputed whenever the table is
// replaced"). bindings maps role -> (VK, whitelist); unlisted roles are
// disabled.
func (t *Table) Replace(bindings map[Role]struct {
	VK        int
	Whitelist Modifier
}) {
	var next [roleCount]Slot
	for role, b := range bindings {
		if role < 0 || role >= roleCount {
			continue
		}
		next[role] = Slot{VK: b.VK, Whitelist: b.Whitelist}
	}

	// For every pair (i,j) sharing the same VK, role i's blacklist gains
	// role j's whitelist bits that role i's whitelist does not already
	// require (spec.md §4.8's exact recompute rule).
	for i := Role(0); i < roleCount; i++ {
		if !next[i].Enabled() {
			continue
		}
		var blacklist Modifier
		for j := Role(0); j < roleCount; j++ {
			if i == j || !next[j].Enabled() {
				continue
			}
			if next[j].VK != next[i].VK {
				continue
			}
			blacklist |= next[j].Whitelist &^ next[i].Whitelist
		}
		next[i].Blacklist = blacklist
	}

	t.slots = next
}

// MatchingRole returns the role (if any) whose slot matches the given
// pressed VK and held modifier mask. Invariant #2 (spec.md §8) guarantees
// at most one role can match for any (vk, mask) pair after Replace.
func (t *Table) MatchingRole(vk int, mask Modifier) (Role, bool) {
	for role := Role(0); role < roleCount; role++ {
		slot := t.slots[role]
		if slot.Enabled() && slot.VK == vk && slot.Matches(mask) {
			return role, true
		}
	}
	return 0, false
}
