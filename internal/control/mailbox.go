package control

import (
	"sync/atomic"

	"github.com/cwsl/rf-engine/internal/rfconfig"
)

// Mailbox replaces the original's module-scope "pending_config + 4 cfg
// structs" flag pattern (spec.md §9) with a single-slot, atomically
// swapped handle: the control-link callback writes a fully-formed
// Desired config in one atomic store, and the supervisor takes it with
// one atomic swap-to-nil. There is no window in which a reader can
// observe a partially written config, because the whole value is
// boxed behind one pointer swap rather than copied field by field
// under a flag.
type Mailbox struct {
	slot atomic.Pointer[rfconfig.Desired]
}

// Put stores cfg as the pending config, replacing whatever was there.
func (m *Mailbox) Put(cfg rfconfig.Desired) {
	m.slot.Store(&cfg)
}

// Take atomically removes and returns the pending config, if any. ok
// is false if no config is pending.
func (m *Mailbox) Take() (cfg rfconfig.Desired, ok bool) {
	p := m.slot.Swap(nil)
	if p == nil {
		return rfconfig.Desired{}, false
	}
	return *p, true
}
