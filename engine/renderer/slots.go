package renderer

import (
	"fmt"

	"github.com/spaghettifunk/vesta/engine/core"
)

// SlotTracker mirrors the fence state of every ring slot on the host. A
// slot is retired once its fence wait returned and in flight from the
// submission that signals the fence until the next wait.
type SlotTracker struct {
	retired []bool
}

// NewSlotTracker starts with every slot retired, matching fences created
// in the signaled state.
func NewSlotTracker(slots int) *SlotTracker {
	t := &SlotTracker{retired: make([]bool, slots)}
	for i := range t.retired {
		t.retired[i] = true
	}
	return t
}

func (t *SlotTracker) Len() int {
	return len(t.retired)
}

func (t *SlotTracker) MarkRetired(slot int) {
	t.retired[slot] = true
}

func (t *SlotTracker) MarkInFlight(slot int) {
	t.retired[slot] = false
}

func (t *SlotTracker) IsRetired(slot int) bool {
	return slot >= 0 && slot < len(t.retired) && t.retired[slot]
}

// Check returns ErrSlotInFlight unless the slot is retired.
func (t *SlotTracker) Check(slot int) error {
	if slot < 0 || slot >= len(t.retired) {
		return fmt.Errorf("ring slot %d out of range [0, %d)", slot, len(t.retired))
	}
	if !t.retired[slot] {
		return fmt.Errorf("ring slot %d: %w", slot, core.ErrSlotInFlight)
	}
	return nil
}
