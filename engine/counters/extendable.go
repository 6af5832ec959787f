package counters

import (
	"fmt"

	"github.com/nathoo/battlecore/engine/possible"
)

// ItemExtendable is a turn counter whose duration is the short constant
// unless the originating combatant holds a specific extending item, in which
// case it is the long constant. The counter starts assuming the short
// duration and watches the holder's item possibility set: if the item is
// confirmed, the duration extends; if the counter outlives the short duration
// while the extending item is still possible, that observation itself
// retroactively proves the item.
type ItemExtendable[K comparable, D any] struct {
	short, long int
	item        *possible.Set[K, D]
	extender    K

	duration int
	active   bool
	turns    int
	cancel   func()
}

// NewItemExtendable creates an inactive counter tied to the holder's item
// possibility set.
func NewItemExtendable[K comparable, D any](short, long int, item *possible.Set[K, D], extender K) *ItemExtendable[K, D] {
	return &ItemExtendable[K, D]{short: short, long: long, item: item, extender: extender}
}

// Start activates the counter, assuming the short duration until the
// extending item is confirmed. When already active and restart is false,
// Start is a no-op.
func (c *ItemExtendable[K, D]) Start(restart bool) {
	if c.active && !restart {
		return
	}
	c.active = true
	c.turns = 0
	c.duration = c.short
	if c.cancel != nil {
		c.cancel()
	}
	// Fires immediately if the item is already determined either way.
	c.cancel = c.item.OnSubsetUpdate([]K{c.extender}, func(kept bool) {
		if kept {
			c.duration = c.long
		}
	})
}

// Tick advances the counter by one turn. Reaching the short duration while
// the extending item is still possible narrows the holder's item to the
// extender and upgrades to the long duration; if the item has been ruled
// out, or the long duration is also exceeded, Tick returns ErrOverflow.
func (c *ItemExtendable[K, D]) Tick() error {
	if !c.active {
		return nil
	}
	c.turns++
	if c.turns < c.duration {
		return nil
	}
	if c.duration == c.long {
		turns := c.turns
		c.End()
		return fmt.Errorf("item-extendable counter at %d/%d turns: %w", turns, c.long, ErrOverflow)
	}
	if !c.item.Contains(c.extender) {
		turns := c.turns
		c.End()
		return fmt.Errorf("item-extendable counter at %d/%d turns with extender impossible: %w",
			turns, c.short, ErrOverflow)
	}
	// Outliving the short duration is itself evidence of the item.
	if err := c.item.Narrow(c.extender); err != nil {
		return err
	}
	c.duration = c.long
	return nil
}

// End deactivates the counter and unhooks the item listener.
func (c *ItemExtendable[K, D]) End() {
	c.active = false
	c.turns = 0
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Active reports whether the counter is running.
func (c *ItemExtendable[K, D]) Active() bool { return c.active }

// Turns returns the turns elapsed since Start.
func (c *ItemExtendable[K, D]) Turns() int { return c.turns }

// Duration returns the currently assumed duration (short until the extending
// item is confirmed).
func (c *ItemExtendable[K, D]) Duration() int { return c.duration }
