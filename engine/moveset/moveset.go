// Package moveset tracks which moves a combatant has: revealed slots, the
// remaining-movepool constraint, per-slot disjunctive constraints, and
// linking between sets for base-copy and transform mechanics.
package moveset

import (
	"errors"
	"fmt"

	"github.com/nathoo/battlecore/types"
)

// ErrOverConstrained reports a constraint whose candidate set became empty:
// the event stream implied a contradiction with earlier narrowings.
var ErrOverConstrained = errors.New("move-slot constraint exhausted")

// transformPP is the pp and maxpp a transform copy's moves are pinned to.
const transformPP = 5

// Move is one revealed move slot.
type Move struct {
	Name  types.MoveName
	PP    int
	MaxPP int
}

// Deduct subtracts n pp, clamping at zero.
func (m *Move) Deduct(n int) {
	m.PP -= n
	if m.PP < 0 {
		m.PP = 0
	}
}

// PPFunc looks up the max pp for a move, used when constraint narrowing
// reveals a move without an accompanying pp observation.
type PPFunc func(types.MoveName) int

type nameSet map[types.MoveName]struct{}

func newNameSet(names []types.MoveName) nameSet {
	s := make(nameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s nameSet) clone() nameSet {
	c := make(nameSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// constraints are shared by every member of a link group.
type constraints struct {
	pool  nameSet   // names not yet placed in any slot
	slots []nameSet // disjunctive candidates for still-unknown slots
	pp    PPFunc
}

func (c *constraints) maxPP(name types.MoveName) int {
	if c.pp == nil {
		return 0
	}
	return c.pp(name)
}

// member is one move-slot set's membership in a link group.
type member struct {
	set       *MoveSet
	base      bool // mirrored parent: reveals propagate here, size fixes apply
	transform bool // transform copy: pp pinned, never synced
}

type linkGroup struct {
	members []*member
	cons    *constraints
}

// MoveSet tracks one combatant's move slots.
type MoveSet struct {
	moves map[types.MoveName]*Move
	order []types.MoveName // insertion order, stable for display/encoding
	size  int

	group *linkGroup
	self  *member
}

// New creates a move-slot set of target size drawn from the given movepool.
// A movepool no larger than the target size reveals everything immediately.
func New(pool []types.MoveName, size int, pp PPFunc) (*MoveSet, error) {
	m := &MoveSet{
		moves: make(map[types.MoveName]*Move, size),
		size:  size,
	}
	m.self = &member{set: m}
	m.group = &linkGroup{
		members: []*member{m.self},
		cons:    &constraints{pool: newNameSet(pool), pp: pp},
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

// Size returns the target slot count.
func (m *MoveSet) Size() int { return m.size }

// KnownCount returns the number of revealed slots.
func (m *MoveSet) KnownCount() int { return len(m.moves) }

// UnknownCount returns the number of still-unknown slots.
func (m *MoveSet) UnknownCount() int { return m.size - len(m.moves) }

// Get returns the revealed slot for name, if any.
func (m *MoveSet) Get(name types.MoveName) (*Move, bool) {
	mv, ok := m.moves[name]
	return mv, ok
}

// Contains reports whether name occupies a revealed slot.
func (m *MoveSet) Contains(name types.MoveName) bool {
	_, ok := m.moves[name]
	return ok
}

// Known returns the revealed slots in reveal order.
func (m *MoveSet) Known() []*Move {
	out := make([]*Move, 0, len(m.order))
	for _, n := range m.order {
		if mv, ok := m.moves[n]; ok {
			out = append(out, mv)
		}
	}
	return out
}

// PoolContains reports whether name is still in the remaining-movepool
// constraint.
func (m *MoveSet) PoolContains(name types.MoveName) bool {
	_, ok := m.group.cons.pool[name]
	return ok
}

// PoolLen returns the size of the remaining-movepool constraint.
func (m *MoveSet) PoolLen() int { return len(m.group.cons.pool) }

// SlotConstraintCount returns the number of stored per-slot constraints.
func (m *MoveSet) SlotConstraintCount() int { return len(m.group.cons.slots) }

// Reveal records that the combatant has the named move. Revealing an already
// known move returns the existing slot unchanged; revealing into a saturated
// set is an error. The reveal propagates to all linked sets and resolves the
// constraint bookkeeping.
func (m *MoveSet) Reveal(name types.MoveName, maxPP int) (*Move, error) {
	if mv, ok := m.moves[name]; ok {
		return mv, nil
	}
	if len(m.moves) >= m.size {
		return nil, fmt.Errorf("reveal %q: all %d move slots already known", name, m.size)
	}
	m.group.reveal(name, maxPP)
	m.group.resolveName(name)
	if err := m.check(); err != nil {
		return nil, err
	}
	return m.moves[name], nil
}

// Replace swaps a known slot for a different move in place (mimic-style).
// The replacement applies only to this set; pp is never synced across links.
func (m *MoveSet) Replace(old types.MoveName, mv Move) error {
	if _, ok := m.moves[old]; !ok {
		return fmt.Errorf("replace %q: not a known move", old)
	}
	if _, ok := m.moves[mv.Name]; ok {
		return fmt.Errorf("replace %q with %q: already a known move", old, mv.Name)
	}
	for i, n := range m.order {
		if n == old {
			m.order[i] = mv.Name
			break
		}
	}
	delete(m.moves, old)
	slot := mv
	m.moves[mv.Name] = &slot
	m.group.resolveName(mv.Name)
	return m.check()
}

// AddSlotConstraint records that one still-unknown slot holds one of the
// candidate names. Already satisfied constraints are dropped; a single
// surviving candidate is revealed immediately; an empty intersection with
// the movepool constraint is a contradiction.
func (m *MoveSet) AddSlotConstraint(candidates []types.MoveName) error {
	for _, n := range candidates {
		if _, ok := m.moves[n]; ok {
			return nil // already satisfied
		}
	}
	cons := m.group.cons
	inter := make(nameSet)
	for _, n := range candidates {
		if _, ok := cons.pool[n]; ok {
			inter[n] = struct{}{}
		}
	}
	if len(inter) == 0 {
		return fmt.Errorf("slot constraint %v has no candidates left in the movepool: %w",
			candidates, ErrOverConstrained)
	}
	if len(inter) == 1 {
		for n := range inter {
			_, err := m.Reveal(n, cons.maxPP(n))
			return err
		}
	}
	cons.slots = append(cons.slots, inter)
	return m.check()
}

// InferDoesNotHave removes names from the movepool constraint and from every
// per-slot constraint. A slot constraint emptied by the removal is a
// contradiction; one narrowed to a single candidate is revealed.
func (m *MoveSet) InferDoesNotHave(names []types.MoveName) error {
	cons := m.group.cons
	for _, n := range names {
		delete(cons.pool, n)
	}

	var reveal []types.MoveName
	remaining := cons.slots[:0]
	for _, slot := range cons.slots {
		for _, n := range names {
			delete(slot, n)
		}
		switch len(slot) {
		case 0:
			return fmt.Errorf("slot constraint emptied by ruling out %v: %w", names, ErrOverConstrained)
		case 1:
			for n := range slot {
				reveal = append(reveal, n)
			}
		default:
			remaining = append(remaining, slot)
		}
	}
	cons.slots = remaining

	for _, n := range reveal {
		if _, err := m.Reveal(n, cons.maxPP(n)); err != nil {
			return err
		}
	}
	if len(reveal) > 0 {
		return nil // Reveal already re-ran the narrowing check
	}
	return m.check()
}

// check is the global narrowing pass run after every mutation.
func (m *MoveSet) check() error {
	cons := m.group.cons
	unknown := m.size - len(m.moves)

	if unknown <= 0 {
		cons.pool = nameSet{}
		cons.slots = nil
		return nil
	}

	// With one slot left, every per-slot constraint must name that slot:
	// their intersection narrows the movepool constraint itself.
	if unknown == 1 && len(cons.slots) > 0 {
		for _, slot := range cons.slots {
			for n := range cons.pool {
				if _, ok := slot[n]; !ok {
					delete(cons.pool, n)
				}
			}
		}
		cons.slots = nil
		if len(cons.pool) == 0 {
			return fmt.Errorf("slot constraints intersect to nothing with one slot left: %w",
				ErrOverConstrained)
		}
	}

	// When the movepool constraint fits in the unknown slots, every
	// remaining name must be a real move.
	if len(cons.pool) <= unknown {
		names := make([]types.MoveName, 0, len(cons.pool))
		for n := range cons.pool {
			names = append(names, n)
		}
		for _, n := range names {
			m.group.reveal(n, cons.maxPP(n))
			m.group.resolveName(n)
		}
		// Fewer names than slots fixes the slot count for this set and
		// any base parent.
		known := len(m.moves)
		if known < m.size {
			m.size = known
			for _, mem := range m.group.members {
				if mem.base {
					mem.set.size = known
				}
			}
		}
		cons.pool = nameSet{}
		cons.slots = nil
	}
	return nil
}

// reveal creates the slot in every linked set that can still hold it.
func (g *linkGroup) reveal(name types.MoveName, maxPP int) {
	for _, mem := range g.members {
		s := mem.set
		if _, ok := s.moves[name]; ok {
			continue
		}
		if len(s.moves) >= s.size {
			continue // diverged by a replace; nothing to mirror into
		}
		mv := &Move{Name: name, PP: maxPP, MaxPP: maxPP}
		if mem.transform {
			mv.PP = transformPP
			mv.MaxPP = transformPP
		}
		s.moves[name] = mv
		s.order = append(s.order, name)
	}
}

// resolveName clears the shared constraint bookkeeping for a now-known name.
func (g *linkGroup) resolveName(name types.MoveName) {
	cons := g.cons
	delete(cons.pool, name)
	remaining := cons.slots[:0]
	for _, slot := range cons.slots {
		if _, ok := slot[name]; ok {
			continue // constraint satisfied by the reveal
		}
		remaining = append(remaining, slot)
	}
	cons.slots = remaining
}

// LinkBase creates the active in-battle copy of this persistent base set.
// The copy shares constraint state and mirrors future reveals back; pp
// diverges freely between the two.
func (m *MoveSet) LinkBase() *MoveSet {
	m.self.base = true
	c := &MoveSet{
		moves: make(map[types.MoveName]*Move, m.size),
		order: append([]types.MoveName(nil), m.order...),
		size:  m.size,
		group: m.group,
	}
	for n, mv := range m.moves {
		slot := *mv
		c.moves[n] = &slot
	}
	c.self = &member{set: c}
	m.group.members = append(m.group.members, c.self)
	return c
}

// LinkTransform creates a transform copy of this set: known moves are
// deep-copied with pp pinned, and future reveals propagate both ways.
func (m *MoveSet) LinkTransform() *MoveSet {
	c := &MoveSet{
		moves: make(map[types.MoveName]*Move, m.size),
		order: append([]types.MoveName(nil), m.order...),
		size:  m.size,
		group: m.group,
	}
	for n := range m.moves {
		c.moves[n] = &Move{Name: n, PP: transformPP, MaxPP: transformPP}
	}
	c.self = &member{set: c, transform: true}
	m.group.members = append(m.group.members, c.self)
	return c
}

// Isolate severs all links, leaving this set with independent copies of the
// shared constraint collections.
func (m *MoveSet) Isolate() {
	old := m.group
	live := old.members[:0]
	for _, mem := range old.members {
		if mem != m.self {
			live = append(live, mem)
		}
	}
	old.members = live

	cons := &constraints{pool: old.cons.pool.clone(), pp: old.cons.pp}
	for _, slot := range old.cons.slots {
		cons.slots = append(cons.slots, slot.clone())
	}
	m.self = &member{set: m}
	m.group = &linkGroup{members: []*member{m.self}, cons: cons}
}
