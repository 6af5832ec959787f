package state

import (
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/counters"
	"github.com/nathoo/battlecore/engine/moveset"
	"github.com/nathoo/battlecore/engine/possible"
	"github.com/nathoo/battlecore/engine/stats"
	"github.com/nathoo/battlecore/types"
)

// confusionDurations distinguishes how confusion was inflicted: directly by
// an opposing move, or self-inflicted by a fatigued thrashing move.
var confusionDurations = map[string]int{"confusion": 5, "fatigue": 4}

// Volatile is the in-battle state of an active combatant, created on
// switch-in and torn down on switch-out. Fields are grouped by what survives
// a switch: the baton-passed subset and state that is always cleared.
type Volatile struct {
	mon *Pokemon

	// Copied to the replacement on an explicit baton pass.
	Boosts       map[types.StatName]int
	Confusion    *counters.Variable
	Substitute   bool
	LeechSeed    bool
	Perish       *counters.Fixed
	Ingrain      bool
	AquaRing     bool
	Cursed       bool
	FocusEnergy  bool
	GastroAcid   bool
	PowerTrick   bool
	MagnetRise   *counters.Fixed
	Embargo      *counters.Fixed
	lockOnTarget *Volatile
	lockOnBy     *Volatile
	LockOnTurns  *counters.Fixed

	// Never passed. LastMove tracks only moves used during this stint;
	// any switch, self-switching or not, resets it along with the choice
	// lock it feeds.
	LastMove        types.MoveName
	Moves           *moveset.MoveSet // active copy of the persistent set
	overrideAbility *possible.Set[types.AbilityName, dex.Ability]
	overrideTypes   []types.TypeName
	overrideStats   map[types.StatName]*stats.Range
	Transformed     bool

	Attract       bool
	Torment       bool
	Taunt         *counters.Fixed
	Encore        *counters.Fixed
	EncoredMove   types.MoveName
	Disable       *counters.Fixed
	DisabledMove  types.MoveName
	Yawn          *counters.Fixed
	HealBlock     *counters.Fixed
	SlowStart     *counters.Fixed
	Uproar        *counters.Fixed
	Bide          *counters.Fixed
	Charge        *counters.Fixed
	TwoTurn       *counters.Fixed
	TwoTurnMove   types.MoveName
	TrappingTurns *counters.Fixed
	Stockpile     int
	ToxicTurns    int

	DefenseCurl bool
	Minimized   bool
	DestinyBond bool
	Grudge      bool
	Rage        bool
	Roost       bool
	Protect     bool
	Endure      bool
	Flinch      bool
	FlashFire   bool
	MudSport    bool
	WaterSport  bool
	Foresight   bool
	MiracleEye  bool
	Nightmare   bool

	MustRecharge  bool
	Truant        bool // will-skip-next-turn latch, toggled by ability identity
	MovedThisTurn bool

	trapping  *Volatile
	trappedBy *Volatile
}

// NewVolatile creates the active state for a combatant entering battle. The
// active move-set is a live copy of the persistent one: reveals mirror back,
// pp diverges.
func NewVolatile(mon *Pokemon) *Volatile {
	return &Volatile{
		mon:           mon,
		Boosts:        zeroBoosts(),
		Confusion:     counters.NewVariable(confusionDurations, false),
		Perish:        counters.NewFixed(4, false),
		MagnetRise:    counters.NewFixed(5, false),
		Embargo:       counters.NewFixed(5, false),
		LockOnTurns:   counters.NewFixed(2, true),
		Taunt:         counters.NewFixed(5, false),
		Encore:        counters.NewFixed(8, false),
		Disable:       counters.NewFixed(7, false),
		Yawn:          counters.NewFixed(2, true),
		HealBlock:     counters.NewFixed(5, false),
		SlowStart:     counters.NewFixed(5, false),
		Uproar:        counters.NewFixed(5, false),
		Bide:          counters.NewFixed(2, true),
		Charge:        counters.NewFixed(2, true),
		TwoTurn:       counters.NewFixed(2, true),
		TrappingTurns: counters.NewFixed(5, true),
		Moves:         mon.Moves.LinkBase(),
	}
}

func zeroBoosts() map[types.StatName]int {
	b := make(map[types.StatName]int, len(types.BoostStats))
	for _, s := range types.BoostStats {
		b[s] = 0
	}
	return b
}

// Boost applies a stage change, clamping to [-6, 6].
func (v *Volatile) Boost(stat types.StatName, stages int) {
	b := v.Boosts[stat] + stages
	if b > 6 {
		b = 6
	}
	if b < -6 {
		b = -6
	}
	v.Boosts[stat] = b
}

// SetTrapping establishes the mutual trapping relation: v traps other.
// Both directions are set together so they can never desynchronize.
func (v *Volatile) SetTrapping(other *Volatile) {
	v.ClearTrapping()
	other.clearTrappedBy()
	v.trapping = other
	other.trappedBy = v
}

// Trapping returns the combatant state v is trapping, if any.
func (v *Volatile) Trapping() *Volatile { return v.trapping }

// TrappedBy returns the combatant state trapping v, if any.
func (v *Volatile) TrappedBy() *Volatile { return v.trappedBy }

// ClearTrapping releases v's hold on its trap target, clearing both sides of
// the relation.
func (v *Volatile) ClearTrapping() {
	if v.trapping != nil {
		v.trapping.trappedBy = nil
		v.trapping = nil
	}
}

func (v *Volatile) clearTrappedBy() {
	if v.trappedBy != nil {
		v.trappedBy.trapping = nil
		v.trappedBy = nil
	}
}

// SetLockOn establishes the mutual lock-on relation: v has locked onto
// target, lasting through the next turn.
func (v *Volatile) SetLockOn(target *Volatile) {
	v.ClearLockOn()
	target.clearLockOnBy()
	v.lockOnTarget = target
	target.lockOnBy = v
	v.LockOnTurns.Start(true)
}

// LockOnTarget returns the combatant v has locked onto, if any.
func (v *Volatile) LockOnTarget() *Volatile { return v.lockOnTarget }

// LockOnBy returns the combatant locked onto v, if any.
func (v *Volatile) LockOnBy() *Volatile { return v.lockOnBy }

// ClearLockOn releases v's lock-on, clearing both sides of the relation.
func (v *Volatile) ClearLockOn() {
	if v.lockOnTarget != nil {
		v.lockOnTarget.lockOnBy = nil
		v.lockOnTarget = nil
	}
	v.LockOnTurns.End()
}

func (v *Volatile) clearLockOnBy() {
	if v.lockOnBy != nil {
		v.lockOnBy.LockOnTurns.End()
		v.lockOnBy.lockOnTarget = nil
		v.lockOnBy = nil
	}
}

// Transform snapshots the target's traits as overrides: ability
// possibilities (an independent copy), types, non-HP stat ranges, boosts,
// and a transform-linked copy of the target's moves with pinned pp.
func (v *Volatile) Transform(target *Pokemon) error {
	if target.Volatile == nil {
		return fmt.Errorf("transform: target is not active")
	}
	ability, err := possible.New(v.mon.dx.AbilityUniverse(), target.EffectiveAbility().Keys()...)
	if err != nil {
		return err
	}
	v.overrideAbility = ability
	v.overrideTypes = append([]types.TypeName(nil), target.EffectiveTypes()...)
	v.overrideStats = make(map[types.StatName]*stats.Range, 5)
	for name, r := range target.Stats {
		if name == types.HP {
			continue // hp is never copied by transform
		}
		v.overrideStats[name] = r.Clone()
	}
	for stat, b := range target.Volatile.Boosts {
		v.Boosts[stat] = b
	}
	// The pre-transform active copy is dead; sever it before replacing.
	v.Moves.Isolate()
	v.Moves = target.ActiveMoves().LinkTransform()
	v.Transformed = true
	return nil
}

// OverrideStat returns the stat range in force while transformed, if any.
func (v *Volatile) OverrideStat(name types.StatName) (*stats.Range, bool) {
	r, ok := v.overrideStats[name]
	return r, ok
}

// PreTurn is the turn-start hook. Nothing is defined for it yet; it exists
// so the turn boundary applies both hooks uniformly.
func (v *Volatile) PreTurn() {}

// PostTurn ticks every counter not driven by explicit end events, resets
// single-turn flags, and toggles the truant latch from the current ability
// identity. The first counter overflow aborts with its error.
func (v *Volatile) PostTurn() error {
	for _, c := range []interface{ Tick() error }{
		v.Confusion, v.Perish, v.MagnetRise, v.Embargo, v.LockOnTurns,
		v.Taunt, v.Encore, v.Disable, v.Yawn, v.HealBlock, v.SlowStart,
		v.Uproar, v.Bide, v.Charge, v.TwoTurn, v.TrappingTurns,
	} {
		if err := c.Tick(); err != nil {
			return err
		}
	}

	v.Protect = false
	v.Endure = false
	v.Flinch = false
	v.Roost = false
	v.Grudge = false
	v.DestinyBond = false
	v.MovedThisTurn = false

	if name, ok := v.mon.EffectiveAbility().Definite(); ok {
		if a, found := v.mon.EffectiveAbility().Data(name); found && a.Truant {
			v.Truant = !v.Truant
			return nil
		}
	}
	v.Truant = false
	return nil
}

// PassBaton copies the baton-passable subset onto the replacement's fresh
// volatile state, transferring the lock-on relation intact.
func (v *Volatile) PassBaton(next *Volatile) {
	for stat, b := range v.Boosts {
		next.Boosts[stat] = b
	}
	*next.Confusion = *v.Confusion
	next.Substitute = v.Substitute
	next.LeechSeed = v.LeechSeed
	*next.Perish = *v.Perish
	next.Ingrain = v.Ingrain
	next.AquaRing = v.AquaRing
	next.Cursed = v.Cursed
	next.FocusEnergy = v.FocusEnergy
	next.GastroAcid = v.GastroAcid
	next.PowerTrick = v.PowerTrick
	*next.MagnetRise = *v.MagnetRise
	*next.Embargo = *v.Embargo

	if v.lockOnTarget != nil {
		target := v.lockOnTarget
		turns := *v.LockOnTurns
		v.ClearLockOn()
		next.lockOnTarget = target
		target.lockOnBy = next
		*next.LockOnTurns = turns
	}
	if v.lockOnBy != nil {
		by := v.lockOnBy
		v.lockOnBy = nil
		by.lockOnTarget = next
		next.lockOnBy = by
	}
}

// Clear tears down the volatile state on switch-out: every pairwise relation
// is cleared symmetrically so no counterpart is left half-linked, and the
// active move-set copy is severed from its link group.
func (v *Volatile) Clear() {
	v.ClearTrapping()
	v.clearTrappedBy()
	v.ClearLockOn()
	v.clearLockOnBy()
	if v.Moves != nil {
		v.Moves.Isolate()
	}
}
