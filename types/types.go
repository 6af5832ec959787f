// Package types defines the shared data structures for the battlecore engine.
// This package contains only type definitions — no logic, no methods.
package types

// SpeciesName identifies a species in the dex.
type SpeciesName string

// AbilityName identifies an ability in the dex.
type AbilityName string

// ItemName identifies a held item in the dex. The empty-handed state is the
// dex entry "none".
type ItemName string

// MoveName identifies a move in the dex.
type MoveName string

// TypeName identifies an elemental type.
type TypeName string

// StatName identifies one of the six numeric stats.
type StatName string

// Stat names. Accuracy and evasion exist only as boost stages.
const (
	HP       StatName = "hp"
	Atk      StatName = "atk"
	Def      StatName = "def"
	SpA      StatName = "spa"
	SpD      StatName = "spd"
	Spe      StatName = "spe"
	Accuracy StatName = "accuracy"
	Evasion  StatName = "evasion"
)

// BoostStats are the stats that can hold boost stages on an active combatant.
var BoostStats = []StatName{Atk, Def, SpA, SpD, Spe, Accuracy, Evasion}

// StatusName is a persistent (non-volatile) status condition: "brn", "par",
// "psn", "tox", "slp", "frz", or "" for none.
type StatusName string

// WeatherName identifies a field weather condition.
type WeatherName string

// Weather kinds. WeatherNone means clear skies.
const (
	WeatherNone      WeatherName = ""
	WeatherSandstorm WeatherName = "sandstorm"
	WeatherSun       WeatherName = "sunnyday"
	WeatherRain      WeatherName = "raindance"
	WeatherHail      WeatherName = "hail"
)

// SideID identifies one of the two sides of a battle: "p1" or "p2".
type SideID string

// Event is a single decoded battle event, produced by the parser from one
// battle-log line. Args holds event-specific fields keyed by name.
type Event struct {
	Type string
	Args map[string]any
}

// PositionRef is a parsed combatant position reference like "p1a: Zapdos".
type PositionRef struct {
	Side SideID
	Slot byte   // 'a' in singles
	Name string // nickname or species name as written in the log
}
