// Package save implements JSON serialization and restoration of a tracked
// battle. The save format is the consumed line log: possibility sets carry
// live listeners that cannot be serialized, so restoring replays the log
// against the same dex, which reproduces every narrowing and counter
// exactly.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/types"
)

// Version identifies the save format.
const Version = "1"

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version    string       `json:"version"`
	Us         types.SideID `json:"us"`
	RosterSize int          `json:"roster_size"`
	Turn       int          `json:"turn"`
	Lines      []string     `json:"lines"`
}

// Save serializes the engine's tracked battle to JSON bytes.
func Save(e *engine.Engine) ([]byte, error) {
	if e.Aborted != nil {
		return nil, fmt.Errorf("cannot save an aborted battle: %w", e.Aborted)
	}
	data := SaveData{
		Version:    Version,
		Us:         e.Battle.Us(),
		RosterSize: e.Battle.OurSide().Size(),
		Turn:       e.Battle.Turn,
		Lines:      e.LineLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != Version {
		return nil, fmt.Errorf("unsupported save version %q", sd.Version)
	}
	if sd.Us != "p1" && sd.Us != "p2" {
		return nil, fmt.Errorf("malformed save: side %q", sd.Us)
	}
	return &sd, nil
}

// Restore builds a fresh engine from loaded save data by replaying its
// line log.
func Restore(dx *dex.Dex, sd *SaveData) (*engine.Engine, error) {
	e := engine.New(dx, sd.Us, sd.RosterSize)
	if err := e.Replay(sd.Lines); err != nil {
		return nil, err
	}
	if e.Battle.Turn != sd.Turn {
		return nil, fmt.Errorf("replay ended on turn %d, save recorded %d", e.Battle.Turn, sd.Turn)
	}
	return e, nil
}
