// Package cli provides terminal I/O, state inspection, and meta-command
// dispatch for the battle tracker.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/engine/counters"
	"github.com/nathoo/battlecore/engine/resolve"
	"github.com/nathoo/battlecore/engine/save"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
	"go.uber.org/zap"
)

// CLI handles terminal interaction with the user. Plain input lines are fed
// to the tracker as battle-log lines; lines starting with '/' are
// meta-commands.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Log       *zap.Logger
	SaveDir   string
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, log *zap.Logger) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".battlecore", "saves")
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		Log:     log,
		SaveDir: saveDir,
	}
}

// Run starts the input loop: prompt → line → dispatch → output. It returns
// when input is exhausted or on /quit.
func (c *CLI) Run() {
	c.printSystem(fmt.Sprintf("Tracking battle as %s. Paste battle-log lines; /help for commands.",
		c.Engine.Battle.Us()))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		c.feed(input)
	}
}

// feed hands one battle-log line to the engine.
func (c *CLI) feed(line string) {
	if _, err := c.Engine.HandleLine(line); err != nil {
		c.Log.Error("tracking aborted",
			zap.String("line", line),
			zap.Error(err))
		c.printSystem(fmt.Sprintf("Tracking aborted: %v", err))
		c.printSystem("The log contradicts the tracked state. /load a save or restart.")
		return
	}
	c.Log.Debug("line applied",
		zap.String("line", line),
		zap.Int("turn", c.Engine.Battle.Turn))
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(first(args))

	case "/load":
		c.cmdLoad(first(args))

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/side":
		c.cmdSide(first(args))

	case "/mon":
		c.cmdMon(args)

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func first(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Battle saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	eng, err := save.Restore(c.Engine.Dex, sd)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.Engine = eng
	c.printSystem(fmt.Sprintf("Battle loaded from %s (turn %d).", name, eng.Battle.Turn))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]       — Save battle (default: quicksave)",
		"  /load [name]       — Load battle (default: quicksave)",
		"  /quit              — Exit",
		"  /help              — Show this help",
		"",
		"Inspection:",
		"  /state             — Battle overview: turn, weather, both sides",
		"  /side <p1|p2>      — Hazards, screens, and roster of one side",
		"  /mon <p1|p2> <name> — Everything tracked about one combatant",
		"",
		"Any other line is treated as a battle-log line and applied.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	b := c.Engine.Battle
	c.printSystem(fmt.Sprintf("Turn: %d", b.Turn))

	if b.Weather.Kind == types.WeatherNone {
		c.printSystem("Weather: clear")
	} else if b.Weather.Infinite() {
		c.printSystem(fmt.Sprintf("Weather: %s (infinite)", b.Weather.Kind))
	} else {
		c.printSystem(fmt.Sprintf("Weather: %s (%d turns elapsed)", b.Weather.Kind, b.Weather.Turns()))
	}
	if b.TrickRoom.Active() {
		c.printSystem(fmt.Sprintf("Trick Room: %s", fmtFixed(b.TrickRoom)))
	}
	if b.Gravity.Active() {
		c.printSystem(fmt.Sprintf("Gravity: %s", fmtFixed(b.Gravity)))
	}

	for _, id := range []types.SideID{"p1", "p2"} {
		side, err := b.Side(id)
		if err != nil {
			continue
		}
		marker := ""
		if id == b.Us() {
			marker = " (us)"
		}
		active := "none"
		if mon := side.Active(); mon != nil {
			active = monLabel(mon)
		}
		c.printSystem(fmt.Sprintf("%s%s: active %s, revealed %d/%d",
			id, marker, active, len(side.Revealed()), side.Size()))
	}
}

func (c *CLI) cmdSide(arg string) {
	side, err := c.Engine.Battle.Side(types.SideID(arg))
	if err != nil {
		c.printSystem(fmt.Sprintf("Usage: /side <p1|p2>: %v", err))
		return
	}

	if side.Spikes > 0 {
		c.printSystem(fmt.Sprintf("Spikes: %d layer(s)", side.Spikes))
	}
	if side.ToxicSpikes > 0 {
		c.printSystem(fmt.Sprintf("Toxic Spikes: %d layer(s)", side.ToxicSpikes))
	}
	if side.StealthRock > 0 {
		c.printSystem("Stealth Rock: set")
	}
	if side.Reflect.Active() {
		c.printSystem(fmt.Sprintf("Reflect: %d/%d turns", side.Reflect.Turns(), side.Reflect.Duration()))
	}
	if side.LightScreen.Active() {
		c.printSystem(fmt.Sprintf("Light Screen: %d/%d turns", side.LightScreen.Turns(), side.LightScreen.Duration()))
	}
	if side.Safeguard.Active() {
		c.printSystem(fmt.Sprintf("Safeguard: %s", fmtFixed(side.Safeguard)))
	}
	if side.Mist.Active() {
		c.printSystem(fmt.Sprintf("Mist: %s", fmtFixed(side.Mist)))
	}
	if side.Tailwind.Active() {
		c.printSystem(fmt.Sprintf("Tailwind: %s", fmtFixed(side.Tailwind)))
	}
	if side.LuckyChant.Active() {
		c.printSystem(fmt.Sprintf("Lucky Chant: %s", fmtFixed(side.LuckyChant)))
	}
	if side.Wish.Active() {
		c.printSystem(fmt.Sprintf("Wish: %s", fmtFixed(side.Wish)))
	}

	for _, mon := range side.Revealed() {
		tag := ""
		if mon == side.Active() {
			tag = " [active]"
		}
		c.printSystem(fmt.Sprintf("  %s%s", monSummary(mon), tag))
	}
	hidden := side.Size() - len(side.Revealed())
	if hidden > 0 {
		c.printSystem(fmt.Sprintf("  %d unrevealed", hidden))
	}
}

func (c *CLI) cmdMon(args []string) {
	if len(args) < 2 {
		c.printSystem("Usage: /mon <p1|p2> <species>")
		return
	}
	mon, err := resolve.ByName(c.Engine.Battle, types.SideID(args[0]), args[1])
	if err != nil {
		c.printSystem(err.Error())
		return
	}

	c.printSystem(monSummary(mon))
	c.printSystem(fmt.Sprintf("Types: %s", joinTypes(mon.EffectiveTypes())))
	c.printSystem(fmt.Sprintf("Ability: %s", fmtSet(mon.Ability.Keys())))
	c.printSystem(fmt.Sprintf("Item: %s", fmtSet(mon.Item.Keys())))

	moves := mon.Moves
	side := owningSide(c.Engine.Battle, mon)
	if side != nil && mon == side.Active() {
		moves = mon.ActiveMoves()
	}
	for _, mv := range moves.Known() {
		c.printSystem(fmt.Sprintf("Move: %s (%d/%d pp)", mv.Name, mv.PP, mv.MaxPP))
	}
	if n := moves.UnknownCount(); n > 0 {
		c.printSystem(fmt.Sprintf("Moves: %d slot(s) unknown of %d candidates", n, moves.PoolLen()))
	}

	for _, stat := range []types.StatName{types.HP, types.Atk, types.Def, types.SpA, types.SpD, types.Spe} {
		r, ok := mon.Stats[stat]
		if !ok {
			continue
		}
		if r.Known() {
			c.printSystem(fmt.Sprintf("%s: %d", stat, r.Min()))
		} else {
			c.printSystem(fmt.Sprintf("%s: %d-%d", stat, r.Min(), r.Max()))
		}
	}

	if side != nil && mon == side.Active() {
		for _, stat := range types.BoostStats {
			if n := mon.Volatile.Boosts[stat]; n != 0 {
				c.printSystem(fmt.Sprintf("Boost %s: %+d", stat, n))
			}
		}
	}
}

// owningSide finds the side a revealed combatant belongs to.
func owningSide(b *state.Battle, mon *state.Pokemon) *state.Side {
	for _, id := range []types.SideID{"p1", "p2"} {
		side, err := b.Side(id)
		if err != nil {
			continue
		}
		for _, m := range side.Revealed() {
			if m == mon {
				return side
			}
		}
	}
	return nil
}

// monLabel is the short display form: the species if determined, otherwise
// the candidate count.
func monLabel(mon *state.Pokemon) string {
	if sp, ok := mon.Species.Definite(); ok {
		return string(sp)
	}
	return fmt.Sprintf("<%d species candidates>", mon.Species.Len())
}

func monSummary(mon *state.Pokemon) string {
	label := monLabel(mon)
	if mon.Fainted {
		return fmt.Sprintf("%s L%d, fainted", label, mon.Level)
	}
	s := fmt.Sprintf("%s L%d, %d%% hp", label, mon.Level, mon.HPPercent)
	if mon.Status != "" {
		s += fmt.Sprintf(", %s", mon.Status)
	}
	return s
}

// fmtSet renders a possibility set: the single value when determined,
// otherwise the sorted candidates with a count.
func fmtSet[K ~string](keys []K) string {
	if len(keys) == 1 {
		return string(keys[0])
	}
	ss := make([]string, len(keys))
	for i, k := range keys {
		ss[i] = string(k)
	}
	sort.Strings(ss)
	const shown = 8
	if len(ss) > shown {
		return fmt.Sprintf("{%s, ...} (%d possible)", strings.Join(ss[:shown], ", "), len(ss))
	}
	return fmt.Sprintf("{%s} (%d possible)", strings.Join(ss, ", "), len(ss))
}

func joinTypes(ts []types.TypeName) string {
	ss := make([]string, len(ts))
	for i, t := range ts {
		ss[i] = string(t)
	}
	return strings.Join(ss, "/")
}

func fmtFixed(f *counters.Fixed) string {
	return fmt.Sprintf("%d/%d turns", f.Turns(), f.Duration())
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
