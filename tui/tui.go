package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/engine/resolve"
	"github.com/nathoo/battlecore/engine/save"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed user input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the battle inspector.
type Model struct {
	engine *engine.Engine

	log []string // preloaded battle log, stepped with /step
	pos int      // next log line to apply

	viewport viewport.Model
	input    textinput.Model
	recall   *inputRecall

	rawLines []rawLine // accumulated output (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
	saveDir  string
}

// outputMsg carries output lines into the Update loop.
type outputMsg struct {
	input    string   // echoed user input (empty for the banner)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates an inspector model wired to the given engine. log holds the
// battle-log lines to step through; it may be empty, in which case lines are
// typed or pasted directly.
func New(eng *engine.Engine, log []string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 512
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	return Model{
		engine:  eng,
		log:     log,
		input:   ti,
		recall:  newInputRecall(100),
		saveDir: filepath.Join(home, ".battlecore", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, log []string) error {
	m := New(eng, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.banner())
}

func (m Model) banner() tea.Cmd {
	return func() tea.Msg {
		lines := []string{
			fmt.Sprintf("battlecore inspector — tracking as %s", m.engine.Battle.Us()),
		}
		if len(m.log) > 0 {
			lines = append(lines,
				fmt.Sprintf("%d log lines loaded. Enter or /step to advance, /run to play out.", len(m.log)))
		} else {
			lines = append(lines, "No log loaded. Paste battle-log lines directly.")
		}
		lines = append(lines, "/help for all commands.")
		return outputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, command output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if older, ok := m.recall.Older(m.input.Value()); ok {
				m.input.SetValue(older)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if newer, ok := m.recall.Newer(); ok {
				m.input.SetValue(newer)
				m.input.CursorEnd()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line. An empty line steps the
// loaded log by one.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		if m.pos < len(m.log) {
			m = m.appendOutput(outputMsg{lines: m.step(1)})
		}
		return m, nil
	}

	m.recall.Remember(input)

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Anything else is a battle-log line.
	m = m.appendOutput(outputMsg{lines: m.feed(input)})
	return m, nil
}

// feed hands one battle-log line to the engine and returns the echo plus any
// failure report.
func (m *Model) feed(line string) []string {
	out := []string{line}
	if _, err := m.engine.HandleLine(line); err != nil {
		out = append(out,
			fmt.Sprintf("Tracking aborted: %v", err),
			"The log contradicts the tracked state. /load a save or restart.")
	}
	return out
}

// step applies up to n lines from the loaded log.
func (m *Model) step(n int) []string {
	var out []string
	for i := 0; i < n && m.pos < len(m.log); i++ {
		line := m.log[m.pos]
		m.pos++
		out = append(out, m.feed(line)...)
		if m.engine.Aborted != nil {
			break
		}
	}
	if m.pos >= len(m.log) {
		out = append(out, "End of log.")
	}
	return out
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Preserves existing newlines within the text.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and a quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/step":
		n := 1
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 1 {
				return []string{fmt.Sprintf("Usage: /step [n]: bad count %q", arg)}, false
			}
			n = v
		}
		if m.pos >= len(m.log) {
			return []string{"End of log."}, false
		}
		return m.step(n), false

	case "/run":
		if m.pos >= len(m.log) {
			return []string{"End of log."}, false
		}
		return m.step(len(m.log) - m.pos), false

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/side":
		return m.cmdSide(arg), false

	case "/mon":
		return m.cmdMon(args), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.engine)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Battle saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	eng, err := save.Restore(m.engine.Dex, sd)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.engine = eng

	return []string{fmt.Sprintf("Battle loaded from %s (turn %d).", name, eng.Battle.Turn)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"Log:",
		"  /step [n]          — Apply the next n loaded log lines (Enter = /step 1)",
		"  /run               — Apply the rest of the loaded log",
		"  |...               — Any raw line is applied directly",
		"",
		"Inspection:",
		"  /state             — Battle overview: turn, weather, both sides",
		"  /side <p1|p2>      — Hazards, screens, and roster of one side",
		"  /mon <p1|p2> <name> — Everything tracked about one combatant",
		"",
		"System:",
		"  /save [name]       — Save battle (default: quicksave)",
		"  /load [name]       — Load battle (default: quicksave)",
		"  /quit              — Exit",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	b := m.engine.Battle
	output := []string{fmt.Sprintf("Turn: %d", b.Turn)}

	switch {
	case b.Weather.Kind == types.WeatherNone:
		output = append(output, "Weather: clear")
	case b.Weather.Infinite():
		output = append(output, fmt.Sprintf("Weather: %s (infinite)", b.Weather.Kind))
	default:
		output = append(output, fmt.Sprintf("Weather: %s (%d turns elapsed)", b.Weather.Kind, b.Weather.Turns()))
	}
	if b.TrickRoom.Active() {
		output = append(output, fmt.Sprintf("Trick Room: %d/%d turns", b.TrickRoom.Turns(), b.TrickRoom.Duration()))
	}
	if b.Gravity.Active() {
		output = append(output, fmt.Sprintf("Gravity: %d/%d turns", b.Gravity.Turns(), b.Gravity.Duration()))
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
		output = append(output, fmt.Sprintf("%s%s: active %s, revealed %d/%d",
			id, marker, active, len(side.Revealed()), side.Size()))
	}
	return output
}

func (m *Model) cmdSide(arg string) []string {
	side, err := m.engine.Battle.Side(types.SideID(arg))
	if err != nil {
		return []string{fmt.Sprintf("Usage: /side <p1|p2>: %v", err)}
	}

	var output []string
	if side.Spikes > 0 {
		output = append(output, fmt.Sprintf("Spikes: %d layer(s)", side.Spikes))
	}
	if side.ToxicSpikes > 0 {
		output = append(output, fmt.Sprintf("Toxic Spikes: %d layer(s)", side.ToxicSpikes))
	}
	if side.StealthRock > 0 {
		output = append(output, "Stealth Rock: set")
	}
	if side.Reflect.Active() {
		output = append(output, fmt.Sprintf("Reflect: %d/%d turns", side.Reflect.Turns(), side.Reflect.Duration()))
	}
	if side.LightScreen.Active() {
		output = append(output, fmt.Sprintf("Light Screen: %d/%d turns", side.LightScreen.Turns(), side.LightScreen.Duration()))
	}
	if side.Safeguard.Active() {
		output = append(output, fmt.Sprintf("Safeguard: %d/%d turns", side.Safeguard.Turns(), side.Safeguard.Duration()))
	}
	if side.Tailwind.Active() {
		output = append(output, fmt.Sprintf("Tailwind: %d/%d turns", side.Tailwind.Turns(), side.Tailwind.Duration()))
	}
	if side.Wish.Active() {
		output = append(output, fmt.Sprintf("Wish: %d/%d turns", side.Wish.Turns(), side.Wish.Duration()))
	}

	for _, mon := range side.Revealed() {
		tag := ""
		if mon == side.Active() {
			tag = " [active]"
		}
		output = append(output, fmt.Sprintf("  %s%s", monSummary(mon), tag))
	}
	if hidden := side.Size() - len(side.Revealed()); hidden > 0 {
		output = append(output, fmt.Sprintf("  %d unrevealed", hidden))
	}
	return output
}

func (m *Model) cmdMon(args []string) []string {
	if len(args) < 2 {
		return []string{"Usage: /mon <p1|p2> <species>"}
	}
	mon, err := resolve.ByName(m.engine.Battle, types.SideID(args[0]), args[1])
	if err != nil {
		return []string{err.Error()}
	}

	output := []string{
		monSummary(mon),
		fmt.Sprintf("Types: %s", joinTypes(mon.EffectiveTypes())),
		fmt.Sprintf("Ability: %s", fmtSet(mon.Ability.Keys())),
		fmt.Sprintf("Item: %s", fmtSet(mon.Item.Keys())),
	}

	moves := mon.Moves
	side := owningSide(m.engine.Battle, mon)
	active := side != nil && mon == side.Active()
	if active {
		moves = mon.ActiveMoves()
	}
	for _, mv := range moves.Known() {
		output = append(output, fmt.Sprintf("Move: %s (%d/%d pp)", mv.Name, mv.PP, mv.MaxPP))
	}
	if n := moves.UnknownCount(); n > 0 {
		output = append(output, fmt.Sprintf("Moves: %d slot(s) unknown of %d candidates", n, moves.PoolLen()))
	}

	for _, stat := range []types.StatName{types.HP, types.Atk, types.Def, types.SpA, types.SpD, types.Spe} {
		r, ok := mon.Stats[stat]
		if !ok {
			continue
		}
		if r.Known() {
			output = append(output, fmt.Sprintf("%s: %d", stat, r.Min()))
		} else {
			output = append(output, fmt.Sprintf("%s: %d-%d", stat, r.Min(), r.Max()))
		}
	}

	if active {
		for _, stat := range types.BoostStats {
			if n := mon.Volatile.Boosts[stat]; n != 0 {
				output = append(output, fmt.Sprintf("Boost %s: %+d", stat, n))
			}
		}
	}
	return output
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

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
