package tui

import (
	"strings"
	"testing"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"|move|p2a: Golduck|Surf|p1a: Zapdos", kindLog},
		{"|turn|2", kindLog},
		{"[Battle saved to test.]", kindSystem},
		{"Tracking aborted: narrowing item: no values remain possible", kindError},
		{"Load failed: open nope.json: no such file", kindError},
		{"Ability: {cloudnine, damp} (2 possible)", kindInfo},
		{"Turn: 3", kindInfo},
		{"", kindInfo},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The possibility set narrows with every observed battle event.", 30,
			"The possibility set narrows\nwith every observed battle\nevent."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestRecall_OlderWalksBack(t *testing.T) {
	r := newInputRecall(5)
	r.Remember("/state")
	r.Remember("/side p2")
	r.Remember("/mon p2 golduck")

	older, ok := r.Older("")
	if !ok || older != "/mon p2 golduck" {
		t.Errorf("expected '/mon p2 golduck', got %q (ok=%v)", older, ok)
	}

	older, ok = r.Older(older)
	if !ok || older != "/side p2" {
		t.Errorf("expected '/side p2', got %q (ok=%v)", older, ok)
	}

	older, ok = r.Older(older)
	if !ok || older != "/state" {
		t.Errorf("expected '/state', got %q (ok=%v)", older, ok)
	}

	// At oldest, stays there.
	older, ok = r.Older(older)
	if !ok || older != "/state" {
		t.Errorf("expected '/state' at boundary, got %q (ok=%v)", older, ok)
	}
}

func TestRecall_NewerRestoresDraft(t *testing.T) {
	r := newInputRecall(5)
	r.Remember("/state")
	r.Remember("/side p2")

	// Cycling up from a half-typed line captures it as the draft.
	r.Older("/mon p2 gol")
	r.Older("")

	newer, ok := r.Newer()
	if !ok || newer != "/side p2" {
		t.Errorf("expected '/side p2', got %q (ok=%v)", newer, ok)
	}

	newer, ok = r.Newer()
	if !ok || newer != "/mon p2 gol" {
		t.Errorf("expected draft back, got %q (ok=%v)", newer, ok)
	}

	if _, ok = r.Newer(); ok {
		t.Error("expected false once editing the draft")
	}
}

func TestRecall_Empty(t *testing.T) {
	r := newInputRecall(5)
	if _, ok := r.Older(""); ok {
		t.Error("expected false with nothing remembered")
	}
	if _, ok := r.Newer(); ok {
		t.Error("expected false with nothing remembered")
	}
}

func TestRecall_CapEvictsOldest(t *testing.T) {
	r := newInputRecall(2)
	r.Remember("|turn|1")
	r.Remember("|turn|2")
	r.Remember("|turn|3") // "|turn|1" evicted

	older, _ := r.Older("")
	if older != "|turn|3" {
		t.Errorf("expected '|turn|3', got %q", older)
	}
	older, _ = r.Older(older)
	if older != "|turn|2" {
		t.Errorf("expected '|turn|2', got %q", older)
	}
	// "|turn|1" is gone.
	older, _ = r.Older(older)
	if older != "|turn|2" {
		t.Errorf("expected '|turn|2' at boundary, got %q", older)
	}
}

func TestRecall_SkipsRepeatedLine(t *testing.T) {
	r := newInputRecall(5)
	r.Remember("/state")
	r.Remember("/state") // skipped
	r.Remember("/state") // skipped

	if len(r.lines) != 1 {
		t.Errorf("expected 1 entry, got %d", len(r.lines))
	}
}

func TestRecall_RememberDiscardsDraft(t *testing.T) {
	r := newInputRecall(5)
	r.Remember("/state")
	r.Older("/side p1")
	r.Remember("/side p2")

	if _, ok := r.Newer(); ok {
		t.Error("remembering must return the cursor to a fresh draft")
	}
	older, _ := r.Older("")
	if older != "/side p2" {
		t.Errorf("expected '/side p2', got %q", older)
	}
}

// testDex returns a minimal dex for inspector testing.
func testDex(t *testing.T) *dex.Dex {
	t.Helper()
	species := []dex.Species{
		{
			Name:  "zapdos",
			Types: []types.TypeName{"electric", "flying"},
			BaseStats: map[types.StatName]int{
				types.HP: 90, types.Atk: 90, types.Def: 85,
				types.SpA: 125, types.SpD: 90, types.Spe: 100,
			},
			Abilities: []types.AbilityName{"pressure"},
			Movepool:  []types.MoveName{"thunderbolt", "protect"},
		},
		{
			Name:  "golduck",
			Types: []types.TypeName{"water"},
			BaseStats: map[types.StatName]int{
				types.HP: 80, types.Atk: 82, types.Def: 78,
				types.SpA: 95, types.SpD: 80, types.Spe: 85,
			},
			Abilities: []types.AbilityName{"damp", "cloudnine"},
			Movepool:  []types.MoveName{"surf", "raindance", "protect"},
		},
	}
	moves := []dex.Move{
		{Name: "thunderbolt", Type: "electric", Category: "special", BasePP: 15},
		{Name: "surf", Type: "water", Category: "special", BasePP: 15},
		{Name: "raindance", Type: "water", Category: "status", BasePP: 5, Weather: types.WeatherRain},
		{Name: "protect", Type: "normal", Category: "status", BasePP: 10, Protect: true},
	}
	items := []dex.Item{{Name: "leftovers"}}
	abilities := []dex.Ability{
		{Name: "pressure"},
		{Name: "damp"},
		{Name: "cloudnine", SuppressesWeather: true},
	}
	d, err := dex.New(species, moves, items, abilities)
	if err != nil {
		t.Fatalf("building test dex: %v", err)
	}
	return d
}

var testLog = []string{
	"|switch|p1a: Zapdos|Zapdos|100/100",
	"|switch|p2a: Golduck|Golduck|100/100",
	"|turn|1",
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New(testDex(t), "p1", 3)
	m := New(eng, testLog)
	m.saveDir = t.TempDir()
	return m
}

func TestStep_AdvancesLog(t *testing.T) {
	m := newTestModel(t)

	out := m.step(2)
	if m.pos != 2 {
		t.Errorf("pos = %d, want 2", m.pos)
	}
	joined := strings.Join(out, "\n")
	if !strings.Contains(joined, "|switch|p1a: Zapdos") {
		t.Error("expected echoed log line in step output")
	}
	if m.engine.Battle.Turn != 0 {
		t.Errorf("turn = %d before the turn line, want 0", m.engine.Battle.Turn)
	}

	out = m.step(1)
	if m.engine.Battle.Turn != 1 {
		t.Errorf("turn = %d, want 1", m.engine.Battle.Turn)
	}
	if !strings.Contains(strings.Join(out, "\n"), "End of log.") {
		t.Error("expected end-of-log marker")
	}
}

func TestHandleMeta_StepAndRun(t *testing.T) {
	m := newTestModel(t)

	out, quit := m.handleMeta("/step 2")
	if quit {
		t.Error("step should not quit")
	}
	if m.pos != 2 {
		t.Errorf("pos = %d, want 2", m.pos)
	}
	if len(out) == 0 {
		t.Error("expected step output")
	}

	_, _ = m.handleMeta("/run")
	if m.pos != len(testLog) {
		t.Errorf("pos = %d, want %d after /run", m.pos, len(testLog))
	}

	out, _ = m.handleMeta("/step")
	if len(out) == 0 || out[0] != "End of log." {
		t.Errorf("expected end-of-log message, got %v", out)
	}
}

func TestHandleMeta_StepBadCount(t *testing.T) {
	m := newTestModel(t)

	out, _ := m.handleMeta("/step zero")
	if len(out) == 0 || !strings.Contains(out[0], "bad count") {
		t.Errorf("expected bad count message, got %v", out)
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := newTestModel(t)

	if _, quit := m.handleMeta("/quit"); !quit {
		t.Error("expected quit=true for /quit")
	}
	if _, quit := m.handleMeta("/exit"); !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_State(t *testing.T) {
	m := newTestModel(t)
	m.step(len(testLog))

	output, quit := m.handleMeta("/state")
	if quit {
		t.Error("state should not quit")
	}

	joined := strings.Join(output, "\n")
	if !strings.Contains(joined, "Turn: 1") {
		t.Error("expected turn in state output")
	}
	if !strings.Contains(joined, "active zapdos") {
		t.Error("expected active combatant in state output")
	}
	if !strings.Contains(joined, "Weather: clear") {
		t.Error("expected weather line in state output")
	}
}

func TestHandleMeta_Mon(t *testing.T) {
	m := newTestModel(t)
	m.step(len(testLog))

	output, _ := m.handleMeta("/mon p2 golduck")
	joined := strings.Join(output, "\n")
	if !strings.Contains(joined, "Ability: {cloudnine, damp} (2 possible)") {
		t.Errorf("expected undetermined ability set, got:\n%s", joined)
	}
	if !strings.Contains(joined, "Types: water") {
		t.Error("expected types line in mon output")
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	m := newTestModel(t)
	m.step(len(testLog))

	output, _ := m.handleMeta("/save test")
	if len(output) == 0 || !strings.Contains(output[0], "Battle saved") {
		t.Errorf("expected save confirmation, got %v", output)
	}

	m2 := newTestModel(t)
	m2.saveDir = m.saveDir
	output, _ = m2.handleMeta("/load test")
	if len(output) == 0 || !strings.Contains(output[0], "Battle loaded from test (turn 1)") {
		t.Errorf("expected load confirmation, got %v", output)
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	m := newTestModel(t)

	output, quit := m.handleMeta("/load nonexistent")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := newTestModel(t)

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}

	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/step", "/run", "/state", "/side", "/mon", "/save", "/load", "/quit"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := newTestModel(t)

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestFeed_ReportsAbort(t *testing.T) {
	m := newTestModel(t)
	m.step(len(testLog))

	m.feed("|-ability|p2a: Golduck|Damp")
	out := m.feed("|-ability|p2a: Golduck|Cloud Nine")

	joined := strings.Join(out, "\n")
	if !strings.Contains(joined, "Tracking aborted") {
		t.Errorf("expected abort report, got:\n%s", joined)
	}
}
