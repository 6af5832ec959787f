// Package tui provides a Bubble Tea terminal inspector for the battle
// tracker: step through a battle log and watch the tracked state narrow.
package tui

// inputRecall remembers submitted input lines, both pasted protocol lines
// and meta-commands, for Up/Down cycling. The newest position past the last
// entry holds the draft: text typed but not yet submitted, restored when
// cycling returns forward past the most recent entry.
type inputRecall struct {
	lines []string
	cap   int
	pos   int // == len(lines) means editing the draft
	draft string
}

func newInputRecall(cap int) *inputRecall {
	return &inputRecall{lines: make([]string, 0, cap), cap: cap}
}

// Remember records a submitted line, evicting the oldest entry over
// capacity. Resubmitting the previous line records nothing. Either way the
// cursor returns to the draft position and the draft is discarded.
func (r *inputRecall) Remember(line string) {
	if len(r.lines) == 0 || r.lines[len(r.lines)-1] != line {
		r.lines = append(r.lines, line)
		if len(r.lines) > r.cap {
			r.lines = r.lines[1:]
		}
	}
	r.Reset()
}

// Older steps back toward the oldest entry. The current input is captured as
// the draft on the first step away from it. Reports false only when nothing
// has been remembered yet.
func (r *inputRecall) Older(current string) (string, bool) {
	if len(r.lines) == 0 {
		return "", false
	}
	if r.pos == len(r.lines) {
		r.draft = current
	}
	if r.pos > 0 {
		r.pos--
	}
	return r.lines[r.pos], true
}

// Newer steps forward toward the draft, returning it when the cursor leaves
// the remembered entries. Reports false when already editing the draft.
func (r *inputRecall) Newer() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	r.pos++
	if r.pos == len(r.lines) {
		return r.draft, true
	}
	return r.lines[r.pos], true
}

// Reset abandons navigation and discards the draft.
func (r *inputRecall) Reset() {
	r.pos = len(r.lines)
	r.draft = ""
}
