// Package parser converts pipe-delimited battle-log lines into decoded
// events. Intentionally dumb: no interpretation, just field splitting and
// tag extraction.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/battlecore/types"
)

// shapes maps each recognized log message to the argument names its
// positional fields bind to, in order. Trailing fields beyond the shape are
// tags or ignored.
var shapes = map[string][]string{
	"turn":       {"number"},
	"switch":     {"pos", "details", "hp"},
	"drag":       {"pos", "details", "hp"},
	"move":       {"pos", "move", "target"},
	"faint":      {"pos"},
	"damage":     {"pos", "hp"},
	"heal":       {"pos", "hp"},
	"sethp":      {"pos", "hp"},
	"status":     {"pos", "status"},
	"curestatus": {"pos", "status"},
	"boost":      {"pos", "stat", "amount"},
	"unboost":    {"pos", "stat", "amount"},
	"setboost":   {"pos", "stat", "amount"},
	"clearboost": {"pos"},
	"ability":    {"pos", "ability"},
	"endability": {"pos", "ability"},
	"item":       {"pos", "item"},
	"enditem":    {"pos", "item"},
	"weather":    {"weather"},
	"fieldstart": {"condition"},
	"fieldend":   {"condition"},
	"sidestart":  {"side", "condition"},
	"sideend":    {"side", "condition"},
	"start":      {"pos", "condition", "move"},
	"end":        {"pos", "condition"},
	"activate":   {"pos", "condition"},
	"transform":  {"pos", "target"},
	"cant":       {"pos", "reason", "move"},
	"prepare":    {"pos", "move", "target"},
	"fail":       {"pos", "move"},
	"upkeep":     {},
}

// intFields are the positional arguments parsed as integers.
var intFields = map[string]bool{
	"number": true,
	"amount": true,
}

// Parse decodes one log line. The second return is false for lines that
// carry nothing to track (chat, timestamps, unrecognized messages); malformed
// recognized messages are errors.
func Parse(line string) (types.Event, bool, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "|") {
		return types.Event{}, false, nil
	}
	fields := strings.Split(line, "|")[1:]
	if len(fields) == 0 || fields[0] == "" {
		return types.Event{}, false, nil
	}

	typ := strings.TrimPrefix(fields[0], "-")
	shape, ok := shapes[typ]
	if !ok {
		return types.Event{}, false, nil
	}

	ev := types.Event{Type: typ, Args: map[string]any{}}
	positional := 0
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "[") {
			key, value, err := parseTag(f)
			if err != nil {
				return types.Event{}, false, fmt.Errorf("line %q: %w", line, err)
			}
			ev.Args[key] = value
			continue
		}
		if positional >= len(shape) {
			continue
		}
		key := shape[positional]
		positional++
		if f == "" {
			continue
		}
		if intFields[key] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return types.Event{}, false, fmt.Errorf("line %q: field %s: %w", line, key, err)
			}
			ev.Args[key] = n
			continue
		}
		ev.Args[key] = f
	}
	return ev, true, nil
}

// parseTag decodes a bracketed tag: "[from] item: Leftovers" carries a
// value, "[upkeep]" is bare and stored as "true".
func parseTag(f string) (key, value string, err error) {
	end := strings.IndexByte(f, ']')
	if end < 1 {
		return "", "", fmt.Errorf("malformed tag %q", f)
	}
	key = f[1:end]
	value = strings.TrimSpace(f[end+1:])
	if value == "" {
		value = "true"
	}
	return key, value, nil
}
