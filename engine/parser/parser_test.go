package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/battlecore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Event
		skip  bool
	}{
		{
			name:  "turn",
			input: "|turn|4",
			want:  types.Event{Type: "turn", Args: map[string]any{"number": 4}},
		},
		{
			name:  "switch",
			input: "|switch|p1a: Zapdos|Zapdos, L82|301/301",
			want: types.Event{Type: "switch", Args: map[string]any{
				"pos": "p1a: Zapdos", "details": "Zapdos, L82", "hp": "301/301",
			}},
		},
		{
			name:  "move with target",
			input: "|move|p1a: Zapdos|Thunderbolt|p2a: Golduck",
			want: types.Event{Type: "move", Args: map[string]any{
				"pos": "p1a: Zapdos", "move": "Thunderbolt", "target": "p2a: Golduck",
			}},
		},
		{
			name:  "move with from tag",
			input: "|move|p1a: Zapdos|Thunderbolt|p2a: Golduck|[from]move: Sleep Talk",
			want: types.Event{Type: "move", Args: map[string]any{
				"pos": "p1a: Zapdos", "move": "Thunderbolt", "target": "p2a: Golduck",
				"from": "move: Sleep Talk",
			}},
		},
		{
			name:  "damage with dash prefix",
			input: "|-damage|p2a: Golduck|151/302",
			want: types.Event{Type: "damage", Args: map[string]any{
				"pos": "p2a: Golduck", "hp": "151/302",
			}},
		},
		{
			name:  "heal with from and of",
			input: "|-heal|p2a: Golduck|170/302|[from] item: Leftovers",
			want: types.Event{Type: "heal", Args: map[string]any{
				"pos": "p2a: Golduck", "hp": "170/302", "from": "item: Leftovers",
			}},
		},
		{
			name:  "weather upkeep",
			input: "|-weather|RainDance|[upkeep]",
			want: types.Event{Type: "weather", Args: map[string]any{
				"weather": "RainDance", "upkeep": "true",
			}},
		},
		{
			name:  "weather from ability",
			input: "|-weather|RainDance|[from] ability: Drizzle|[of] p2a: Pelipper",
			want: types.Event{Type: "weather", Args: map[string]any{
				"weather": "RainDance", "from": "ability: Drizzle", "of": "p2a: Pelipper",
			}},
		},
		{
			name:  "sidestart",
			input: "|-sidestart|p2: Opponent|move: Light Screen",
			want: types.Event{Type: "sidestart", Args: map[string]any{
				"side": "p2: Opponent", "condition": "move: Light Screen",
			}},
		},
		{
			name:  "unboost",
			input: "|-unboost|p1a: Zapdos|spe|1",
			want: types.Event{Type: "unboost", Args: map[string]any{
				"pos": "p1a: Zapdos", "stat": "spe", "amount": 1,
			}},
		},
		{
			name:  "start disable carries the move",
			input: "|-start|p1a: Zapdos|Disable|Thunderbolt",
			want: types.Event{Type: "start", Args: map[string]any{
				"pos": "p1a: Zapdos", "condition": "Disable", "move": "Thunderbolt",
			}},
		},
		{
			name:  "cant",
			input: "|cant|p2a: Golduck|slp",
			want: types.Event{Type: "cant", Args: map[string]any{
				"pos": "p2a: Golduck", "reason": "slp",
			}},
		},
		{
			name:  "empty trailing field dropped",
			input: "|-curestatus|p2a: Golduck|slp|",
			want: types.Event{Type: "curestatus", Args: map[string]any{
				"pos": "p2a: Golduck", "status": "slp",
			}},
		},
		{name: "chat line", input: "|c|someone|hello", skip: true},
		{name: "bare pipe", input: "|", skip: true},
		{name: "empty", input: "", skip: true},
		{name: "no pipe prefix", input: "battle started", skip: true},
		{name: "unknown message", input: "|rated|Tournament battle", skip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if tt.skip {
				if ok {
					t.Fatalf("Parse(%q) should be skipped, got %+v", tt.input, got)
				}
				return
			}
			if !ok {
				t.Fatalf("Parse(%q) skipped", tt.input)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q)\n got %+v\nwant %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{
		"|turn|banana",
		"|-boost|p1a: Zapdos|atk|lots",
		"|-heal|p2a: Golduck|170/302|[from item: Leftovers",
	} {
		if _, _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}
