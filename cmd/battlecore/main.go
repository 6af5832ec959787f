// Battlecore tracks the hidden state of a two-player battle from its event
// log, narrowing what the opponent's team can still be after every line.
// Usage: battlecore [--version] [--plain] [--verbose] [--side p1|p2]
// [--size n] [--log <file>] [--dump-layout] <dex_directory>
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/battlecore/cli"
	"github.com/nathoo/battlecore/engine"
	"github.com/nathoo/battlecore/engine/encode"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/loader"
	"github.com/nathoo/battlecore/tui"
	"github.com/nathoo/battlecore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: battlecore [--version] [--plain] [--verbose] [--side p1|p2] [--size n] [--log <file>] [--dump-layout] <dex_directory>\n"

func main() {
	plain := false
	verbose := false
	dumpLayout := false
	side := types.SideID("p1")
	size := 6
	var dexDir string
	var logFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("battlecore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--verbose":
			verbose = true
		case "--dump-layout":
			dumpLayout = true
		case "--side":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--side requires p1 or p2\n")
				os.Exit(1)
			}
			i++
			if args[i] != "p1" && args[i] != "p2" {
				fmt.Fprintf(os.Stderr, "--side requires p1 or p2, got %q\n", args[i])
				os.Exit(1)
			}
			side = types.SideID(args[i])
		case "--size":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--size requires a roster size\n")
				os.Exit(1)
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 1 || n > 6 {
				fmt.Fprintf(os.Stderr, "--size requires a roster size between 1 and 6\n")
				os.Exit(1)
			}
			size = n
		case "--log":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--log requires a file path\n")
				os.Exit(1)
			}
			i++
			logFile = args[i]
		default:
			if dexDir == "" {
				dexDir = args[i]
			}
		}
	}

	if dexDir == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	// Load and compile the Lua dex.
	dx, err := loader.Load(dexDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dex: %v\n", err)
		os.Exit(1)
	}

	// Print the encoder layout and exit.
	if dumpLayout {
		enc := encode.New(state.NewBattle(dx, side, size))
		out, err := yaml.Marshal(enc.Layout())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling layout: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("# battlecore encoder layout, %d values\n%s", enc.Size(), out)
		return
	}

	eng := engine.New(dx, side, size)

	// Plain CLI if --plain or stdout is not a terminal.
	if plain || !isTerminal() {
		logger, err := newLogger(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()

		c := cli.New(eng, logger)
		if logFile != "" {
			f, err := os.Open(logFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			c.In = f
			c.EchoInput = true
		}
		c.Run()
		return
	}

	// TUI: preload the battle log, if any, for stepping.
	var lines []string
	if logFile != "" {
		lines, err = readLogLines(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading log: %v\n", err)
			os.Exit(1)
		}
	}
	if err := tui.Run(eng, lines); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the production logger, at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// readLogLines reads a battle log, dropping blank and comment lines.
func readLogLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
