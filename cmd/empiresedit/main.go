// Empiresedit is a save and config editor for Social Empires/Wars.
// Usage: empiresedit [--version] [--plain] [--no-patches] [--config <file>] [--script <file>] [file...]
package main

import (
	"fmt"
	"os"

	"empiresedit/cli"
	"empiresedit/config"
	"empiresedit/session"
	"empiresedit/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	applyPatches := true
	configPath := "empiresedit.yaml"
	var scriptFile string
	var files []string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("empiresedit %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--no-patches":
			applyPatches = false
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			files = append(files, args[i])
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	s := session.New()

	// Files named on the command line are loaded up front, in order, so
	// "empiresedit config.json save.json" opens both.
	for _, path := range files {
		res := session.Load(path, cfg.PatchDir, applyPatches)
		for _, skip := range res.Skipped {
			fmt.Fprintf(os.Stderr, "warning: %v\n", skip)
		}
		if err := s.Install(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(s)
		c.In = f
		c.EchoInput = true
		c.PatchDir = cfg.PatchDir
		c.AssetDirs = cfg.AssetDirs
		c.ApplyPatches = applyPatches
		c.Run()
		return
	}

	// Use the plain CLI if --plain or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(s)
		c.PatchDir = cfg.PatchDir
		c.AssetDirs = cfg.AssetDirs
		c.ApplyPatches = applyPatches
		c.Run()
		return
	}

	if err := tui.Run(s, cfg.PatchDir, cfg.AssetDirs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
