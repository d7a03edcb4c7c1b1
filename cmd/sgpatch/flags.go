package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/pflag"
)

var commands = []string{"search", "apply", "check", "serve", "runs"}

// AppFlags holds the parsed command line
type AppFlags struct {
	Command    string
	ConfigFile string
	Project    string

	Rule     string
	RuleFile string
	Language string
	Globs    string
	JSON     bool

	PatchFile string

	Addr string

	Limit int
}

// ParseFlags parses args (without the program name). The first positional
// argument selects the subcommand.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	flags := AppFlags{}
	fs := pflag.NewFlagSet("sgpatch", pflag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVarP(&flags.ConfigFile, "config", "c", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	fs.StringVarP(&flags.Project, "project", "p", "", "Project directory. Defaults to the active project, then the current directory.")

	fs.StringVarP(&flags.Rule, "rule", "r", "", "search: inline ast-grep rule YAML.")
	fs.StringVar(&flags.RuleFile, "rule-file", "", "search: read the rule YAML from this file.")
	fs.StringVarP(&flags.Language, "language", "l", "", "search: language id or engine tag (default from config).")
	fs.StringVarP(&flags.Globs, "globs", "g", "", "search: path globs passed to the engine (default from config).")
	fs.BoolVar(&flags.JSON, "json", false, "search: print the grouped results as JSON.")

	fs.StringVarP(&flags.PatchFile, "file", "f", "", "apply: read the patch request JSON from this file instead of stdin.")

	fs.StringVar(&flags.Addr, "addr", "", "serve: listen address (default from config).")

	fs.IntVarP(&flags.Limit, "limit", "n", 20, "runs: number of patch runs to list.")

	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: sgpatch <search|apply|check|serve|runs> [flags]")
		fmt.Fprintln(output, "\nStructural search and byte-range rewriting on top of ast-grep.")
		fmt.Fprintln(output, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return flags, err
	}

	positional := fs.Args()
	if len(positional) == 0 {
		fs.Usage()
		return flags, fmt.Errorf("a command is required (%v)", commands)
	}
	flags.Command = positional[0]
	if !slices.Contains(commands, flags.Command) {
		return flags, fmt.Errorf("unknown command %q", flags.Command)
	}
	if len(positional) > 1 {
		return flags, fmt.Errorf("unexpected arguments: %v", positional[1:])
	}

	if flags.Rule != "" && flags.RuleFile != "" {
		return flags, fmt.Errorf("--rule and --rule-file are mutually exclusive")
	}
	if flags.Limit <= 0 {
		return flags, fmt.Errorf("--limit must be positive")
	}

	return flags, nil
}
