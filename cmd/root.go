package cmd

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/pathform/internal/configload"
	"github.com/agentic-research/pathform/internal/pattern"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a token/template configuration (defaults to $"+configload.EnvVar+")")
}

var rootCmd = &cobra.Command{
	Use:   "pathform",
	Short: "Resolve, parse and enumerate structured filesystem paths",
	Long: `Pathform maps between structured paths and the fields that name them.

A configuration defines typed tokens and the templates composing them;
pathform then formats field values into concrete paths, parses paths back
into fields, globs the filesystem for matching paths, and checks the
template set for ambiguity.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadRegistry builds the registry from --config, falling back to the
// environment variable.
func loadRegistry() (*pattern.Registry, error) {
	path := configPath
	if env := os.Getenv(configload.EnvVar); path == "" {
		path = env
	} else if env != "" && env != path {
		log.Printf("warning: --config %s overrides $%s", path, configload.EnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("no configuration: pass --config or set $%s", configload.EnvVar)
	}
	cfg, err := configload.Load(path)
	if err != nil {
		return nil, err
	}
	return pattern.NewRegistry(cfg)
}

// parseFields decodes key=value arguments. Values stay strings; the token
// layer parses them into their typed form.
func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q is not key=value", arg)
		}
		fields[key] = value
	}
	return fields, nil
}

// sortedFieldLines renders fields one per line in key order.
func sortedFieldLines(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s = %v", k, fields[k])
	}
	return lines
}
