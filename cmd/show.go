package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the loaded tokens and templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		tokens := reg.Tokens()
		fmt.Println("tokens:")
		for _, name := range slices.Sorted(maps.Keys(tokens)) {
			tok := tokens[name]
			fmt.Printf("  %s (%s)", name, tok.Kind())
			if p := tok.Padding(); p != nil {
				fmt.Printf(" padding=%s", p)
			}
			if choices := tok.Choices(); len(choices) > 0 {
				fmt.Printf(" choices=%v", choices)
			}
			if def := tok.Default(); def != nil {
				fmt.Printf(" default=%v", def)
			}
			fmt.Println()
		}

		paths := reg.PathTemplates()
		if len(paths) > 0 {
			fmt.Println("paths:")
			for _, name := range slices.Sorted(maps.Keys(paths)) {
				fmt.Printf("  %s = %s\n", name, paths[name].Pattern())
			}
		}
		names := reg.NameTemplates()
		if len(names) > 0 {
			fmt.Println("names:")
			for _, name := range slices.Sorted(maps.Keys(names)) {
				fmt.Printf("  %s = %s\n", name, names[name].Pattern())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
