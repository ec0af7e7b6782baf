package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	listUseDefaults bool
	listField       string
)

var listCmd = &cobra.Command{
	Use:   "list <template> [field=value...]",
	Short: "List existing paths matching a template",
	Long: `List globs the filesystem for paths matching the template, using the
supplied fields and wildcards for the rest. With --field the output is
projected to that field's distinct values instead of full paths.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		fields, err := parseFields(args[1:])
		if err != nil {
			return err
		}

		if listField != "" {
			t, err := reg.PathTemplate(args[0])
			if err != nil {
				return err
			}
			values, err := t.ValuesFromPaths(reg.Globber(), listField, fields, listUseDefaults)
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(values))
			for value, p := range values {
				lines = append(lines, fmt.Sprintf("%v\t%s", value, p))
			}
			sort.Strings(lines)
			for _, line := range lines {
				fmt.Println(line)
			}
			return nil
		}

		found, err := reg.Enumerate(args[0], fields, listUseDefaults)
		if err != nil {
			return err
		}
		paths := make([]string, 0, len(found))
		for p := range found {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listUseDefaults, "use-defaults", false, "Fill unset fields from token defaults instead of wildcards")
	listCmd.Flags().StringVar(&listField, "field", "", "Print this field's values instead of paths")
	rootCmd.AddCommand(listCmd)
}
