package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseTemplate string

var parseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parse a path back into its field values",
	Long: `Parse decodes a path against the configured path templates and prints
the matching template's name and the decoded fields. Without --template the
templates are tried in registry order and the first full match wins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		var name string
		var fields map[string]any
		if parseTemplate != "" {
			t, err := reg.PathTemplate(parseTemplate)
			if err != nil {
				return err
			}
			fields, err = t.Parse(args[0])
			if err != nil {
				return err
			}
			name = t.Name()
		} else {
			t, parsed, err := reg.ParsePath(args[0])
			if err != nil {
				return err
			}
			name, fields = t.Name(), parsed
		}

		fmt.Println("template:", name)
		for _, line := range sortedFieldLines(fields) {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseTemplate, "template", "t", "", "Parse against one template only")
	rootCmd.AddCommand(parseCmd)
}
