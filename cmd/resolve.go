package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <template> [field=value...]",
	Short: "Format field values into a concrete path or name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		fields, err := parseFields(args[1:])
		if err != nil {
			return err
		}
		out, err := reg.Resolve(args[0], fields)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
