package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the template set for ambiguity",
	Long: `Validate loads the configuration and reports families of path templates
that could format to the same concrete path for some field assignment.
Exits non-zero when any family is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		families := reg.ValidateUniquePaths()
		if len(families) == 0 {
			fmt.Println("ok: no ambiguous templates")
			return nil
		}
		for _, family := range families {
			fmt.Println("clash:", strings.Join(family, ", "))
		}
		return fmt.Errorf("%d ambiguous template family(ies)", len(families))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
