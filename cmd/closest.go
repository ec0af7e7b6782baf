package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closestFile bool

var closestCmd = &cobra.Command{
	Use:   "closest <path>",
	Short: "Find the deepest template match within a path",
	Long: `Closest runs a partial match of every path template against the path
and reports the one leaving the fewest unmatched segments. By default the
path is treated as a directory, so a template may only stop on a segment
boundary; with --file the trailing segment may be matched mid-name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		match, err := reg.ExtractClosest(args[0], !closestFile)
		if err != nil {
			return err
		}
		fmt.Println("template:", match.Template.Name())
		fmt.Println("matched:", match.Path)
		if match.Remainder != "" {
			fmt.Println("remainder:", match.Remainder)
		}
		for _, line := range sortedFieldLines(match.Fields) {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	closestCmd.Flags().BoolVar(&closestFile, "file", false, "Allow the match to end mid-segment")
	rootCmd.AddCommand(closestCmd)
}
