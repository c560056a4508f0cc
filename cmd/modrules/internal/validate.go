package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check a catalog for authoring errors",
	Long: `Validate loads a catalog and reports every authoring error: misaligned or
empty ranges, uncovered generations, ambiguous overlaps and inconsistent
fragments. Without an argument the configured catalog is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		catalogFile = args[0]
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	det := cat.Detector()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d generations, %d variants, %d flags\n",
		cat.Module(), det.Len(), len(cat.Variants()), len(cat.Registry().Flags()))
	for _, b := range det.Boundaries() {
		line := fmt.Sprintf("  %-10s >= %-8s", b.Tag, b.Min)
		if v, err := cat.Select(b.Tag); err == nil {
			line += " " + v.ID
		} else {
			line += " (no variant)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
