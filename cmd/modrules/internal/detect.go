package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect [module@]version",
	Short: "Show the host generation and candidate variants of a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	modName, version := parseModuleArg(args[0])
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	if err := checkModule(cat, modName); err != nil {
		return err
	}

	gen, err := cat.Detector().Detect(version)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "generation: %s (from %s)\n", gen.Tag, gen.Min)
	cands := cat.Candidates(gen.Tag)
	if len(cands) == 0 {
		fmt.Fprintln(out, "variants:   none")
		return nil
	}
	for i, v := range cands {
		mark := " "
		if i == 0 {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s %s\n", mark, v.ID, v.Range)
	}
	return nil
}
