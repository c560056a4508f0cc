package internal

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/matrix"
	"github.com/goplus/modrules/internal/resolve"
)

var (
	matrixVersions []string
	matrixKinds    []string
	matrixOptions  []string
	matrixWorkers  int
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Resolve every combination of versions, kinds and flag values",
	Long: `Matrix resolves the cartesian product of host versions, build kinds and
flag values concurrently and prints one row per target.`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().StringSliceVar(&matrixVersions, "versions", nil, "Host versions, comma separated")
	matrixCmd.Flags().StringSliceVar(&matrixKinds, "kinds", []string{descriptor.Runtime.String()}, "Build kinds, comma separated")
	matrixCmd.Flags().StringArrayVar(&matrixOptions, "option", nil, "Flag values as name=v1,v2 (repeatable)")
	matrixCmd.Flags().IntVarP(&matrixWorkers, "jobs", "j", 0, "Concurrent resolutions (0 means one per CPU)")
	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	m, err := parseMatrix(matrixVersions, matrixKinds, matrixOptions)
	if err != nil {
		return err
	}
	if len(m.Versions) == 0 {
		return fmt.Errorf("no host versions given, use --versions")
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	r := resolve.New(cat)
	outcomes := matrix.ResolveAll(m.Targets(), matrixWorkers, r.Resolve)

	table := tablewriter.NewTable(cmd.OutOrStdout(), tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header("Target", "Generation", "Variant", "Result")
	for _, o := range outcomes {
		if o.Err != nil {
			_ = table.Append([]string{o.Key, "", "", o.Err.Error()})
			continue
		}
		_ = table.Append([]string{o.Key, o.Resolved.Generation, o.Resolved.Variant, "ok"})
	}
	if err := table.Render(); err != nil {
		return err
	}
	if failed := matrix.Failed(outcomes); len(failed) > 0 {
		return fmt.Errorf("%d of %d targets failed to resolve", len(failed), len(outcomes))
	}
	return nil
}

func parseMatrix(versions, kinds, options []string) (*matrix.Matrix, error) {
	m := &matrix.Matrix{Versions: versions, Options: map[string][]string{}}
	for _, k := range kinds {
		kind, err := descriptor.ParseBuildKind(k)
		if err != nil {
			return nil, err
		}
		m.Kinds = append(m.Kinds, kind)
	}
	for _, opt := range options {
		name, values, ok := strings.Cut(opt, "=")
		if !ok || name == "" || values == "" {
			return nil, fmt.Errorf("invalid option %q: want name=v1,v2", opt)
		}
		m.Options[name] = append(m.Options[name], strings.Split(values, ",")...)
	}
	return m, nil
}
