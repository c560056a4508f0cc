package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/catalog"
	"github.com/goplus/modrules/internal/emit"
	"github.com/goplus/modrules/internal/flags"
	"github.com/goplus/modrules/internal/resolve"
)

var (
	resolveKind      string
	resolveFlags     []string
	resolveFormat    string
	resolveModuleDir string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [module@]version",
	Short: "Resolve the build descriptor for a host version",
	Long: `Resolve detects the host generation of version, selects the matching
variant of the catalog and prints the resolved build descriptor.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveKind, "kind", "k", descriptor.Runtime.String(), "Build kind: Runtime, Editor or Program")
	resolveCmd.Flags().StringArrayVarP(&resolveFlags, "flag", "f", nil, "Feature flag as name=value (repeatable); a bare name means true")
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "o", emit.FormatJSON, "Output format: "+strings.Join(emit.Formats, ", "))
	resolveCmd.Flags().StringVar(&resolveModuleDir, "module-dir", "", "Directory substituted for "+emit.ModuleDirVar+" in include paths")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	modName, version := parseModuleArg(args[0])
	if version == "" {
		return fmt.Errorf("missing host version in %q", args[0])
	}
	kind, err := descriptor.ParseBuildKind(resolveKind)
	if err != nil {
		return err
	}
	set, err := flags.ParseSet(resolveFlags)
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	if err := checkModule(cat, modName); err != nil {
		return err
	}

	r, err := resolve.New(cat).Resolve(descriptor.HostEnvironment{Version: version, Kind: kind}, set)
	if err != nil {
		return fmt.Errorf("failed to resolve %s@%s (%s): %w", cat.Module(), version, kind, err)
	}
	var opts []emit.Option
	if resolveModuleDir != "" {
		opts = append(opts, emit.WithModuleDir(resolveModuleDir))
	}
	ext, err := emit.Emit(r, opts...)
	if err != nil {
		return err
	}
	return emit.Render(cmd.OutOrStdout(), resolveFormat, cat.Module(), ext)
}

// parseModuleArg splits "module@version". Without "@" the whole argument is
// the version.
func parseModuleArg(arg string) (modName, version string) {
	for i := len(arg) - 1; i >= 0; i-- {
		if arg[i] == '@' {
			return arg[:i], arg[i+1:]
		}
	}
	return "", arg
}

func checkModule(cat *catalog.Catalog, modName string) error {
	if modName != "" && modName != cat.Module() {
		return fmt.Errorf("catalog describes module %s, not %s", cat.Module(), modName)
	}
	return nil
}
