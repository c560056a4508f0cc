package internal

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/goplus/modrules/internal/catalog"
	"github.com/goplus/modrules/internal/env"
	"github.com/goplus/modrules/internal/logging"
)

var (
	catalogFile string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "modrules",
	Short: "modrules resolves version-conditioned module build descriptors",
	Long: `modrules picks the descriptor variant of a native module that matches a
host version, merges it with the shared base and the feature flags, and
prints the include paths, dependencies and definitions to build with.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&catalogFile, "catalog", "", "Catalog file (.hcl, .json, .yaml); defaults to $"+env.CatalogVar+" or the embedded ImGui catalog")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default $"+env.LogLevelVar+" or "+env.DefaultLogLevel+")")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json (default $"+env.LogFormatVar+" or "+env.DefaultLogFormat+")")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = env.LogLevel()
	}
	format := logFormat
	if format == "" {
		format = env.LogFormat()
	}
	logger, err := logging.New(level, format, cmd.ErrOrStderr(), !isTerminal(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// loadCatalog loads the catalog named by --catalog, the environment or the
// embedded default, in that order.
func loadCatalog() (*catalog.Catalog, error) {
	file := catalogFile
	if file == "" {
		var err error
		if file, err = env.Catalog(); err != nil {
			return nil, fmt.Errorf("failed to locate catalog: %w", err)
		}
	}
	if file == "" {
		slog.Debug("using embedded catalog", "file", catalog.DefaultFile)
		return catalog.Default()
	}
	slog.Debug("loading catalog", "file", file)
	return catalog.Load(file)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
