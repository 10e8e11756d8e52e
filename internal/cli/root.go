// Package cli implements the dynapi command: it loads a type manifest,
// materializes it and inspects, serves or generates code for the result.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/config"
	"github.com/toyz/dynapi/internal/logging"
	"github.com/toyz/dynapi/internal/manifest"
	"github.com/toyz/dynapi/internal/utils"
	"github.com/toyz/dynapi/pkg/dynapi"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// options are the persistent flags shared by every subcommand
type options struct {
	dir      string
	manifest string
	verbose  bool
	quiet    bool
}

// env is what a subcommand runs with once settings are loaded
type env struct {
	cfg    *config.Config
	diag   *utils.DiagnosticSystem
	logger *zap.Logger
	flush  func()
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "dynapi",
		Short: "Materialize endpoint types from a manifest",
		Long: color.CyanString(`dynapi - runtime endpoint types

dynapi reads a YAML manifest of endpoint types, materializes each one and
forwards every method call to a single dispatcher. Use it to check a
manifest, serve it on echo, gin or fiber, or render typed Go wrappers.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "directory holding dynapi.yaml and .env")
	flags.StringVarP(&opts.manifest, "manifest", "m", "", "manifest file, overriding the manifest setting")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output and debug logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors and final results")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newInspectCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newGenerateCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "dynapi version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		diag := utils.NewQuietDiagnostics()
		diag.SetOutput(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
		diag.ReportError(err)
		return err
	}
	return nil
}

func (o *options) diagnostics() *utils.DiagnosticSystem {
	switch {
	case o.quiet:
		return utils.NewQuietDiagnostics()
	case o.verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}

// load reads the settings under o.dir and builds the logger
func (o *options) load(cmd *cobra.Command) (*env, error) {
	diag := o.diagnostics()
	diag.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := config.Load(o.dir)
	if err != nil {
		return nil, err
	}
	if o.manifest != "" {
		path, err := filepath.Abs(o.manifest)
		if err != nil {
			return nil, err
		}
		cfg.Manifest = path
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	logger, flush, err := logging.New(
		logging.WithLevel(level),
		logging.WithEncoding(cfg.Log.Encoding),
		logging.WithFilename(cfg.Log.File),
		logging.WithService("dynapi"),
		logging.WithOutput(cmd.ErrOrStderr()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &env{cfg: cfg, diag: diag, logger: logger, flush: flush}, nil
}

func (e *env) close() {
	if e != nil && e.flush != nil {
		e.flush()
	}
}

// materialize loads the manifest and materializes every type in a new pool
func (e *env) materialize(ctx context.Context) (*manifest.Manifest, []*dynapi.TypeHandle, error) {
	e.diag.Verbose("Loading manifest %s", e.cfg.Manifest)
	m, err := manifest.NewLoader().Load(e.cfg.Manifest)
	if err != nil {
		return nil, nil, err
	}

	pool, err := dynapi.NewPool(
		dynapi.WithLogger(e.logger),
		dynapi.WithTypeCacheSize(e.cfg.Pool.TypeCacheSize),
	)
	if err != nil {
		return nil, nil, err
	}

	handles, err := m.Materialize(ctx, pool)
	if err != nil {
		return nil, nil, err
	}
	e.diag.Verbose("Materialized %d types", len(handles))
	return m, handles, nil
}
