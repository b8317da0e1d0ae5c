package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toyz/autoimpl/internal/cli"
	"github.com/toyz/autoimpl/internal/config"
	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/utils"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// reportedError marks an error the diagnostic reporter already printed
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// app is the state shared by the commands of one invocation
type app struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config

	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
	out         io.Writer
	errOut      io.Writer
}

// execute runs the command line and returns the process exit code
func execute(args []string, out, errOut io.Writer) int {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)
	defer logger.Cleanup()

	if err := root.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "autoimpl",
		Short: "Generate property implementations for annotated Go interfaces",
		Long: `autoimpl - implementation generator for Go contracts.

Interfaces marked //autoimpl::contract declare accessors. Structs marked
//autoimpl::target get an autogen_<type>_impl.go file holding an embeddable
extension struct that implements every accessor their contracts declare.

Available commands:
  generate - Write the extension files (the default)
  describe - Print the generated type descriptors as YAML
  clean    - Remove generated files
  watch    - Regenerate whenever sources change

Examples:
  autoimpl ./...                      # Generate for every package
  autoimpl generate ./internal/...    # Generate below internal
  autoimpl describe ./models          # Show what would be generated
  autoimpl --fail-on-conflict ./...   # Treat member conflicts as errors
  autoimpl watch ./...                # Regenerate on save`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default .autoimpl.yaml in --dir or the module root)")
	flags.StringP("dir", "C", ".", "directory patterns are resolved in")
	flags.String("language", "go", "output language")
	flags.StringSlice("tags", nil, "build tags used when loading packages")
	flags.Bool("fail-on-conflict", false, "fail a target when two contracts declare a member with different types")
	flags.Int("concurrency", 0, "targets generated at once (0 means one per CPU)")
	flags.Duration("debounce", cli.DefaultDebounce, "how long watch waits for changes to settle")
	flags.BoolP("verbose", "v", false, "show detailed progress and every skipped member")
	flags.BoolP("quiet", "q", false, "only show errors")
	flags.Bool("log-json", false, "write structured logs as JSON lines")
	flags.String("log-level", "warn", "structured log level (debug, info, warn, error)")

	root.AddCommand(
		a.generateCmd(),
		a.describeCmd(),
		a.cleanCmd(),
		a.watchCmd(),
	)
	return root
}

// setup loads configuration and initializes logging for every command
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.v = config.New()
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return a.fail(err)
	}

	cfg, err := config.Load(a.v, a.configFile, a.v.GetString("dir"))
	if err != nil {
		return a.fail(err)
	}
	if len(args) > 0 {
		cfg.Patterns = args
	}
	a.cfg = cfg

	if err := logger.Initialize(logger.Options{
		JSON:   cfg.LogJSON,
		Level:  cfg.EffectiveLogLevel(),
		Output: a.errOut,
	}); err != nil {
		return a.fail(errors.WrapConfigurationError("log_level", "apply", err))
	}

	a.diagnostics = utils.NewDiagnosticSystem(utils.LevelFor(cfg.Quiet, cfg.Verbose)).SetOutput(a.out, a.errOut)
	a.reporter = cli.NewDiagnosticReporter(cfg.Verbose).SetOutput(a.errOut)

	logger.Debugw("configuration loaded",
		"file", cfg.File,
		"dir", cfg.Dir,
		"patterns", cfg.Patterns,
		"language", cfg.Language,
	)
	return nil
}

// fail reports err and marks it as printed
func (a *app) fail(err error) error {
	reporter := a.reporter
	if reporter == nil {
		reporter = cli.NewDiagnosticReporter(false).SetOutput(a.errOut)
	}
	reporter.ReportError(err)
	return reportedError{err}
}
