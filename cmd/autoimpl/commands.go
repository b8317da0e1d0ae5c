package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/autoimpl/internal/cli"
)

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Write the extension files for every target",
		Long: `Load the packages selected by the patterns, collect contracts and targets,
and write one autogen_<type>_impl.go per target. Files of targets that no
longer exist are removed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd)
		},
	}
}

func (a *app) generate(cmd *cobra.Command) error {
	a.diagnostics.Header("generate")

	gen, err := cli.NewGenerator(*a.cfg, a.diagnostics)
	if err != nil {
		return a.fail(err)
	}
	gen.WithReporter(a.reporter)

	summary, err := gen.Run(cmd.Context())
	if err != nil {
		if summary.RunID != "" {
			a.diagnostics.Summary("Generation finished with errors", summary.Stats())
		}
		return a.fail(err)
	}

	a.diagnostics.Summary("Generation complete", summary.Stats())
	if a.cfg.Verbose && len(summary.GeneratedFiles) > 0 {
		a.diagnostics.PhaseHeader("Generated files")
		for _, file := range summary.GeneratedFiles {
			a.diagnostics.List("%s", file)
		}
	}
	return nil
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [patterns...]",
		Short: "Print the generated type descriptors as YAML",
		Long: `Run collection and generation without writing anything and print one
descriptor per target to stdout. Progress goes to stderr.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the YAML only
			a.diagnostics.SetOutput(a.errOut, a.errOut)

			gen, err := cli.NewGenerator(*a.cfg, a.diagnostics)
			if err != nil {
				return a.fail(err)
			}
			gen.WithReporter(a.reporter)

			if err := gen.Describe(cmd.Context(), cmd.OutOrStdout()); err != nil {
				return a.fail(err)
			}
			return nil
		},
	}
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [patterns...]",
		Short: "Remove generated files",
		Long: `Delete every autogen_*_impl.go carrying the generated header in the
directories the patterns select. Hand-written files with matching names are
left alone.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.diagnostics.Header("clean")

			removed, err := cli.NewCleaner().CleanGeneratedFiles(a.cfg.Dir, a.cfg.Patterns)
			for _, path := range removed {
				a.diagnostics.List("removed %s", path)
			}
			if err != nil {
				return a.fail(err)
			}
			a.diagnostics.Success("%d generated files removed", len(removed))
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Regenerate whenever sources change",
		Long: `Generate once, then watch the loaded package directories and regenerate
after Go sources change. Failed runs are reported and watching continues.
Stop with Ctrl+C.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx)
		},
	}
}

func (a *app) watch(ctx context.Context) error {
	a.diagnostics.Header("watch")

	gen, err := cli.NewGenerator(*a.cfg, a.diagnostics)
	if err != nil {
		return a.fail(err)
	}
	gen.WithReporter(a.reporter)

	w, err := cli.NewWatcher(gen, a.reporter, a.diagnostics, a.cfg.Debounce)
	if err != nil {
		return a.fail(err)
	}
	w.WithFallbackDirs(gen.SourceDirs()...)
	if err := w.Run(ctx); err != nil {
		return a.fail(err)
	}
	a.diagnostics.Info("Stopped watching")
	return nil
}
