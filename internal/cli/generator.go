package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/toyz/autoimpl/internal/config"
	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/generator"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/parser"
	"github.com/toyz/autoimpl/internal/templates"
	"github.com/toyz/autoimpl/internal/utils"
)

// GenerationSummary describes the outcome of one run
type GenerationSummary struct {
	RunID             string
	Module            string
	PackagesProcessed int
	ContractsFound    int
	TargetsFound      int
	GeneratedFiles    []string // written this run
	UnchangedFiles    []string
	RemovedFiles      []string // stale output of targets that no longer exist
	NoOpTargets       int
	SkippedMembers    int
	FailedTargets     int
	Dirs              []string // package directories that were loaded
	Duration          time.Duration
}

// Stats returns the figures printed at the end of a run
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Packages processed": s.PackagesProcessed,
		"Contracts found":    s.ContractsFound,
		"Targets found":      s.TargetsFound,
		"Files written":      len(s.GeneratedFiles),
		"Files unchanged":    len(s.UnchangedFiles),
		"Files removed":      len(s.RemovedFiles),
		"Members skipped":    s.SkippedMembers,
		"Targets failed":     s.FailedTargets,
	}
}

// Plan is what a run would produce, before anything is written
type Plan struct {
	RunID    string
	Packages []*parser.Package
	Table    *models.SymbolTable
	Result   *generator.Result
}

// Generator coordinates the CLI generation process: load, collect,
// generate, render and write
type Generator struct {
	cfg            config.Config
	loader         parser.PackageLoader
	parser         *parser.Parser
	codeGenerator  *generator.Generator
	renderer       *templates.Renderer
	files          *utils.FileProcessor
	moduleResolver *ModuleResolver
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	log            *zap.SugaredLogger
	fingerprints   *utils.Cache[string, string] // descriptor key to the fingerprint last written
	summary        GenerationSummary
}

// NewGenerator creates a CLI generator for cfg
func NewGenerator(cfg config.Config, diagnostics *utils.DiagnosticSystem) (*Generator, error) {
	renderer, err := templates.NewRenderer(nil)
	if err != nil {
		return nil, err
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.LevelFor(cfg.Quiet, cfg.Verbose))
	}

	return &Generator{
		cfg:    cfg,
		loader: parser.NewLoader(),
		parser: parser.NewParser(),
		codeGenerator: generator.NewGenerator(generator.Options{
			Language:       cfg.Language,
			FailOnConflict: cfg.FailOnConflict,
			Concurrency:    cfg.Concurrency,
			Logger:         logger.ComponentLogger("generator"),
		}),
		renderer:       renderer,
		files:          utils.NewFileProcessor(),
		moduleResolver: NewModuleResolver(),
		reporter:       NewDiagnosticReporter(cfg.Verbose),
		diagnostics:    diagnostics,
		log:            logger.ComponentLogger("cli"),
		fingerprints:   utils.NewCache[string, string](),
	}, nil
}

// WithLoader replaces the package loader
func (g *Generator) WithLoader(loader parser.PackageLoader) *Generator {
	g.loader = loader
	return g
}

// WithReporter replaces the diagnostic reporter
func (g *Generator) WithReporter(reporter *DiagnosticReporter) *Generator {
	g.reporter = reporter
	return g
}

// Reporter returns the reporter warnings and errors go through
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last completed run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// SourceDirs returns the existing directories the configured patterns name,
// or the working directory when none can be found. It does not load
// packages, so it works while the sources do not compile.
func (g *Generator) SourceDirs() []string {
	var dirs []string
	if scanned, err := NewDirectoryScanner().ScanDirectories(g.cfg.Dir, g.cfg.Patterns); err == nil {
		for _, dir := range scanned {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				dirs = append(dirs, dir)
			}
		}
	}
	if len(dirs) > 0 {
		return dirs
	}
	base, err := filepath.Abs(g.cfg.Dir)
	if err != nil {
		base = g.cfg.Dir
	}
	return []string{base}
}

// Plan loads, collects and generates without touching the file system
func (g *Generator) Plan(ctx context.Context) (*Plan, error) {
	runID := uuid.NewString()
	log := logger.ChildLogger(g.log, logger.FieldRunID, runID)

	g.diagnostics.PhaseHeader("Loading packages")
	g.diagnostics.Debug("Patterns %v in %s", g.cfg.Patterns, g.cfg.Dir)
	pkgs, err := g.loader.Load(ctx, parser.LoadOptions{
		Dir:      g.cfg.Dir,
		Patterns: g.cfg.Patterns,
		Tags:     g.cfg.Tags,
	})
	if err != nil {
		log.Errorw("load failed", logger.FieldError, err, logger.FieldErrorCode, errors.CodeOf(err).String())
		return nil, err
	}
	g.diagnostics.PhaseItem("%d packages loaded", len(pkgs))

	// type errors are expected until the extension structs exist
	for _, pkg := range pkgs {
		for _, issue := range pkg.Issues {
			g.diagnostics.Verbose("%s: %s", issue.Location.String(), issue.Message)
		}
	}

	g.diagnostics.PhaseHeader("Collecting")
	table := g.parser.Collect(pkgs)
	for _, issue := range table.Issues() {
		g.reporter.ReportIssue(issue)
	}
	g.diagnostics.PhaseItem("%d contracts, %d targets", table.NumContracts(), table.NumTargets())

	result, err := g.codeGenerator.Generate(ctx, table)
	if err != nil {
		log.Errorw("generation failed", logger.FieldError, err, logger.FieldErrorCode, errors.CodeOf(err).String())
		return nil, err
	}

	log.Debugw("plan ready",
		"packages", len(pkgs),
		"targets", table.NumTargets(),
		logger.FieldCount, len(result.Descriptors()),
	)
	return &Plan{RunID: runID, Packages: pkgs, Table: table, Result: result}, nil
}

// Run executes the complete generation process. Per-target failures are
// returned joined after every other target has been written.
func (g *Generator) Run(ctx context.Context) (GenerationSummary, error) {
	started := time.Now()

	plan, err := g.Plan(ctx)
	if err != nil {
		return GenerationSummary{}, err
	}
	log := logger.ChildLogger(g.log, logger.FieldRunID, plan.RunID)

	summary := GenerationSummary{
		RunID:             plan.RunID,
		PackagesProcessed: len(plan.Packages),
		ContractsFound:    plan.Table.NumContracts(),
		TargetsFound:      plan.Table.NumTargets(),
		Dirs:              parser.Dirs(plan.Packages),
	}
	module, err := g.moduleResolver.Resolve(g.cfg.Dir)
	if err == nil {
		summary.Module = module.Path
	}

	g.diagnostics.PhaseHeader("Writing")
	keep := make(map[string]bool)
	live := make(map[string]bool)

	for _, outcome := range plan.Result.Outcomes {
		target := plan.Table.Target(outcome.Target)
		for _, rec := range outcome.Skipped {
			g.reporter.ReportSkip(outcome.Name, rec)
			if rec.Member != "" {
				summary.SkippedMembers++
			}
		}

		switch {
		case outcome.Err != nil:
			// the last good file of a failed target stays
			summary.FailedTargets++
			keep[filepath.Join(target.Dir, utils.GeneratedFileName(target.TypeName))] = true

		case outcome.NoOp:
			summary.NoOpTargets++
			if target.EmbedsExtension {
				g.reporter.ReportWarning(fmt.Sprintf("%s embeds %s but needs nothing generated; remove the embed",
					target.Name, generator.ExtensionTypeName(target.TypeName)))
			}

		case outcome.Descriptor != nil:
			desc := outcome.Descriptor
			path, written, err := g.emit(desc)
			if err != nil {
				log.Errorw("write failed", logger.FieldTarget, desc.Target, logger.FieldError, err)
				return summary, err
			}
			keep[path] = true
			live[desc.Key] = true

			display := g.moduleResolver.DisplayPath(module, path)
			if written {
				summary.GeneratedFiles = append(summary.GeneratedFiles, path)
				g.diagnostics.PhaseItem("%s", display)
			} else {
				summary.UnchangedFiles = append(summary.UnchangedFiles, path)
				g.diagnostics.Verbose("%s unchanged", display)
			}
		}
	}
	g.fingerprints.Retain(func(key string) bool { return live[key] })

	removed, err := g.pruneStale(summary.Dirs, keep)
	summary.RemovedFiles = removed
	if err != nil {
		return summary, err
	}
	for _, path := range removed {
		g.diagnostics.List("removed %s", g.moduleResolver.DisplayPath(module, path))
	}

	summary.Duration = time.Since(started)
	g.summary = summary

	log.Infow("run finished",
		logger.FieldCount, len(summary.GeneratedFiles),
		"unchanged", len(summary.UnchangedFiles),
		"removed", len(summary.RemovedFiles),
		"failed", summary.FailedTargets,
		logger.FieldDurationMS, summary.Duration.Milliseconds(),
	)
	return summary, plan.Result.Err()
}

// Describe writes the descriptors of a run as YAML instead of rendering
// them
func (g *Generator) Describe(ctx context.Context, w io.Writer) error {
	plan, err := g.Plan(ctx)
	if err != nil {
		return err
	}

	descriptors := plan.Result.Descriptors()
	if descriptors == nil {
		descriptors = []*models.GeneratedTypeDescriptor{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(descriptors); err != nil {
		return errors.WrapGenerateError("descriptor", "yaml", err).WithStage("describe")
	}
	if err := enc.Close(); err != nil {
		return errors.WrapGenerateError("descriptor", "yaml", err).WithStage("describe")
	}
	return plan.Result.Err()
}

// emit renders and writes one descriptor. A descriptor whose fingerprint
// matches the last one written is not rendered again while its file exists.
func (g *Generator) emit(desc *models.GeneratedTypeDescriptor) (string, bool, error) {
	if desc.Dir == "" {
		return "", false, errors.NewGenerationError(fmt.Sprintf("no output directory for %s", desc.Target)).WithStage("write")
	}
	path := filepath.Join(desc.Dir, templates.FileName(desc))

	fingerprint, err := desc.Fingerprint()
	if err != nil {
		return path, false, errors.WrapGenerateError("fingerprint", desc.Target, err)
	}
	if !g.fingerprints.Changed(desc.Key, fingerprint) && fileExists(path) {
		return path, false, nil
	}

	content, err := g.renderer.Render(desc)
	if err != nil {
		g.fingerprints.Delete(desc.Key)
		return path, false, err
	}
	written, err := g.files.WriteIfChanged(path, content)
	if err != nil {
		g.fingerprints.Delete(desc.Key)
		return path, false, err
	}
	return path, written, nil
}

// pruneStale removes generated files in dirs that this run did not produce
func (g *Generator) pruneStale(dirs []string, keep map[string]bool) ([]string, error) {
	var stale []string
	for _, dir := range dirs {
		files, err := g.files.GeneratedFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if !keep[file] {
				stale = append(stale, file)
			}
		}
	}
	return removeFiles(stale)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
