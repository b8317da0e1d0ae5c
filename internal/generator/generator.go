package generator

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/utils"
)

// DefaultLanguage is the only output language the generator emits
const DefaultLanguage = "go"

// SupportedLanguages lists the accepted values of Options.Language
var SupportedLanguages = []string{DefaultLanguage}

// Options controls a generation run
type Options struct {
	Language       string // output language, defaults to DefaultLanguage
	FailOnConflict bool   // a conflicting member fails its whole target
	Concurrency    int    // targets processed at once, defaults to GOMAXPROCS
	Logger         *zap.SugaredLogger
}

// TargetOutcome is the result for a single target
type TargetOutcome struct {
	Target     models.TargetID
	Name       string
	Descriptor *models.GeneratedTypeDescriptor // nil for a no-op or a failed target
	NoOp       bool
	Skipped    []models.SkipRecord
	Err        error
}

// Result is the outcome of a generation run, one entry per target in
// symbol table order
type Result struct {
	Outcomes []TargetOutcome
}

// Descriptors returns the produced descriptors in target order
func (r *Result) Descriptors() []*models.GeneratedTypeDescriptor {
	var out []*models.GeneratedTypeDescriptor
	for _, o := range r.Outcomes {
		if o.Descriptor != nil {
			out = append(out, o.Descriptor)
		}
	}
	return out
}

// Err joins the per-target failures, or returns nil
func (r *Result) Err() error {
	errs := errors.NewMultipleErrors()
	for _, o := range r.Outcomes {
		if o.Err == nil {
			continue
		}
		if typed, ok := o.Err.(errors.AutoImplError); ok {
			errs.Add(typed)
			continue
		}
		errs.Add(errors.WrapGenerateError("descriptor", o.Name, o.Err))
	}
	return errs.ErrOrNil()
}

// Generator turns a symbol table into generated type descriptors
type Generator struct {
	opts Options
	log  *zap.SugaredLogger
}

// NewGenerator creates a generator with defaults filled in
func NewGenerator(opts Options) *Generator {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("generator")
	}
	return &Generator{opts: opts, log: log}
}

// Options returns the effective options
func (g *Generator) Options() Options {
	return g.opts
}

// Generate runs the pipeline for every target in the table. Only an
// unsupported language or a cancelled context fails the run; per-target
// failures are reported on the Result.
func (g *Generator) Generate(ctx context.Context, table *models.SymbolTable) (*Result, error) {
	if err := g.checkLanguage(); err != nil {
		return nil, err
	}

	started := time.Now()
	targets := table.Targets()
	result := &Result{Outcomes: make([]TargetOutcome, len(targets))}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.opts.Concurrency)

	for i, id := range targets {
		if err := gctx.Err(); err != nil {
			break
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Outcomes[i] = g.GenerateTarget(table, id)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(errors.GenerationErrorCode, "generation cancelled", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.GenerationErrorCode, "generation cancelled", err)
	}

	claimOutputs(table, result)

	produced := len(result.Descriptors())
	g.log.Debugw("generation finished",
		logger.FieldCount, produced,
		"targets", len(targets),
		logger.FieldDurationMS, time.Since(started).Milliseconds(),
	)
	return result, nil
}

// GenerateTarget runs aggregate, resolve, synthesize and assemble for one
// target
func (g *Generator) GenerateTarget(table *models.SymbolTable, id models.TargetID) TargetOutcome {
	target := table.Target(id)
	outcome := TargetOutcome{Target: id, Name: target.Name}
	log := logger.ChildLogger(g.log, logger.FieldTarget, target.Name)

	aggregated := Aggregate(table, target)
	resolved, skipped := Resolve(table, aggregated)

	if g.opts.FailOnConflict {
		if conflict := firstConflict(skipped); conflict != nil {
			outcome.Skipped = skipped
			outcome.Err = conflictError(target, *conflict)
			log.Warnw("target failed on conflicting member",
				logger.FieldMember, conflict.Member,
				logger.FieldContract, conflict.Contract,
			)
			return outcome
		}
	}

	imports := NewImportSet(target.Package)
	properties, unusable := Synthesize(table, target, resolved, imports)
	skipped = append(skipped, unusable...)
	skipped = append(skipped, Unlisted(table, target, aggregated)...)
	outcome.Skipped = skipped

	for _, s := range skipped {
		log.Debugw("member skipped",
			logger.FieldMember, s.Member,
			logger.FieldContract, s.Contract,
			logger.FieldReason, s.Reason,
		)
	}

	desc, ok := Assemble(table, target, aggregated, properties, skipped, imports)
	if !ok {
		outcome.NoOp = true
		log.Debugw("nothing to generate")
		return outcome
	}

	outcome.Descriptor = desc
	log.Debugw("descriptor assembled",
		logger.FieldCount, len(desc.Properties),
		"base_contracts", len(desc.BaseContracts),
	)
	return outcome
}

func (g *Generator) checkLanguage() error {
	for _, lang := range SupportedLanguages {
		if g.opts.Language == lang {
			return nil
		}
	}
	return errors.NewUnsupportedLanguageError(g.opts.Language, SupportedLanguages...)
}

// claimOutputs fails every target whose file or extension type was already
// claimed by an earlier target in the same package. Earlier targets keep
// their output.
func claimOutputs(table *models.SymbolTable, result *Result) {
	owners := make(map[string]string)
	for i := range result.Outcomes {
		outcome := &result.Outcomes[i]
		desc := outcome.Descriptor
		if desc == nil {
			continue
		}
		place := desc.Dir
		if place == "" {
			place = desc.Package
		}
		outputs := []string{
			utils.GeneratedFileName(desc.TypeName),
			desc.ExtensionType,
		}
		for _, output := range outputs {
			if other, taken := owners[place+"\x00"+output]; taken {
				target := table.Target(outcome.Target)
				err := errors.NewCollisionError(outcome.Name, other, output)
				if !target.Location.IsEmpty() {
					err.WithLocation(target.Location)
				}
				outcome.Descriptor = nil
				outcome.Err = err
				break
			}
		}
		if outcome.Err != nil {
			continue
		}
		for _, output := range outputs {
			owners[place+"\x00"+output] = outcome.Name
		}
	}
}

func firstConflict(skipped []models.SkipRecord) *models.SkipRecord {
	for i := range skipped {
		if skipped[i].Kind == models.SkipConflict {
			return &skipped[i]
		}
	}
	return nil
}

func conflictError(target *models.TargetType, rec models.SkipRecord) *errors.ConflictError {
	err := errors.NewConflictError(target.Name, rec.Member,
		[]string{rec.Shadowed, rec.Contract}, rec.Types)
	if !target.Location.IsEmpty() {
		err.WithLocation(target.Location)
	}
	return err
}
