// Package autoimpl exposes the implementation generator as a library, for
// tools that want descriptors or rendered sources without the command line.
//
// A run has four steps: Load type-checks packages, Collect builds the symbol
// table of contracts and targets, Generate turns every target into a
// descriptor and Render produces the Go source of one descriptor.
package autoimpl

import (
	"context"
	"io"

	"github.com/toyz/autoimpl/internal/cli"
	"github.com/toyz/autoimpl/internal/config"
	"github.com/toyz/autoimpl/internal/generator"
	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/parser"
	"github.com/toyz/autoimpl/internal/templates"
)

type (
	// Package is a type-checked package
	Package = parser.Package
	// SymbolTable holds the contracts, members and targets of one load
	SymbolTable = models.SymbolTable
	// Descriptor describes the extension type generated for one target
	Descriptor = models.GeneratedTypeDescriptor
	// Result carries one outcome per target
	Result = generator.Result
	// Summary describes a completed run that wrote files
	Summary = cli.GenerationSummary
)

// Options controls generation
type Options struct {
	Language       string   // output language, "go" when empty
	FailOnConflict bool     // a conflicting member fails its target
	Concurrency    int      // targets processed at once, one per CPU when 0
	Tags           []string // build tags used by Load and Run
}

// Load type-checks the packages matching patterns, resolved in dir
func Load(ctx context.Context, dir string, tags []string, patterns ...string) ([]*Package, error) {
	return parser.NewLoader().Load(ctx, parser.LoadOptions{
		Dir:      dir,
		Patterns: patterns,
		Tags:     tags,
	})
}

// Collect builds the symbol table of the loaded packages
func Collect(pkgs []*Package) *SymbolTable {
	return parser.NewParser().Collect(pkgs)
}

// CollectSource type-checks a single in-memory file as its own package and
// collects its symbols
func CollectSource(filename, source string) (*SymbolTable, error) {
	return parser.NewParser().ParseSource(filename, source)
}

// Generate produces a descriptor for every target in table. Per-target
// failures are on the result; see Result.Err.
func Generate(ctx context.Context, table *SymbolTable, opts Options) (*Result, error) {
	return generator.NewGenerator(generator.Options{
		Language:       opts.Language,
		FailOnConflict: opts.FailOnConflict,
		Concurrency:    opts.Concurrency,
	}).Generate(ctx, table)
}

// Render returns the formatted Go source for desc
func Render(desc *Descriptor) ([]byte, error) {
	renderer, err := templates.NewRenderer(nil)
	if err != nil {
		return nil, err
	}
	return renderer.Render(desc)
}

// FileName is the name of the file Render output is written to
func FileName(desc *Descriptor) string {
	return templates.FileName(desc)
}

// Run loads, generates and writes the extension files for the packages
// matching patterns in dir, the way the generate command does
func Run(ctx context.Context, dir string, opts Options, patterns ...string) (Summary, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	language := opts.Language
	if language == "" {
		language = generator.DefaultLanguage
	}

	gen, err := cli.NewGenerator(config.Config{
		Language:       language,
		Dir:            dir,
		Patterns:       patterns,
		Tags:           opts.Tags,
		FailOnConflict: opts.FailOnConflict,
		Concurrency:    opts.Concurrency,
		Quiet:          true,
	}, nil)
	if err != nil {
		return Summary{}, err
	}
	gen.WithReporter(cli.NewDiagnosticReporter(false).SetOutput(io.Discard))
	return gen.Run(ctx)
}
