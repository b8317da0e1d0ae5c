package parser

import (
	"context"

	"github.com/toyz/autoimpl/internal/models"
)

// PackageLoader loads type-checked packages for the parser
type PackageLoader interface {
	Load(ctx context.Context, opts LoadOptions) ([]*Package, error)
}

// SymbolCollector builds the symbol table of a set of loaded packages
type SymbolCollector interface {
	Collect(pkgs []*Package) *models.SymbolTable
}

var (
	_ PackageLoader   = (*Loader)(nil)
	_ SymbolCollector = (*Parser)(nil)
)
