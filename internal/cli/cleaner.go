package cli

import (
	"os"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner *DirectoryScanner
	files   *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		scanner: NewDirectoryScanner(),
		files:   utils.NewFileProcessor(),
	}
}

// CleanGeneratedFiles removes every generated file the directory patterns
// select and returns the removed paths. Files named like generated output
// but lacking the generated header are kept.
func (c *Cleaner) CleanGeneratedFiles(baseDir string, patterns []string) ([]string, error) {
	recursive, single, err := c.scanner.ScanRoots(baseDir, patterns)
	if err != nil {
		return nil, err
	}

	removed, err := c.files.CleanDirectories(recursive)
	if err != nil {
		return removed, err
	}

	for _, dir := range single {
		files, err := c.files.GeneratedFiles(dir)
		if err != nil {
			return removed, err
		}
		more, err := removeFiles(files)
		removed = append(removed, more...)
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// removeFiles deletes paths, stopping at the first failure
func removeFiles(paths []string) ([]string, error) {
	var removed []string
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, errors.WrapFileSystemError("remove", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
