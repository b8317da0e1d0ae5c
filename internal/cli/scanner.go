package cli

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/utils"
)

// DirectoryScanner resolves directory patterns to package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// ScanRoots splits Go-style directory patterns into recursive roots
// ("./..." and "dir/...") and single directories, all made absolute
// against baseDir
func (s *DirectoryScanner) ScanRoots(baseDir string, patterns []string) (recursive, single []string, err error) {
	for _, pattern := range patterns {
		dir, deep := strings.CutSuffix(filepath.ToSlash(pattern), "/...")
		if pattern == "..." {
			dir, deep = ".", true
		}
		if dir == "" {
			dir = "."
		}

		path := filepath.FromSlash(dir)
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, nil, errors.WrapPatternError(pattern, err)
		}

		if deep {
			recursive = append(recursive, abs)
		} else {
			single = append(single, abs)
		}
	}
	return recursive, single, nil
}

// ScanDirectories returns every directory the patterns select that holds
// Go sources, sorted
func (s *DirectoryScanner) ScanDirectories(baseDir string, patterns []string) ([]string, error) {
	recursive, single, err := s.ScanRoots(baseDir, patterns)
	if err != nil {
		return nil, err
	}

	dirs, err := s.fileProcessor.ScanDirectoriesWithGoFiles(recursive)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		seen[dir] = true
	}
	for _, dir := range single {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
