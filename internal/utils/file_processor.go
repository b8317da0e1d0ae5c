package utils

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/autoimpl/internal/errors"
)

const (
	// GeneratedPrefix starts the name of every generated file
	GeneratedPrefix = "autogen_"
	// GeneratedSuffix ends the name of every generated file
	GeneratedSuffix = "_impl.go"
	// GeneratedHeader is the first line of every generated file
	GeneratedHeader = "// Code generated by autoimpl. DO NOT EDIT."
)

// GeneratedFileName returns the file a target type's extension is written to
func GeneratedFileName(typeName string) string {
	return GeneratedPrefix + SnakeCase(typeName) + GeneratedSuffix
}

// IsGeneratedFileName reports whether name follows the generated file naming
func IsGeneratedFileName(name string) bool {
	return strings.HasPrefix(name, GeneratedPrefix) && strings.HasSuffix(name, GeneratedSuffix)
}

// HasGeneratedHeader reports whether content was written by this tool
func HasGeneratedHeader(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	return string(bytes.TrimRight(line, "\r")) == GeneratedHeader
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// DefaultGoFileFilter matches hand-written Go sources: no tests, nothing generated
func DefaultGoFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!IsGeneratedFileName(name)
	}
}

// GeneratedFileFilter matches files named like generated output
func GeneratedFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && IsGeneratedFileName(info.Name())
	}
}

// DefaultDirectoryFilter skips directories that never hold package sources
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		if strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// FileProcessor walks source trees and manages generated files
type FileProcessor struct {
	dirFilter DirectoryFilter
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{dirFilter: DefaultDirectoryFilter()}
}

// WalkFiles walks through files in a directory tree with filtering
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matched []string

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matched = append(matched, path)
		}
		return nil
	})
	if err != nil {
		return matched, errors.WrapFileSystemError("walk", rootDir, err)
	}
	return matched, nil
}

// ScanDirectoriesWithGoFiles returns every directory under rootDirs that
// holds hand-written Go sources, sorted
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	seen := make(map[string]bool)
	goFile := DefaultGoFileFilter()

	for _, root := range rootDirs {
		files, err := fp.WalkFiles(root, FileWalkOptions{
			FileFilter:      goFile,
			DirectoryFilter: fp.dirFilter,
		})
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			seen[filepath.Dir(file)] = true
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// GeneratedFiles lists the files in dir that this tool wrote. A file named
// like generated output without the header is left alone.
func (fp *FileProcessor) GeneratedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsGeneratedFileName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("read", path, err)
		}
		if HasGeneratedHeader(content) {
			files = append(files, path)
		}
	}
	return files, nil
}

// CleanDirectories removes generated files from every directory under
// baseDirs and returns what was removed
func (fp *FileProcessor) CleanDirectories(baseDirs []string) ([]string, error) {
	var removed []string

	for _, base := range baseDirs {
		if base == "" {
			base = "."
		}
		candidates, err := fp.WalkFiles(base, FileWalkOptions{
			FileFilter:      GeneratedFileFilter(),
			DirectoryFilter: fp.dirFilter,
			SkipErrors:      true,
		})
		if err != nil {
			return removed, err
		}

		for _, path := range candidates {
			content, err := os.ReadFile(path)
			if err != nil {
				return removed, errors.WrapFileSystemError("read", path, err)
			}
			if !HasGeneratedHeader(content) {
				continue
			}
			if err := os.Remove(path); err != nil {
				return removed, errors.WrapFileSystemError("remove", path, err)
			}
			removed = append(removed, path)
		}
	}

	return removed, nil
}

// WriteIfChanged writes content to path unless the file already holds
// exactly that content. It reports whether the file was written.
func (fp *FileProcessor) WriteIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, errors.WrapFileSystemError("read", path, err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, errors.WrapFileSystemError("write", path, err)
	}
	return true, nil
}
