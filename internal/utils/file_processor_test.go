package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedBody = GeneratedHeader + "\n\npackage shop\n"

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestGeneratedFileName(t *testing.T) {
	assert.Equal(t, "autogen_iab_impl_impl.go", GeneratedFileName("IABImpl"))
	assert.Equal(t, "autogen_order_impl.go", GeneratedFileName("Order"))
	assert.True(t, IsGeneratedFileName("autogen_order_impl.go"))
	assert.False(t, IsGeneratedFileName("autogen_module.go"))
	assert.False(t, IsGeneratedFileName("order_impl.go"))
}

func TestHasGeneratedHeader(t *testing.T) {
	assert.True(t, HasGeneratedHeader([]byte(generatedBody)))
	assert.True(t, HasGeneratedHeader([]byte(GeneratedHeader+"\r\npackage shop\n")))
	assert.False(t, HasGeneratedHeader([]byte("package shop\n")))
	assert.False(t, HasGeneratedHeader([]byte("// Code generated by other. DO NOT EDIT.\n")))
}

func TestFileProcessor_DefaultFilters(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":               "package main",
		"main_test.go":          "package main",
		"autogen_order_impl.go": generatedBody,
		"service.go":            "package main",
		"README.md":             "# README",
	})

	files, err := NewFileProcessor().WalkFiles(dir, FileWalkOptions{FileFilter: DefaultGoFileFilter()})
	require.NoError(t, err)

	var names []string
	for _, file := range files {
		names = append(names, filepath.Base(file))
	}
	assert.ElementsMatch(t, []string{"main.go", "service.go"}, names)
}

func TestFileProcessor_ScanDirectoriesWithGoFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":                      "module example.com/shop\n",
		"shop.go":                     "package shop",
		"domain/order.go":             "package domain",
		"domain/autogen_x_impl.go":    generatedBody,
		"only_tests/a_test.go":        "package only",
		"vendor/dep/dep.go":           "package dep",
		"testdata/fixture.go":         "package fixture",
		".hidden/h.go":                "package hidden",
		"_scratch/s.go":               "package scratch",
		"generated/autogen_y_impl.go": generatedBody,
	})

	dirs, err := NewFileProcessor().ScanDirectoriesWithGoFiles([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "domain")}, dirs)
}

func TestFileProcessor_GeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"autogen_order_impl.go": generatedBody,
		"autogen_hand_impl.go":  "package shop\n",
		"order.go":              "package shop\n",
	})

	files, err := NewFileProcessor().GeneratedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "autogen_order_impl.go")}, files)

	missing, err := NewFileProcessor().GeneratedFiles(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"autogen_order_impl.go":          generatedBody,
		"domain/autogen_invoice_impl.go": generatedBody,
		"domain/autogen_manual_impl.go":  "package domain\n",
		"domain/invoice.go":              "package domain\n",
	})

	removed, err := NewFileProcessor().CleanDirectories([]string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "autogen_order_impl.go"),
		filepath.Join(root, "domain", "autogen_invoice_impl.go"),
	}, removed)

	assert.FileExists(t, filepath.Join(root, "domain", "autogen_manual_impl.go"), "files without the header are kept")
	assert.FileExists(t, filepath.Join(root, "domain", "invoice.go"))
}

func TestFileProcessor_WriteIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autogen_order_impl.go")
	fp := NewFileProcessor()

	written, err := fp.WriteIfChanged(path, []byte(generatedBody))
	require.NoError(t, err)
	assert.True(t, written)

	written, err = fp.WriteIfChanged(path, []byte(generatedBody))
	require.NoError(t, err)
	assert.False(t, written, "identical content is not rewritten")

	written, err = fp.WriteIfChanged(path, []byte(generatedBody+"\n// more\n"))
	require.NoError(t, err)
	assert.True(t, written)
}
