package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/autoimpl/internal/utils"
)

func TestModuleResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, map[string]string{
		"go.mod":                   "module github.com/example/shop\n\ngo 1.22\n",
		"internal/domain/order.go": "package domain\n",
	})
	resolver := NewModuleResolver()

	info, err := resolver.Resolve(filepath.Join(root, "internal", "domain"))
	require.NoError(t, err)
	assert.Equal(t, "github.com/example/shop", info.Path)
	assert.Equal(t, root, info.Root)

	_, err = resolver.Resolve(t.TempDir())
	assert.Error(t, err, "no go.mod above a fresh temp dir")
}

func TestModuleResolver_BuildPackagePath(t *testing.T) {
	root := t.TempDir()
	module := &utils.ModuleInfo{Path: "github.com/example/shop", Root: root}
	resolver := NewModuleResolver()

	tests := []struct {
		name    string
		dir     string
		want    string
		wantErr bool
	}{
		{name: "module root", dir: root, want: "github.com/example/shop"},
		{name: "nested package", dir: filepath.Join(root, "internal", "domain"), want: "github.com/example/shop/internal/domain"},
		{name: "outside the module", dir: filepath.Dir(root), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.BuildPackagePath(module, tt.dir)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModuleResolver_DisplayPath(t *testing.T) {
	root := t.TempDir()
	module := &utils.ModuleInfo{Path: "github.com/example/shop", Root: root}
	resolver := NewModuleResolver()

	inside := filepath.Join(root, "domain", "autogen_order_impl.go")
	outside := filepath.Join(os.TempDir(), "elsewhere.go")

	assert.Equal(t, filepath.Join("domain", "autogen_order_impl.go"), resolver.DisplayPath(module, inside))
	assert.Equal(t, outside, resolver.DisplayPath(module, outside))
	assert.Equal(t, inside, resolver.DisplayPath(nil, inside))
}
