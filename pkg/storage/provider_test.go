package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootMapper_MapPath(t *testing.T) {
	m := RootMapper{Root: "/srv/app"}

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "home", path: "~", expected: "/srv/app"},
		{name: "default base", path: BasePath, expected: "/srv/app/App_Data"},
		{name: "absolute", path: "/var/data/", expected: "/var/data"},
		{name: "relative", path: "data/items", expected: "/srv/app/data/items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.expected), m.MapPath(tt.path))
		})
	}
}

func TestNewProvider(t *testing.T) {
	root := t.TempDir()

	var asked string
	p, err := NewProvider(MapperFunc(func(path string) string {
		asked = path
		return RootMapper{Root: root}.MapPath(path)
	}))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, BasePath, asked)
	assert.Equal(t, filepath.Join(root, "App_Data"), p.Base())

	h1 := p.Item(item("a.txt"))
	h2 := p.Item(item("b.txt"))
	assert.Equal(t, filepath.Join(root, "App_Data", "a.txt"), h1.Path())
	assert.NotEqual(t, h1.Path(), h2.Path())
	assert.Equal(t, 2, p.Registry().Len())
}

func TestNewProvider_Options(t *testing.T) {
	root := t.TempDir()

	p, err := NewProvider(RootMapper{Root: root}, WithBasePath("~/items"), WithLogger(lg), WithBufferSize(4), WithBasePath(""))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, filepath.Join(root, "items"), p.Base())
	assert.Equal(t, int32(4), p.Registry().bufferSize)
}

func TestNewProvider_RelativeBase(t *testing.T) {
	p, err := NewProvider(MapperFunc(func(string) string { return "relative/base" }))
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, filepath.IsAbs(p.Base()))
}

func TestNewProvider_NilMapper(t *testing.T) {
	_, err := NewProvider(nil)
	assert.ErrorIs(t, err, ErrNoMapper)
}
