package pkgver

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"
)

const pkgInfo = `Metadata-Version: 1.1
Name: widget
Version: 1.2.3.0rc1
Summary: A widget

A long description.
`

func TestReadPackageMetadata(t *testing.T) {
	t.Run("PKG-INFO", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, writeFile(fs, "PKG-INFO", pkgInfo))

		version, ok := ReadPackageMetadata(fs, "widget")
		require.True(t, ok)
		require.Equal(t, "1.2.3.0rc1", version)
	})

	t.Run("METADATA", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, writeFile(fs, "METADATA", "Metadata-Version: 2.1\nName: widget\nVersion: 2.0.0\n\n"))

		version, ok := ReadPackageMetadata(fs, "widget")
		require.True(t, ok)
		require.Equal(t, "2.0.0", version)
	})

	t.Run("Other package", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, writeFile(fs, "PKG-INFO", pkgInfo))

		_, ok := ReadPackageMetadata(fs, "gadget")
		require.False(t, ok)
	})

	t.Run("Other package in PKG-INFO, match in METADATA", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, writeFile(fs, "PKG-INFO", pkgInfo))
		require.NoError(t, writeFile(fs, "METADATA", "Name: gadget\nVersion: 0.3.0\n\n"))

		version, ok := ReadPackageMetadata(fs, "gadget")
		require.True(t, ok)
		require.Equal(t, "0.3.0", version)
	})

	t.Run("No metadata", func(t *testing.T) {
		_, ok := ReadPackageMetadata(memfs.New(), "widget")
		require.False(t, ok)
	})

	t.Run("Malformed file", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, writeFile(fs, "PKG-INFO", "this is not a header block"))

		_, ok := ReadPackageMetadata(fs, "widget")
		require.False(t, ok)
	})
}
