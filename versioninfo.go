package pkgver

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// DefaultVersionInfoFile is the conventional name of the version cache.
const DefaultVersionInfoFile = "versioninfo"

// ReadVersionInfo reads a version cache file written by WriteVersionInfo.
// The cache may be stale; callers should prefer live git data.
func ReadVersionInfo(fs billy.Filesystem, name string) (SemanticVersion, error) {
	f, err := fs.Open(name)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("opening version cache: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("reading version cache %s: %w", name, err)
	}

	v, err := Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("version cache %s: %w", name, err)
	}
	return v, nil
}

// WriteVersionInfo stores v's release string in name.
func WriteVersionInfo(fs billy.Filesystem, name string, v SemanticVersion) error {
	if err := util.WriteFile(fs, name, []byte(v.ReleaseString()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing version cache %s: %w", name, err)
	}
	return nil
}
