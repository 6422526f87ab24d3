package pkgver

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Source names where a looked up version came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceMetadata Source = "metadata"
	SourceGit      Source = "git"
	SourceCache    Source = "cache"
)

// Lookup finds a project's version from, in order: an explicit override,
// packaged metadata, git history and the version cache.
type Lookup struct {
	// FS is the project root holding metadata and cache files. Nil skips both.
	FS billy.Filesystem

	// PackageName must match the Name header of packaged metadata.
	PackageName string

	// Override, when set, is returned without consulting anything else.
	Override string

	// CacheFile is the version cache read when git is unavailable.
	CacheFile string

	// WriteCache stores versions computed from git in CacheFile.
	WriteCache bool

	// Options configures the git calculation. A nil Repository skips it.
	Options Options
}

// Version returns the first version found and its source. Errors from git
// history, such as ErrTargetVersionTooLow, are returned rather than masked
// by the cache.
func (l Lookup) Version() (SemanticVersion, Source, error) {
	logger := l.Options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if l.Override != "" {
		v, err := Parse(l.Override)
		if err != nil {
			return SemanticVersion{}, SourceOverride, fmt.Errorf("parsing version override: %w", err)
		}
		return v, SourceOverride, nil
	}

	if l.FS != nil && l.PackageName != "" {
		if raw, ok := ReadPackageMetadata(l.FS, l.PackageName); ok {
			v, err := Parse(raw)
			if err == nil {
				return v, SourceMetadata, nil
			}
			logger.Warn("ignoring packaged metadata version", zap.String("version", raw), zap.Error(err))
		}
	}

	if l.Options.Repository != nil {
		v, err := Resolve(l.Options)
		if err != nil {
			return SemanticVersion{}, SourceGit, err
		}
		if l.WriteCache && l.FS != nil && l.CacheFile != "" {
			if err := WriteVersionInfo(l.FS, l.CacheFile, v); err != nil {
				return SemanticVersion{}, SourceGit, err
			}
		}
		return v, SourceGit, nil
	}

	if l.FS != nil && l.CacheFile != "" {
		v, err := ReadVersionInfo(l.FS, l.CacheFile)
		switch {
		case err == nil:
			logger.Debug("using cached version", zap.String("file", l.CacheFile), zap.Stringer("version", v))
			return v, SourceCache, nil
		case !errors.Is(err, fs.ErrNotExist):
			logger.Warn("ignoring version cache", zap.String("file", l.CacheFile), zap.Error(err))
		}
	}

	return SemanticVersion{}, "", ErrNoVersion
}
