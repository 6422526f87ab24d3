package pkgver

import (
	"fmt"
	"regexp"
)

// Calculate determines version strings for multiple packaging ecosystems
// based on Git repository state and tags
func Calculate(opts Options) (*Formats, error) {
	v, err := Resolve(opts)
	if err != nil {
		return nil, err
	}
	return NewFormats(v), nil
}

// Resolve computes the version of opts.Repository at opts.Commitish.
func Resolve(opts Options) (SemanticVersion, error) {
	vcs, err := newGitRepositoryFromOptions(opts)
	if err != nil {
		return SemanticVersion{}, err
	}

	v, err := NewResolver(vcs, opts.Logger).Resolve(opts.TargetVersion)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("calculating version: %w", err)
	}
	return v, nil
}

func newGitRepositoryFromOptions(opts Options) (*GitRepository, error) {
	if opts.Repository == nil {
		return nil, fmt.Errorf("repository is required: %w", ErrNoRepository)
	}

	// Apply tag pattern filter if specified
	if opts.TagPattern != "" && opts.TagFilter == nil {
		re, err := regexp.Compile(opts.TagPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid tag pattern: %w", err)
		}
		opts.TagFilter = func(tag string) bool {
			return re.MatchString(tag)
		}
	}

	return NewGitRepository(opts.Repository, opts.Commitish, opts.TagFilter, opts.TagPrefix), nil
}

// CalculateFromString parses an existing version string and converts it
// to the different packaging formats
func CalculateFromString(version string) (*Formats, error) {
	v, err := Parse(version)
	if err != nil {
		return nil, fmt.Errorf("converting version: %w", err)
	}
	return NewFormats(v), nil
}

// NewFormats renders v for every supported ecosystem.
func NewFormats(v SemanticVersion) *Formats {
	generic := v.Semver().String()

	return &Formats{
		SemVer:     generic,
		Python:     v.ReleaseString(),
		JavaScript: "v" + generic,
		DotNet:     generic,
		Go:         "v" + generic,
		Debian:     v.DebianString(),
		RPM:        v.RPMString(),
		Brief:      v.BriefString(),
	}
}
