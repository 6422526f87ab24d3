package pkgver

import "errors"

var (
	// ErrInvalidVersion is returned for version strings or field combinations
	// that do not describe a valid version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrAmbiguousOrdering is returned when comparing a dev snapshot against a
	// prerelease of the same release, or two dev snapshots that only differ by
	// git hash.
	ErrAmbiguousOrdering = errors.New("ambiguous version ordering")

	// ErrTargetVersionTooLow is returned when a declared target version is
	// lower than the version the commit history requires.
	ErrTargetVersionTooLow = errors.New("git history requires a higher target version")

	// ErrNoRepository signals that no git metadata is available.
	ErrNoRepository = errors.New("no git repository")

	// ErrNoVersion is returned when no source could provide a version.
	ErrNoVersion = errors.New("no version information available")
)
