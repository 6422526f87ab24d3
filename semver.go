// Package pkgver derives semantic versions for packaging from git history.
//
// A SemanticVersion is an immutable value that can be parsed from release,
// prerelease, dev and legacy git describe strings and rendered for pip, Debian
// and RPM consumers. The Resolver walks a repository's tags and commit
// messages to compute the version of the current checkout.
package pkgver

import "fmt"

// PreReleaseType identifies the kind of a prerelease.
type PreReleaseType string

const (
	// Final marks a version without prerelease markers.
	Final     PreReleaseType = ""
	Alpha     PreReleaseType = "a"
	Beta      PreReleaseType = "b"
	Candidate PreReleaseType = "rc"
)

func (t PreReleaseType) rank() int {
	switch t {
	case Alpha:
		return 0
	case Beta:
		return 1
	default:
		return 2
	}
}

func (t PreReleaseType) valid() bool {
	switch t {
	case Final, Alpha, Beta, Candidate:
		return true
	}
	return false
}

// SemanticVersion is an immutable version value. The zero value is 0.0.0.
type SemanticVersion struct {
	major, minor, patch int
	preType             PreReleaseType
	pre                 int
	dev                 bool
	devCount            int
	githash             string
}

// Zero is the 0.0.0 release used as the baseline for untagged repositories.
var Zero = SemanticVersion{}

// Option configures a SemanticVersion built with New.
type Option func(*SemanticVersion)

// WithPreRelease marks the version as a prerelease of the given type and serial.
func WithPreRelease(t PreReleaseType, serial int) Option {
	return func(v *SemanticVersion) {
		v.preType = t
		v.pre = serial
	}
}

// WithDev marks the version as a dev snapshot count commits past the last
// release. githash may be empty.
func WithDev(count int, githash string) Option {
	return func(v *SemanticVersion) {
		v.dev = true
		v.devCount = count
		v.githash = githash
	}
}

// New builds a SemanticVersion. A dev snapshot is always relative to the next
// final release, so combining a prerelease with a dev count is rejected.
func New(major, minor, patch int, opts ...Option) (SemanticVersion, error) {
	v := SemanticVersion{major: major, minor: minor, patch: patch}
	for _, opt := range opts {
		opt(&v)
	}

	switch {
	case major < 0 || minor < 0 || patch < 0:
		return SemanticVersion{}, fmt.Errorf("%w: negative component in %d.%d.%d", ErrInvalidVersion, major, minor, patch)
	case !v.preType.valid():
		return SemanticVersion{}, fmt.Errorf("%w: unknown prerelease type %q", ErrInvalidVersion, v.preType)
	case v.pre < 0 || v.devCount < 0:
		return SemanticVersion{}, fmt.Errorf("%w: negative prerelease or dev count", ErrInvalidVersion)
	case v.dev && v.devCount == 0:
		return SemanticVersion{}, fmt.Errorf("%w: dev snapshot needs at least one commit", ErrInvalidVersion)
	case v.preType != Final && v.dev:
		return SemanticVersion{}, fmt.Errorf("%w: prerelease %s%d cannot also be a dev snapshot", ErrInvalidVersion, v.preType, v.pre)
	case v.preType == Final && v.pre != 0:
		return SemanticVersion{}, fmt.Errorf("%w: prerelease serial without a prerelease type", ErrInvalidVersion)
	case !v.dev && v.githash != "":
		return SemanticVersion{}, fmt.Errorf("%w: git hash without a dev count", ErrInvalidVersion)
	}

	return v, nil
}

// MustNew is like New but panics on error.
func MustNew(major, minor, patch int, opts ...Option) SemanticVersion {
	v, err := New(major, minor, patch, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Major returns the major component.
func (v SemanticVersion) Major() int { return v.major }

// Minor returns the minor component.
func (v SemanticVersion) Minor() int { return v.minor }

// Patch returns the patch component.
func (v SemanticVersion) Patch() int { return v.patch }

// PreReleaseType returns the prerelease kind, Final for non-prereleases.
func (v SemanticVersion) PreReleaseType() PreReleaseType { return v.preType }

// PreRelease returns the prerelease serial.
func (v SemanticVersion) PreRelease() int { return v.pre }

// GitHash returns the abbreviated commit hash of a dev snapshot, if known.
func (v SemanticVersion) GitHash() string { return v.githash }

// DevCount returns the number of commits past the last release and whether
// the version is a dev snapshot at all.
func (v SemanticVersion) DevCount() (int, bool) { return v.devCount, v.dev }

// IsRelease reports whether v carries neither prerelease nor dev markers.
func (v SemanticVersion) IsRelease() bool { return v.preType == Final && !v.dev }

// IsPreRelease reports whether v is an alpha, beta or candidate.
func (v SemanticVersion) IsPreRelease() bool { return v.preType != Final }

// IsDev reports whether v is a dev snapshot.
func (v SemanticVersion) IsDev() bool { return v.dev }

// Equal reports whether all fields, githash included, match.
func (v SemanticVersion) Equal(o SemanticVersion) bool { return v == o }

// Compare returns -1, 0 or 1. Dev snapshots and prereleases of the same
// release are not ordered against each other and yield ErrAmbiguousOrdering,
// as do dev snapshots with the same count but different hashes.
func (v SemanticVersion) Compare(o SemanticVersion) (int, error) {
	if c := compareTriple(v, o); c != 0 {
		return c, nil
	}

	switch {
	case v.IsRelease() && o.IsRelease():
		return 0, nil
	case v.IsRelease():
		return 1, nil
	case o.IsRelease():
		return -1, nil
	case v.IsPreRelease() && o.IsPreRelease():
		if c := compareInt(v.preType.rank(), o.preType.rank()); c != 0 {
			return c, nil
		}
		return compareInt(v.pre, o.pre), nil
	case v.dev && o.dev:
		if c := compareInt(v.devCount, o.devCount); c != 0 {
			return c, nil
		}
		if v.githash != o.githash {
			return 0, fmt.Errorf("%w: %s and %s differ only by git hash", ErrAmbiguousOrdering, v, o)
		}
		return 0, nil
	}

	return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrAmbiguousOrdering, v, o)
}

// Less reports whether v sorts before o.
func (v SemanticVersion) Less(o SemanticVersion) (bool, error) {
	c, err := v.Compare(o)
	return c < 0, err
}

func compareTriple(v, o SemanticVersion) int {
	if c := compareInt(v.major, o.major); c != 0 {
		return c
	}
	if c := compareInt(v.minor, o.minor); c != 0 {
		return c
	}
	return compareInt(v.patch, o.patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Bump selects the level of an Increment. Major takes precedence over Minor,
// which takes precedence over the default patch level.
type Bump struct {
	Major bool
	Minor bool
	Patch bool
}

// Increment returns the next version for the requested level. Below the
// minor level, a prerelease only advances its serial and a dev snapshot
// becomes the release it was leading up to.
func (v SemanticVersion) Increment(b Bump) SemanticVersion {
	switch {
	case b.Major:
		return SemanticVersion{major: v.major + 1}
	case b.Minor:
		return SemanticVersion{major: v.major, minor: v.minor + 1}
	case v.IsPreRelease():
		next := v
		next.pre++
		return next
	case v.dev:
		return v.ToRelease()
	}
	return SemanticVersion{major: v.major, minor: v.minor, patch: v.patch + 1}
}

// Decrement returns the release immediately preceding v's release triple.
func (v SemanticVersion) Decrement() SemanticVersion {
	major, minor, patch := decrementTriple(v.major, v.minor, v.patch)
	return SemanticVersion{major: major, minor: minor, patch: patch}
}

// borrowCeiling replaces a component that had to borrow during Decrement.
const borrowCeiling = 9999

func decrementTriple(major, minor, patch int) (int, int, int) {
	if patch > 0 {
		return major, minor, patch - 1
	}
	if minor > 0 {
		return major, minor - 1, borrowCeiling
	}
	if major > 0 {
		return major - 1, borrowCeiling, borrowCeiling
	}
	return 0, borrowCeiling, borrowCeiling
}

// ToDev returns a dev snapshot of v's release triple, distance commits past
// the last tag. Prerelease markers are dropped.
func (v SemanticVersion) ToDev(distance int, githash string) SemanticVersion {
	return SemanticVersion{
		major:    v.major,
		minor:    v.minor,
		patch:    v.patch,
		dev:      true,
		devCount: distance,
		githash:  githash,
	}
}

// ToRelease strips prerelease and dev markers.
func (v SemanticVersion) ToRelease() SemanticVersion {
	return SemanticVersion{major: v.major, minor: v.minor, patch: v.patch}
}

// VersionTuple is the five element form used by Python's sys.version_info.
type VersionTuple struct {
	Major  int
	Minor  int
	Patch  int
	Kind   string
	Serial int
}

// VersionTuple returns v as a version_info style tuple. Dev snapshots use a
// zero based serial.
func (v SemanticVersion) VersionTuple() VersionTuple {
	t := VersionTuple{Major: v.major, Minor: v.minor, Patch: v.patch, Kind: "final"}
	switch {
	case v.dev:
		t.Kind = "dev"
		t.Serial = v.devCount - 1
	case v.preType == Alpha:
		t.Kind, t.Serial = "alpha", v.pre
	case v.preType == Beta:
		t.Kind, t.Serial = "beta", v.pre
	case v.preType == Candidate:
		t.Kind, t.Serial = "candidate", v.pre
	}
	return t
}
