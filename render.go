package pkgver

import (
	"fmt"
	"strconv"

	"github.com/blang/semver"
)

// String returns the release string.
func (v SemanticVersion) String() string {
	return v.ReleaseString()
}

// BriefString returns only the release triple.
func (v SemanticVersion) BriefString() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// ReleaseString returns the PEP 440 style string understood by pip, e.g.
// 1.2.3, 1.2.3.0rc1 or 1.2.3.dev4.g1a2b3c4.
func (v SemanticVersion) ReleaseString() string {
	return v.BriefString() + v.suffix(".0", ".dev", ".g")
}

// DebianString returns a string that sorts correctly under dpkg, where ~
// sorts before anything else: 1.2.3~rc1, 1.2.3~dev4+g1a2b3c4.
func (v SemanticVersion) DebianString() string {
	return v.BriefString() + v.suffix("~", "~dev", "+g")
}

// RPMString returns a string that sorts correctly under rpm. RPM has no
// equivalent of ~, so non-releases are rendered against the preceding
// release: 1.2.0rc1 becomes 1.1.9999.rc1.
func (v SemanticVersion) RPMString() string {
	if v.IsRelease() {
		return v.BriefString()
	}
	return v.Decrement().BriefString() + v.suffix(".", ".dev", "+g")
}

func (v SemanticVersion) suffix(preSep, devSep, hashSep string) string {
	switch {
	case v.IsPreRelease():
		return fmt.Sprintf("%s%s%d", preSep, v.preType, v.pre)
	case v.dev:
		s := devSep + strconv.Itoa(v.devCount)
		if v.githash != "" {
			s += hashSep + v.githash
		}
		return s
	}
	return ""
}

var semverPreNames = map[PreReleaseType]string{
	Alpha:     "alpha",
	Beta:      "beta",
	Candidate: "rc",
}

// Semver returns v as a SemVer 2.0 version: 1.2.3-rc.1, 1.2.3-dev.4+g1a2b3c4.
func (v SemanticVersion) Semver() semver.Version {
	sv := semver.Version{
		Major: uint64(v.major),
		Minor: uint64(v.minor),
		Patch: uint64(v.patch),
	}

	switch {
	case v.IsPreRelease():
		sv.Pre = []semver.PRVersion{
			{VersionStr: semverPreNames[v.preType]},
			{VersionNum: uint64(v.pre), IsNum: true},
		}
	case v.dev:
		sv.Pre = []semver.PRVersion{
			{VersionStr: "dev"},
			{VersionNum: uint64(v.devCount), IsNum: true},
		}
		if v.githash != "" {
			sv.Build = []string{"g" + v.githash}
		}
	}

	return sv
}
