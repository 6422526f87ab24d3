package pkgver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blang/semver"
)

var (
	componentRe  = regexp.MustCompile(`^[0-9A-Za-z]+$`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
	mixedRe      = regexp.MustCompile(`^([0-9]+)([A-Za-z][0-9A-Za-z]*)$`)
	preReleaseRe = regexp.MustCompile(`^0?(alpha|beta|rc|a|b|c)([0-9]*)$`)
	devRe        = regexp.MustCompile(`^dev([0-9]+)$`)
	hashRe       = regexp.MustCompile(`^g([0-9A-Za-z]+)$`)
)

var preReleaseNames = map[string]PreReleaseType{
	"a":     Alpha,
	"alpha": Alpha,
	"b":     Beta,
	"beta":  Beta,
	"c":     Candidate,
	"rc":    Candidate,
}

// Parse reads a version string as produced by ReleaseString, by pip, by git
// describe or by SemVer 2.0 tags. Missing trailing components are zero
// extended, so "1", "1.0" and "1.0.0" are the same version.
//
// Accepted suffixes are prereleases (1.2.3.0rc1, 1.2.0rc1, 2014.2.b2,
// 1.2.3-rc2), dev snapshots (1.2.3.dev4, 1.2.3.dev4.gabcdef0) and git describe
// output (1.2.3.4.gabcdef0, 1.2.3-4-gabcdef0). A git hash directly after the
// release (1.gabcdef0) is read as one commit past that release.
func Parse(s string) (SemanticVersion, error) {
	input := strings.TrimSpace(s)
	if len(input) > 1 && (input[0] == 'v' || input[0] == 'V') && isDigit(input[1]) {
		input = input[1:]
	}

	if strings.Contains(input, "-") {
		if v, err := parseSemver(input); err == nil {
			return v, nil
		}
		input = strings.ReplaceAll(input, "-", ".")
	}

	v, err := parseDotted(input)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("%w %q: %v", ErrInvalidVersion, s, err)
	}
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) SemanticVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseDotted(input string) (SemanticVersion, error) {
	if input == "" {
		return SemanticVersion{}, fmt.Errorf("empty version")
	}

	parts := strings.Split(input, ".")
	for _, p := range parts {
		if !componentRe.MatchString(p) {
			return SemanticVersion{}, fmt.Errorf("malformed component %q", p)
		}
	}

	var triple []int
	rest := parts
	for len(rest) > 0 && len(triple) < 3 && digitsRe.MatchString(rest[0]) {
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return SemanticVersion{}, err
		}
		triple = append(triple, n)
		rest = rest[1:]
	}
	if len(triple) == 0 {
		return SemanticVersion{}, fmt.Errorf("no numeric release component")
	}

	// 0.1a2 and 1.2.0rc1: the last release component runs into the prerelease.
	if len(triple) < 3 && len(rest) > 0 {
		if m := mixedRe.FindStringSubmatch(rest[0]); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return SemanticVersion{}, err
			}
			triple = append(triple, n)
			rest = append([]string{m[2]}, rest[1:]...)
		}
	}
	for len(triple) < 3 {
		triple = append(triple, 0)
	}

	var opts []Option
	if len(rest) > 0 {
		opt, remaining, err := parseSuffix(rest)
		if err != nil {
			return SemanticVersion{}, err
		}
		if len(remaining) > 0 {
			return SemanticVersion{}, fmt.Errorf("unexpected trailing %q", strings.Join(remaining, "."))
		}
		opts = append(opts, opt)
	}

	return New(triple[0], triple[1], triple[2], opts...)
}

func parseSuffix(tokens []string) (Option, []string, error) {
	tok, rest := tokens[0], tokens[1:]

	switch {
	case digitsRe.MatchString(tok):
		distance, err := strconv.Atoi(tok)
		if err != nil {
			return nil, nil, err
		}
		if distance == 0 {
			return nil, nil, fmt.Errorf("zero commit distance")
		}
		hash, rest := takeHash(rest)
		return WithDev(distance, hash), rest, nil

	case devRe.MatchString(tok):
		count, err := strconv.Atoi(devRe.FindStringSubmatch(tok)[1])
		if err != nil {
			return nil, nil, err
		}
		hash, rest := takeHash(rest)
		return WithDev(count, hash), rest, nil

	case hashRe.MatchString(tok):
		return WithDev(1, hashRe.FindStringSubmatch(tok)[1]), rest, nil

	case preReleaseRe.MatchString(tok):
		opt, err := preReleaseOption(tok)
		return opt, rest, err
	}

	return nil, nil, fmt.Errorf("unknown suffix %q", tok)
}

func takeHash(tokens []string) (string, []string) {
	if len(tokens) > 0 {
		if m := hashRe.FindStringSubmatch(tokens[0]); m != nil {
			return m[1], tokens[1:]
		}
	}
	return "", tokens
}

func preReleaseOption(tok string) (Option, error) {
	m := preReleaseRe.FindStringSubmatch(tok)
	if m == nil {
		return nil, fmt.Errorf("unknown prerelease %q", tok)
	}
	serial := 0
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, err
		}
		serial = n
	}
	return WithPreRelease(preReleaseNames[m[1]], serial), nil
}

// parseSemver handles SemVer 2.0 prereleases such as 1.2.3-rc2, 1.2.3-rc.2
// and 1.2.3-dev.4+gabcdef0.
func parseSemver(input string) (SemanticVersion, error) {
	sv, err := semver.Parse(input)
	if err != nil {
		return SemanticVersion{}, err
	}

	major, minor, patch := int(sv.Major), int(sv.Minor), int(sv.Patch)

	var tok string
	switch {
	case len(sv.Pre) == 1 && !sv.Pre[0].IsNum:
		tok = sv.Pre[0].VersionStr
	case len(sv.Pre) == 2 && !sv.Pre[0].IsNum && sv.Pre[1].IsNum && !strings.ContainsAny(sv.Pre[0].VersionStr, "0123456789"):
		tok = sv.Pre[0].VersionStr + strconv.FormatUint(sv.Pre[1].VersionNum, 10)
	default:
		return SemanticVersion{}, fmt.Errorf("unsupported prerelease %v", sv.Pre)
	}

	if m := devRe.FindStringSubmatch(tok); m != nil {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return SemanticVersion{}, err
		}
		hash := ""
		if len(sv.Build) > 0 {
			h, rest := takeHash(sv.Build)
			if h == "" || len(rest) > 0 {
				return SemanticVersion{}, fmt.Errorf("unsupported build metadata %v", sv.Build)
			}
			hash = h
		}
		return New(major, minor, patch, WithDev(count, hash))
	}

	if len(sv.Build) > 0 {
		return SemanticVersion{}, fmt.Errorf("unsupported build metadata %v", sv.Build)
	}
	opt, err := preReleaseOption(tok)
	if err != nil {
		return SemanticVersion{}, err
	}
	return New(major, minor, patch, opt)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
