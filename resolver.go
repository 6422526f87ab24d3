package pkgver

import (
	"fmt"

	"go.uber.org/zap"
)

// Resolver computes the version of a checkout from its tags and the Sem-Ver
// directives in the commit messages since the last tag.
type Resolver struct {
	vcs    VCS
	logger *zap.Logger
}

// NewResolver creates a Resolver reading from vcs.
func NewResolver(vcs VCS, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{vcs: vcs, logger: logger}
}

// Resolve returns the version for HEAD. A tagged HEAD yields its tag.
// Otherwise the last tagged version is incremented as the commit messages
// demand and turned into a dev snapshot counting the commits since the tag.
//
// target, when not empty, is the version the project declares it is working
// towards. It replaces the computed version if higher; if the commit history
// requires more than target, Resolve fails with ErrTargetVersionTooLow.
func (r *Resolver) Resolve(target string) (SemanticVersion, error) {
	var targetVersion *SemanticVersion
	if target != "" {
		v, err := Parse(target)
		if err != nil {
			return SemanticVersion{}, fmt.Errorf("parsing target version: %w", err)
		}
		targetVersion = &v
	}

	headTags, err := r.vcs.TagsAtHead()
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("listing tags at HEAD: %w", err)
	}
	if tagged, _, ok := r.highest(headTags); ok && (targetVersion == nil || targetVersion.Equal(tagged)) {
		r.logger.Debug("HEAD is tagged", zap.Stringer("version", tagged))
		return tagged, nil
	}

	tags, distance, err := r.vcs.NearestTaggedAncestor(r.isVersionTag)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("finding last tag: %w", err)
	}

	baseline, tag, _ := r.highest(tags)
	r.logger.Debug("last tagged version",
		zap.String("tag", tag),
		zap.Stringer("version", baseline),
		zap.Int("distance", distance))

	if distance == 0 {
		return baseline, nil
	}

	messages, err := r.vcs.CommitMessages(tag)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("reading commit messages: %w", err)
	}

	directives := ParseDirectives(messages)
	for _, symbol := range directives.Unknown {
		r.logger.Info("unknown Sem-Ver symbol", zap.String("symbol", symbol))
	}

	next := baseline.Increment(directives.Bump)

	hash, err := r.vcs.HeadShortHash()
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("reading HEAD hash: %w", err)
	}
	dev := next.ToDev(distance, hash)

	if targetVersion == nil {
		return dev, nil
	}

	c, err := next.Compare(*targetVersion)
	if err != nil {
		return SemanticVersion{}, fmt.Errorf("comparing with target version: %w", err)
	}
	if c > 0 {
		return SemanticVersion{}, fmt.Errorf("%w: history needs %s, but target version is %s",
			ErrTargetVersionTooLow, next, targetVersion)
	}

	targetDev := targetVersion.ToDev(distance, hash)
	if c, err := targetDev.Compare(dev); err == nil && c > 0 {
		return targetDev, nil
	}
	return dev, nil
}

func (r *Resolver) isVersionTag(tag string) bool {
	_, err := Parse(tag)
	if err != nil {
		r.logger.Debug("ignoring tag", zap.String("tag", tag), zap.Error(err))
		return false
	}
	return true
}

// highest returns the highest version among tags that parse, with its tag.
func (r *Resolver) highest(tags []string) (SemanticVersion, string, bool) {
	var (
		best    SemanticVersion
		bestTag string
		found   bool
	)

	for _, tag := range tags {
		v, err := Parse(tag)
		if err != nil {
			continue
		}
		if !found {
			best, bestTag, found = v, tag, true
			continue
		}
		if c, err := v.Compare(best); err == nil && c > 0 {
			best, bestTag = v, tag
		}
	}

	return best, bestTag, found
}
