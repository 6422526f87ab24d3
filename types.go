package pkgver

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Formats contains one rendering of a version per packaging ecosystem
type Formats struct {
	SemVer     string `json:"semver"`
	Python     string `json:"python"`
	JavaScript string `json:"javascript"`
	DotNet     string `json:"dotnet"`
	Go         string `json:"go"`
	Debian     string `json:"debian"`
	RPM        string `json:"rpm"`
	Brief      string `json:"brief"`
}

// Options configures version calculation behavior
type Options struct {
	// Repository is the Git repository to analyze
	Repository *git.Repository

	// Commitish specifies which commit to analyze (default: "HEAD")
	Commitish plumbing.Revision

	// TargetVersion is the version the project is working towards. Empty
	// means it is inferred from the last tag and the commit messages.
	TargetVersion string

	// TagFilter allows filtering which tags to consider
	TagFilter func(string) bool

	// TagPattern is a regex pattern to filter tags (alternative to TagFilter)
	TagPattern string

	// TagPrefix is stripped from tag names before parsing them as versions.
	// Tags without the prefix are ignored.
	TagPrefix string

	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// VCS is the read-only view of a version control repository the Resolver
// needs. GitRepository implements it on top of go-git.
type VCS interface {
	// TagsAtHead returns the tags pointing exactly at HEAD.
	TagsAtHead() ([]string, error)

	// NearestTaggedAncestor walks history from HEAD and returns the accepted
	// tags of the first commit carrying any, with its distance from HEAD.
	// When no commit qualifies it returns no tags and the number of commits.
	NearestTaggedAncestor(accept func(tag string) bool) ([]string, int, error)

	// CommitMessages returns the full messages of the commits after the
	// commit tagged since, up to and including HEAD. An empty since means
	// the whole history.
	CommitMessages(since string) ([]string, error)

	// HeadShortHash returns the abbreviated hash of HEAD.
	HeadShortHash() (string, error)
}
