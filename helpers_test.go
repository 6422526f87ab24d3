package pkgver

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepo is an in-memory git repository with helpers to build history
type testRepo struct {
	t       *testing.T
	repo    *git.Repository
	commits int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	return &testRepo{t: t, repo: repo}
}

// commit adds a file and commits it. An empty message gets a generated one.
func (r *testRepo) commit(message string) plumbing.Hash {
	r.t.Helper()
	return r.commitWithParents(message)
}

// commitWithParents is commit with explicit parents, for building branches
// and merges. No parents means the current HEAD.
func (r *testRepo) commitWithParents(message string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	workTree, err := r.repo.Worktree()
	require.NoError(r.t, err)

	r.commits++
	filename := fmt.Sprintf("file_%d.txt", r.commits)
	require.NoError(r.t, writeFile(workTree.Filesystem, filename, fmt.Sprintf("content %d", r.commits)))

	_, err = workTree.Add(filename)
	require.NoError(r.t, err)

	if message == "" {
		message = fmt.Sprintf("Commit %d", r.commits)
	}
	hash, err := workTree.Commit(message, &git.CommitOptions{
		Author:  testSignature,
		Parents: parents,
	})
	require.NoError(r.t, err)
	return hash
}

// tag creates a lightweight tag at HEAD
func (r *testRepo) tag(name string) {
	r.t.Helper()
	head, err := r.repo.Head()
	require.NoError(r.t, err)
	_, err = r.repo.CreateTag(name, head.Hash(), nil)
	require.NoError(r.t, err)
}

// annotatedTag creates an annotated tag at HEAD
func (r *testRepo) annotatedTag(name string) {
	r.t.Helper()
	head, err := r.repo.Head()
	require.NoError(r.t, err)
	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  testSignature,
		Message: "Release " + name,
	})
	require.NoError(r.t, err)
}

func (r *testRepo) vcs() *GitRepository {
	return NewGitRepository(r.repo, "", nil, "")
}

// version resolves the repository at HEAD
func (r *testRepo) version(target string) (SemanticVersion, error) {
	return NewResolver(r.vcs(), nil).Resolve(target)
}

func (r *testRepo) headShortHash() string {
	r.t.Helper()
	head, err := r.repo.Head()
	require.NoError(r.t, err)
	return head.Hash().String()[:7]
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
