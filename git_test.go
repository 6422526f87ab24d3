package pkgver

import (
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func TestTagsAtHead(t *testing.T) {
	t.Run("Lightweight and annotated tags", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.tag("1.2.3")
		repo.annotatedTag("v1.2.3")

		tags, err := repo.vcs().TagsAtHead()
		require.NoError(t, err)
		require.Equal(t, []string{"1.2.3", "v1.2.3"}, tags)
	})

	t.Run("Not an exact tag", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.tag("1.2.3")
		repo.commit("")

		tags, err := repo.vcs().TagsAtHead()
		require.NoError(t, err)
		require.Empty(t, tags)
	})

	t.Run("Filtered tags", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.tag("v1.0.0")
		repo.tag("mod/v0.0.1")

		// Test with filter that excludes tags with "/"
		noSlashFilter := func(tag string) bool {
			return !strings.Contains(tag, "/")
		}

		tags, err := NewGitRepository(repo.repo, "HEAD", noSlashFilter, "").TagsAtHead()
		require.NoError(t, err)
		require.Equal(t, []string{"v1.0.0"}, tags)
	})

	t.Run("Prefixed tags", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.tag("v1.0.0")
		repo.tag("sdk/v2.1.0")

		tags, err := NewGitRepository(repo.repo, "HEAD", nil, "sdk/v").TagsAtHead()
		require.NoError(t, err)
		require.Equal(t, []string{"2.1.0"}, tags)
	})
}

func TestNearestTaggedAncestor(t *testing.T) {
	t.Run("Repo with commits after tag", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.tag("1.0.0")
		repo.tag("2.0.0.0b1")
		repo.commit("")
		repo.commit("")

		tags, distance, err := repo.vcs().NearestTaggedAncestor(nil)
		require.NoError(t, err)
		require.Equal(t, []string{"1.0.0", "2.0.0.0b1"}, tags)
		require.Equal(t, 2, distance)
	})

	t.Run("Rejected tags are skipped", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.tag("1.0.0")
		repo.commit("")
		repo.tag("badver")

		onlyVersions := func(tag string) bool { return tag != "badver" }
		tags, distance, err := repo.vcs().NearestTaggedAncestor(onlyVersions)
		require.NoError(t, err)
		require.Equal(t, []string{"1.0.0"}, tags)
		require.Equal(t, 1, distance)
	})

	t.Run("Repo with no tags", func(t *testing.T) {
		repo := newTestRepo(t)
		for i := 0; i < 3; i++ {
			repo.commit("")
		}

		tags, distance, err := repo.vcs().NearestTaggedAncestor(nil)
		require.NoError(t, err)
		require.Empty(t, tags)
		require.Equal(t, 3, distance)
	})

	t.Run("Tagged HEAD", func(t *testing.T) {
		repo := newTestRepo(t)
		repo.commit("")
		repo.annotatedTag("1.0.0")

		tags, distance, err := repo.vcs().NearestTaggedAncestor(nil)
		require.NoError(t, err)
		require.Equal(t, []string{"1.0.0"}, tags)
		require.Zero(t, distance)
	})
}

func TestCommitMessages(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("first")
	repo.tag("1.0.0")
	repo.commit("second")
	repo.commit("third")

	t.Run("Since tag", func(t *testing.T) {
		messages, err := repo.vcs().CommitMessages("1.0.0")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Contains(t, messages[0], "third")
		require.Contains(t, messages[1], "second")
	})

	t.Run("Whole history", func(t *testing.T) {
		messages, err := repo.vcs().CommitMessages("")
		require.NoError(t, err)
		require.Len(t, messages, 3)
	})

	t.Run("Unknown tag", func(t *testing.T) {
		_, err := repo.vcs().CommitMessages("9.9.9")
		require.Error(t, err)
	})
}

// mergedSideBranch builds R <- T (tagged 2.0.0) with a side commit B forked
// from R, merged into HEAD. firstParentSide puts B first in the merge.
func mergedSideBranch(t *testing.T, firstParentSide bool) *testRepo {
	t.Helper()
	repo := newTestRepo(t)
	root := repo.commit("sem-ver: api-break")
	repo.tag("1.0.0")
	tagged := repo.commit("sem-ver: api-break")
	repo.tag("2.0.0")
	side := repo.commitWithParents("side work", root)

	parents := []plumbing.Hash{tagged, side}
	if firstParentSide {
		parents = []plumbing.Hash{side, tagged}
	}
	repo.commitWithParents("Merge side", parents...)
	return repo
}

func TestMergedHistory(t *testing.T) {
	for _, firstParentSide := range []bool{false, true} {
		repo := mergedSideBranch(t, firstParentSide)

		tags, distance, err := repo.vcs().NearestTaggedAncestor(nil)
		require.NoError(t, err)
		require.Equal(t, []string{"2.0.0"}, tags)
		require.Equal(t, 2, distance)

		messages, err := repo.vcs().CommitMessages("2.0.0")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Contains(t, messages[0], "Merge side")
		require.NotContains(t, strings.Join(messages, "\n"), "sem-ver")

		messages, err = repo.vcs().CommitMessages("1.0.0")
		require.NoError(t, err)
		require.Len(t, messages, 3)
	}
}

func TestHeadShortHash(t *testing.T) {
	repo := newTestRepo(t)
	hash := repo.commit("")

	short, err := repo.vcs().HeadShortHash()
	require.NoError(t, err)
	require.Len(t, short, 7)
	require.True(t, strings.HasPrefix(hash.String(), short))
}

func TestCommitish(t *testing.T) {
	repo := newTestRepo(t)
	first := repo.commit("")
	repo.tag("1.0.0")
	repo.commit("")

	vcs := NewGitRepository(repo.repo, "HEAD~1", nil, "")
	tags, err := vcs.TagsAtHead()
	require.NoError(t, err)
	require.Equal(t, []string{"1.0.0"}, tags)

	short, err := vcs.HeadShortHash()
	require.NoError(t, err)
	require.Equal(t, first.String()[:7], short)
}

func TestIsDirty(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("")

	t.Run("Working tree is clean", func(t *testing.T) {
		dirty, err := repo.vcs().IsDirty()
		require.NoError(t, err)
		require.False(t, dirty)
	})

	t.Run("Working tree is dirty", func(t *testing.T) {
		workTree, err := repo.repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, writeFile(workTree.Filesystem, "hello-world", "Hello World 2"))

		dirty, err := repo.vcs().IsDirty()
		require.NoError(t, err)
		require.True(t, dirty)
	})
}

func TestOpenRepository(t *testing.T) {
	t.Run("Valid git repository", func(t *testing.T) {
		dir := t.TempDir()

		// Initialize a git repo
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)

		repo, err := OpenRepository(dir)
		require.NoError(t, err)
		require.NotNil(t, repo)
	})

	t.Run("Non-git directory", func(t *testing.T) {
		dir := t.TempDir()

		_, err := OpenRepository(dir)
		require.ErrorIs(t, err, ErrNoRepository)
	})

	t.Run("Non-existent directory", func(t *testing.T) {
		_, err := OpenRepository("/non/existent/path")
		require.Error(t, err)
	})

	t.Run("Subdirectory of a repository", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		require.NoError(t, os.Mkdir(dir+"/sub", 0o755))

		repo, err := OpenRepository(dir + "/sub")
		require.NoError(t, err)
		require.NotNil(t, repo)
	})
}
