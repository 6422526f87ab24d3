// This file contains code adapted from pulumictl (https://github.com/pulumi/pulumictl)
// which is licensed under the Apache License 2.0.

package pkgver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const shortHashLength = 7

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w at %s", ErrNoRepository, path)
	}
	return repo, err
}

// GitRepository implements VCS for a go-git repository.
type GitRepository struct {
	repo      *git.Repository
	commitish plumbing.Revision
	tagFilter func(string) bool
	tagPrefix string
}

// NewGitRepository analyses repo at commitish (HEAD when empty). Tags are
// skipped when filter rejects their name; tagPrefix is stripped from the
// names of the remaining ones.
func NewGitRepository(repo *git.Repository, commitish plumbing.Revision, filter func(string) bool, tagPrefix string) *GitRepository {
	if commitish == "" {
		commitish = "HEAD"
	}
	return &GitRepository{
		repo:      repo,
		commitish: commitish,
		tagFilter: filter,
		tagPrefix: tagPrefix,
	}
}

func (g *GitRepository) head() (*object.Commit, error) {
	revision, err := g.repo.ResolveRevision(g.commitish)
	if err != nil {
		return nil, fmt.Errorf("resolving commitish: %w", err)
	}

	commit, err := g.repo.CommitObject(*revision)
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}
	return commit, nil
}

// tagIndex maps commits to the names of the tags pointing at them, and tag
// names back to commits. Annotated tags are peeled to their commit.
type tagIndex struct {
	byCommit map[plumbing.Hash][]string
	byName   map[string]plumbing.Hash
}

func (g *GitRepository) tags() (*tagIndex, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	index := &tagIndex{
		byCommit: make(map[plumbing.Hash][]string),
		byName:   make(map[string]plumbing.Hash),
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		name := ref.Name().Short()

		// Apply tag filter
		if g.tagFilter != nil && !g.tagFilter(name) {
			return nil
		}
		if g.tagPrefix != "" {
			if !strings.HasPrefix(name, g.tagPrefix) {
				return nil
			}
			name = strings.TrimPrefix(name, g.tagPrefix)
		}

		target := ref.Hash()
		obj, err := g.repo.TagObject(ref.Hash())
		switch err {
		case nil:
			// Annotated tag
			commit, err := obj.Commit()
			if err != nil {
				// Tags of trees or blobs carry no version
				return nil
			}
			target = commit.Hash
		case plumbing.ErrObjectNotFound:
			// Lightweight tag
		default:
			return err
		}

		index.byCommit[target] = append(index.byCommit[target], name)
		index.byName[name] = target
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}

	for _, names := range index.byCommit {
		sort.Strings(names)
	}
	return index, nil
}

// TagsAtHead returns the tags pointing exactly at the analysed commit.
func (g *GitRepository) TagsAtHead() ([]string, error) {
	commit, err := g.head()
	if err != nil {
		return nil, err
	}

	index, err := g.tags()
	if err != nil {
		return nil, err
	}
	return index.byCommit[commit.Hash], nil
}

// NearestTaggedAncestor finds the tagged commits closest to HEAD. History is
// walked breadth first without descending past commits carrying accepted
// tags; among those, the commit with the fewest commits in tag..HEAD wins.
// Ties merge their tags.
func (g *GitRepository) NearestTaggedAncestor(accept func(tag string) bool) ([]string, int, error) {
	commit, err := g.head()
	if err != nil {
		return nil, 0, err
	}

	index, err := g.tags()
	if err != nil {
		return nil, 0, err
	}

	acceptedTags := func(hash plumbing.Hash) []string {
		var found []string
		for _, tag := range index.byCommit[hash] {
			if accept == nil || accept(tag) {
				found = append(found, tag)
			}
		}
		return found
	}

	type candidate struct {
		commit *object.Commit
		tags   []string
	}
	var candidates []candidate

	visited := map[plumbing.Hash]bool{commit.Hash: true}
	queue := []*object.Commit{commit}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if tags := acceptedTags(c.Hash); len(tags) > 0 {
			candidates = append(candidates, candidate{commit: c, tags: tags})
			continue
		}

		err := c.Parents().ForEach(func(p *object.Commit) error {
			if !visited[p.Hash] {
				visited[p.Hash] = true
				queue = append(queue, p)
			}
			return nil
		})
		if err != nil {
			return nil, 0, fmt.Errorf("walking history: %w", err)
		}
	}

	if len(candidates) == 0 {
		all, err := commitsSince(commit, nil)
		if err != nil {
			return nil, 0, err
		}
		return nil, len(all), nil
	}

	var (
		found    []string
		distance = -1
	)
	for _, cand := range candidates {
		released, err := ancestors(cand.commit)
		if err != nil {
			return nil, 0, err
		}
		since, err := commitsSince(commit, released)
		if err != nil {
			return nil, 0, err
		}

		switch {
		case distance < 0 || len(since) < distance:
			found, distance = cand.tags, len(since)
		case len(since) == distance:
			found = append(found, cand.tags...)
		}
	}

	sort.Strings(found)
	return found, distance, nil
}

// CommitMessages returns messages newest first. With since set, commits
// reachable from the tag are excluded, as in git's since..HEAD.
func (g *GitRepository) CommitMessages(since string) ([]string, error) {
	commit, err := g.head()
	if err != nil {
		return nil, err
	}

	var released map[plumbing.Hash]bool
	if since != "" {
		index, err := g.tags()
		if err != nil {
			return nil, err
		}
		hash, ok := index.byName[since]
		if !ok {
			return nil, fmt.Errorf("unknown tag %q", since)
		}
		tagged, err := g.repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("getting tagged commit: %w", err)
		}
		if released, err = ancestors(tagged); err != nil {
			return nil, err
		}
	}

	commits, err := commitsSince(commit, released)
	if err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, c.Message)
	}
	return messages, nil
}

// ancestors returns c and every commit reachable from it.
func ancestors(c *object.Commit) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(c, nil, nil).ForEach(func(a *object.Commit) error {
		seen[a.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}
	return seen, nil
}

// commitsSince lists the commits reachable from head but not in released,
// in preorder.
func commitsSince(head *object.Commit, released map[plumbing.Hash]bool) ([]*object.Commit, error) {
	var commits []*object.Commit
	err := object.NewCommitPreorderIter(head, released, nil).ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}
	return commits, nil
}

// HeadShortHash returns the first seven hex digits of HEAD.
func (g *GitRepository) HeadShortHash() (string, error) {
	commit, err := g.head()
	if err != nil {
		return "", err
	}
	return commit.Hash.String()[:shortHashLength], nil
}

// IsDirty reports whether the worktree has uncommitted changes. It does not
// influence the computed version.
func (g *GitRepository) IsDirty() (bool, error) {
	workTree, err := g.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := workTree.Status()
	if err != nil {
		return false, fmt.Errorf("getting git status: %w", err)
	}

	return !status.IsClean(), nil
}
