// Package git reads facts about the Git repository that holds a set of
// configuration files: HEAD commit, branch, tags and dirty status. They are
// exposed to configs through ${git:...} expressions so a run can record the
// code revision it was launched from.
package git

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// shortHashLen matches `git rev-parse --short` default output.
const shortHashLen = 7

// Info holds information about a git repository
type Info struct {
	// CommitHash is the current HEAD commit hash
	CommitHash string
	// Branch is the current branch name, empty on a detached HEAD
	Branch string
	// Tags lists the tags pointing at HEAD
	Tags []string
	// IsDirty indicates if the working tree has uncommitted changes
	IsDirty bool
}

// ShortHash returns the abbreviated commit hash.
func (i *Info) ShortHash() string {
	if len(i.CommitHash) <= shortHashLen {
		return i.CommitHash
	}
	return i.CommitHash[:shortHashLen]
}

// GetInfo opens the repository that path belongs to, searching parent
// directories for .git, and reads its HEAD state.
func GetInfo(path string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to find a Git repository that path %q belongs to: %w", path, err)
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference for repository %q: %w", path, err)
	}

	var tags []string
	tagRefs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	err = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		revHash, err := repo.ResolveRevision(plumbing.Revision(ref.Name()))
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", ref.Name().Short(), err)
		}
		if *revHash == headRef.Hash() {
			tags = append(tags, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over tags: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree for repository %q: %w", path, err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status for repository %q: %w", path, err)
	}

	info := &Info{
		CommitHash: headRef.Hash().String(),
		Tags:       tags,
		IsDirty:    !status.IsClean(),
	}
	if headRef.Name().IsBranch() {
		info.Branch = headRef.Name().Short()
	}
	return info, nil
}
