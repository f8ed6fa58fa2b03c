package gitlib

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

type DotGit struct {
	Branch string
	Sha    string
	Root   string
	Dirty  bool
}

// FromPath walks upward from path looking for a .git directory and
// reports HEAD state. Callers treat a miss as informational, not fatal;
// a build context does not have to be a git worktree.
func FromPath(path string) (DotGit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DotGit{}, err
	}

	root, repo, err := findDotGit(abs)
	if err != nil {
		return DotGit{}, err
	}

	head, err := repo.Head()
	if err != nil {
		return DotGit{}, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return DotGit{}, err
	}

	status, err := worktree.Status()
	if err != nil {
		return DotGit{}, err
	}

	return DotGit{
		Branch: head.Name().Short(),
		Sha:    head.Hash().String(),
		Root:   root,
		Dirty:  !status.IsClean(),
	}, nil
}

func findDotGit(dir string) (string, *git.Repository, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			repo, err := git.PlainOpen(dir)
			if err != nil {
				return "", nil, err
			}

			return dir, repo, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, fmt.Errorf("%s is not inside a git repository", dir)
		}
		dir = parent
	}
}
