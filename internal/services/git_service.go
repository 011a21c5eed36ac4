package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"clickhelper/internal/models"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var ErrBranchExists = errors.New("branch already exists")

// GitService creates the generated branches in a local working copy.
type GitService struct{}

func NewGitService() *GitService {
	return &GitService{}
}

// PlainInit initializes a new git repo at given path
func (g *GitService) Init(path string) (*git.Repository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Open an existing repo, searching parent directories like the git CLI does.
func (g *GitService) Open(path string) (*git.Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// ValidateRepository checks if the given path is a valid git repository
func (g *GitService) ValidateRepository(repoPath string) error {
	repo, err := g.Open(repoPath)
	if err != nil {
		return fmt.Errorf("not a valid git repository: %w", err)
	}

	// Try to get HEAD to ensure repository is in a valid state
	if _, err = repo.Head(); err != nil {
		return fmt.Errorf("repository is in an invalid state: %w", err)
	}
	return nil
}

// ValidateBranchName applies git's ref-name rules to a generated branch name.
func (g *GitService) ValidateBranchName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		return fmt.Errorf("invalid branch name %q: %w", name, err)
	}
	return nil
}

// CurrentBranch returns the short name of the checked out branch.
func (g *GitService) CurrentBranch(repoPath string) (string, error) {
	repo, err := g.Open(repoPath)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash().String()[:7])
	}
	return head.Name().Short(), nil
}

// CreateBranch points a new branch at HEAD and optionally checks it out.
func (g *GitService) CreateBranch(repoPath, name string, checkout bool) (*models.BranchInfo, error) {
	name = strings.TrimSpace(name)
	if err := g.ValidateBranchName(name); err != nil {
		return nil, err
	}
	repo, err := g.Open(repoPath)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(refName, false); err == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrBranchExists)
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("failed to look up branch %s: %w", name, err)
	}

	if checkout {
		w, err := repo.Worktree()
		if err != nil {
			return nil, err
		}
		if err := w.Checkout(&git.CheckoutOptions{Branch: refName, Hash: head.Hash(), Create: true, Keep: true}); err != nil {
			return nil, fmt.Errorf("failed to check out %s: %w", name, err)
		}
	} else if err := repo.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
		return nil, fmt.Errorf("failed to create branch %s: %w", name, err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	return &models.BranchInfo{Name: name, LastCommitDate: commit.Author.When}, nil
}

// ListBranches opens the repo at repoPath and returns all local branches with their last commit date.
func (g *GitService) ListBranches(repoPath string) ([]models.BranchInfo, error) {
	repo, err := g.Open(repoPath)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var branches []models.BranchInfo
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		commit, cErr := repo.CommitObject(ref.Hash())
		if cErr != nil {
			return cErr
		}
		branches = append(branches, models.BranchInfo{
			Name:           ref.Name().Short(),
			LastCommitDate: commit.Author.When,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}
