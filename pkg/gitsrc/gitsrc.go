package gitsrc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Source is the git repository holding the curated suggestion map. It is
// synced once at startup, before the map is loaded; the running process
// never re-reads it.
type Source struct {
	URL    string
	Path   string
	Logger *zap.Logger
}

// NewSource creates a Source that mirrors url under basePath.
func NewSource(url, basePath string, logger *zap.Logger) *Source {
	return &Source{
		URL:    url,
		Path:   filepath.Join(basePath, "suggestions-repo"),
		Logger: logger,
	}
}

// Sync brings the local mirror up to date with the curated repository.
func (s *Source) Sync() error {
	repo, err := s.openOrClone()
	if err != nil {
		return fmt.Errorf("failed to open/clone suggestions repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Pull(&git.PullOptions{
		Force: true,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to pull: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	s.Logger.Info("suggestions repo synced",
		zap.String("url", s.URL),
		zap.String("commit", head.Hash().String()[:7]),
	)
	return nil
}

// File returns the absolute path of name inside the synced mirror.
func (s *Source) File(name string) string {
	return filepath.Join(s.Path, name)
}

// openOrClone opens the local mirror or clones it on first run.
func (s *Source) openOrClone() (*git.Repository, error) {
	repo, err := git.PlainOpen(s.Path)
	if err == nil {
		return repo, nil
	}

	if err == git.ErrRepositoryNotExists {
		s.Logger.Info("cloning suggestions repo", zap.String("url", s.URL))

		if err := os.MkdirAll(s.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}

		repo, err = git.PlainClone(s.Path, false, &git.CloneOptions{
			URL: s.URL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to clone: %w", err)
		}

		return repo, nil
	}

	return nil, err
}
