// Package publish commits the built output tree into a git repository, the
// usual deployment path for a static blog served from a pages branch.
package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Options control the publish commit.
type Options struct {
	// Dir is the output directory to publish. It must be (or become) the
	// worktree of a git repository.
	Dir     string
	Message string
	Author  string
	Email   string
}

// ErrNothingToPublish indicates the worktree matched the last commit.
var ErrNothingToPublish = errors.New("output tree is unchanged since the last publish")

// Result describes the created commit.
type Result struct {
	CommitHash string
	Files      int
}

// Publish stages everything under opts.Dir and commits it. The repository is
// initialized on first publish. A clean worktree short-circuits with
// ErrNothingToPublish so repeated publishes of an unchanged build do not
// create empty commits.
func Publish(opts Options) (*Result, error) {
	if opts.Message == "" {
		opts.Message = "Publish site"
	}
	if opts.Author == "" {
		opts.Author = "inkpress"
	}
	if opts.Email == "" {
		opts.Email = "inkpress@localhost"
	}

	repo, err := git.PlainOpen(opts.Dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(opts.Dir, false)
		if err != nil {
			return nil, fmt.Errorf("init repository in %s: %w", opts.Dir, err)
		}
		slog.Info("Initialized publish repository", "dir", opts.Dir)
	} else if err != nil {
		return nil, fmt.Errorf("open repository in %s: %w", opts.Dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("stage output tree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	if status.IsClean() {
		return nil, ErrNothingToPublish
	}

	hash, err := worktree.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{Name: opts.Author, Email: opts.Email, When: time.Now()},
	})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	slog.Info("Published site", "commit", hash.String(), "files", len(status))
	return &Result{CommitHash: hash.String(), Files: len(status)}, nil
}
