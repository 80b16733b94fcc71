// Package git reads and mutates repository state by shelling out to the
// git binary, the same one the user runs by hand.
package git

import "context"

// Provider is the repository surface the UI consumes.
type Provider interface {
	// GetStatus returns the working tree status
	GetStatus(ctx context.Context) (*Status, error)

	// GetDiff returns the unstaged diff for a file, or the whole tree when
	// path is empty
	GetDiff(ctx context.Context, path string) (string, error)

	// GetStagedDiff returns the staged diff for a file
	GetStagedDiff(ctx context.Context, path string) (string, error)

	// Stage adds a file to the index
	Stage(ctx context.Context, path string) error

	// Unstage removes a file from the index
	Unstage(ctx context.Context, path string) error

	// Commit records the index with the given message
	Commit(ctx context.Context, message string) error

	// IsRepo reports whether the working directory is inside a repository
	IsRepo() bool
}

// Status represents the overall repository status.
type Status struct {
	Branch    string
	IsDirty   bool
	Ahead     int
	Behind    int
	Files     map[string]FileStatus
	Untracked []string
}

// NewStatus creates a Status with initialized maps.
func NewStatus() *Status {
	return &Status{Files: make(map[string]FileStatus)}
}

// StagedCount returns how many files have index changes.
func (s *Status) StagedCount() int {
	n := 0
	for _, f := range s.Files {
		if f.IsStaged() {
			n++
		}
	}
	return n
}

// UnstagedCount returns how many files have worktree changes, untracked
// files included.
func (s *Status) UnstagedCount() int {
	n := 0
	for _, f := range s.Files {
		if f.Worktree != StatusUnmodified {
			n++
		}
	}
	return n
}

// FileStatus represents the status of a single file.
type FileStatus struct {
	Path     string
	Staging  StatusCode
	Worktree StatusCode
}

// IsStaged returns true if the file has index changes.
func (f FileStatus) IsStaged() bool {
	return f.Staging != StatusUnmodified && f.Staging != StatusUntracked
}

// HasChanges returns true if the file differs from HEAD in any way.
func (f FileStatus) HasChanges() bool {
	return f.Staging != StatusUnmodified || f.Worktree != StatusUnmodified
}

// Display returns the two-character porcelain code for list rendering.
func (f FileStatus) Display() string {
	return f.Staging.String() + f.Worktree.String()
}

// StatusCode is one column of a porcelain v1 status line.
type StatusCode rune

const (
	StatusUnmodified StatusCode = ' '
	StatusModified   StatusCode = 'M'
	StatusAdded      StatusCode = 'A'
	StatusDeleted    StatusCode = 'D'
	StatusRenamed    StatusCode = 'R'
	StatusCopied     StatusCode = 'C'
	StatusUnmerged   StatusCode = 'U'
	StatusUntracked  StatusCode = '?'
	StatusIgnored    StatusCode = '!'
)

// String returns the single-character representation.
func (s StatusCode) String() string {
	return string(s)
}

// IsModified returns true if the file has been modified.
func (s StatusCode) IsModified() bool {
	return s == StatusModified
}
