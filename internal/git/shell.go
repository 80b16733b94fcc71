package git

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ShellProvider implements Provider with the git binary.
type ShellProvider struct {
	workDir string
	mu      sync.Mutex // one git process at a time
}

// NewShellProvider creates a provider rooted at workDir.
func NewShellProvider(workDir string) *ShellProvider {
	return &ShellProvider{workDir: workDir}
}

// IsRepo reports whether workDir is inside a git repository.
func (p *ShellProvider) IsRepo() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = p.workDir
	return cmd.Run() == nil
}

func (p *ShellProvider) branchLocked(ctx context.Context) (string, error) {
	out, err := p.run(ctx, "branch", "--show-current")
	if err == nil && out != "" {
		return out, nil
	}
	// detached HEAD
	out, err = p.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return "(" + out + ")", nil
}

// GetStatus returns the working tree status.
func (p *ShellProvider) GetStatus(ctx context.Context) (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := NewStatus()

	if branch, err := p.branchLocked(ctx); err == nil {
		status.Branch = branch
	}

	out, err := p.run(ctx, "status", "--porcelain=v1", "-uall")
	if err != nil {
		return status, err
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}

		fs := FileStatus{
			Staging:  StatusCode(line[0]),
			Worktree: StatusCode(line[1]),
			Path:     parseStatusPath(line[3:]),
		}

		status.Files[fs.Path] = fs
		if fs.Staging == StatusUntracked || fs.Worktree == StatusUntracked {
			status.Untracked = append(status.Untracked, fs.Path)
		}
		if fs.HasChanges() {
			status.IsDirty = true
		}
	}

	// rev-list fails without an upstream; ahead/behind just stay zero
	if out, err := p.run(ctx, "rev-list", "--left-right", "--count", "@{upstream}...HEAD"); err == nil {
		if parts := strings.Fields(out); len(parts) == 2 {
			status.Behind, _ = strconv.Atoi(parts[0])
			status.Ahead, _ = strconv.Atoi(parts[1])
		}
	}

	return status, nil
}

// GetDiff returns the unstaged diff for a file, or everything when path is
// empty.
func (p *ShellProvider) GetDiff(ctx context.Context, path string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	args := []string{"diff"}
	if path != "" {
		args = append(args, "--", path)
	}
	return p.runRaw(ctx, args...)
}

// GetStagedDiff returns the staged diff for a file.
func (p *ShellProvider) GetStagedDiff(ctx context.Context, path string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	args := []string{"diff", "--cached"}
	if path != "" {
		args = append(args, "--", path)
	}
	return p.runRaw(ctx, args...)
}

// Stage adds a file to the index.
func (p *ShellProvider) Stage(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := exec.CommandContext(ctx, "git", "add", "--", path)
	cmd.Dir = p.workDir
	return cmd.Run()
}

// Unstage removes a file from the index.
func (p *ShellProvider) Unstage(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := exec.CommandContext(ctx, "git", "restore", "--staged", "--", path)
	cmd.Dir = p.workDir
	return cmd.Run()
}

// Commit records the index with the given message.
func (p *ShellProvider) Commit(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	cmd.Dir = p.workDir
	return cmd.Run()
}

// run executes a read-only git command and returns trimmed stdout.
// --no-optional-locks keeps status queries from taking index.lock.
func (p *ShellProvider) run(ctx context.Context, args ...string) (string, error) {
	out, err := p.runRaw(ctx, args...)
	return strings.TrimSpace(out), err
}

func (p *ShellProvider) runRaw(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"--no-optional-locks"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = p.workDir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// parseStatusPath extracts the path from a porcelain line body, resolving
// "old -> new" renames to the new name.
func parseStatusPath(body string) string {
	path := strings.TrimSpace(body)
	if idx := strings.LastIndex(path, " -> "); idx >= 0 {
		path = path[idx+len(" -> "):]
	}
	if !filepath.IsAbs(path) {
		path = filepath.Clean(path)
	}
	return path
}
