package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// Runner executes an external command inside dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function into a Runner.
type RunnerFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return f(ctx, dir, name, args...)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// GitOptions configures the git notifier.
type GitOptions struct {
	// Dir is the working tree the commands run in.
	Dir string
	// PathPrefix is joined in front of every event file before staging.
	PathPrefix    string
	Remote        string
	Branch        string
	Push          bool
	CommitPrefix  string
	DeployCommand []string
}

// GitNotifier stages the files of a publish, commits them, optionally pushes
// and finally runs the deploy command when one is configured. Notifications
// run one at a time since they share a working tree and its index lock.
type GitNotifier struct {
	opts   GitOptions
	runner Runner
	logger interfaces.Logger

	mu sync.Mutex
}

// NewGitNotifier builds a git notifier. A nil runner executes real processes.
func NewGitNotifier(opts GitOptions, runner Runner, logger interfaces.Logger) *GitNotifier {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	if strings.TrimSpace(opts.Remote) == "" {
		opts.Remote = "origin"
	}
	return &GitNotifier{opts: opts, runner: runner, logger: logger}
}

func (n *GitNotifier) Notify(ctx context.Context, event interfaces.PublishEvent) error {
	files := n.stagedPaths(event.Files)
	if len(files) == 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	steps := [][]string{
		append([]string{"git", "add", "--"}, files...),
		{"git", "commit", "-m", n.commitMessage(event)},
	}
	if n.opts.Push {
		push := []string{"git", "push", n.opts.Remote}
		if branch := strings.TrimSpace(n.opts.Branch); branch != "" {
			push = append(push, branch)
		}
		steps = append(steps, push)
	}
	if len(n.opts.DeployCommand) > 0 {
		steps = append(steps, n.opts.DeployCommand)
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := n.runner.Run(ctx, n.opts.Dir, step[0], step[1:]...)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("%s failed: %s", strings.Join(step[:min(2, len(step))], " "), strings.TrimSpace(string(out)))).
				WithTextCode("NOTIFY_COMMAND_FAILED")
		}
		n.logger.Debug("notify.git.step", "command", step[0], "args", len(step)-1)
	}
	return nil
}

func (n *GitNotifier) commitMessage(event interfaces.PublishEvent) string {
	prefix := strings.TrimSpace(n.opts.CommitPrefix)
	title := strings.TrimSpace(event.Title)
	if title == "" {
		title = event.Slug
	}
	if prefix == "" {
		return title
	}
	return prefix + " " + title
}

func (n *GitNotifier) stagedPaths(files []string) []string {
	out := make([]string, 0, len(files))
	for _, file := range files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		if n.opts.PathPrefix != "" {
			file = filepath.Join(n.opts.PathPrefix, filepath.FromSlash(file))
		}
		out = append(out, file)
	}
	return out
}
