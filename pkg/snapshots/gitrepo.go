package snapshots

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/logging"
)

// Repo reads the results repository through the git CLI, so snapshots can be
// taken at historical commits without checking them out.
type Repo struct {
	path   string
	logger logging.Interface
}

// NewRepo wraps an existing git checkout. It fails when the path is not a
// git repository (for submodules: run `git submodule update --init`).
func NewRepo(path string, logger logging.Interface) (*Repo, error) {
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		return nil, errors.Wrapf(err, "no git repository at %s", path)
	}
	return &Repo{path: path, logger: logger}, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", r.path}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// DatesWithCommits returns the unique commit dates since schema
// consolidation, ascending.
func (r *Repo) DatesWithCommits(ctx context.Context) ([]time.Time, error) {
	out, err := r.git(ctx, "log",
		"--since="+SchemaConsolidationDate.Format(dateFormat),
		"--format=%ad", "--date=short")
	if err != nil {
		return nil, errors.Wrap(err, "listing commit dates")
	}
	if out == "" {
		return nil, nil
	}

	unique := map[string]struct{}{}
	for _, line := range strings.Split(out, "\n") {
		unique[strings.TrimSpace(line)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(unique))
	for raw := range unique {
		parsed, err := time.ParseInLocation(dateFormat, raw, time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing commit date %q", raw)
		}
		dates = append(dates, parsed)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// LastCommitOfDay returns the hash of the last commit up to the end of the
// given day, or "" when the repository has no commits by then.
func (r *Repo) LastCommitOfDay(ctx context.Context, dayDate time.Time) (string, error) {
	out, err := r.git(ctx, "log",
		"--until="+dayDate.Format(dateFormat)+" 23:59:59",
		"--format=%H", "-1")
	if err != nil {
		return "", errors.Wrapf(err, "resolving last commit of %s", dayDate.Format(dateFormat))
	}
	return out, nil
}

// ListModelDirs lists the model directory names under results/ at a commit.
func (r *Repo) ListModelDirs(ctx context.Context, commit string) ([]string, error) {
	out, err := r.git(ctx, "show", commit+":results/")
	if err != nil {
		r.logger.WithField("commit", shortCommit(commit)).Warn("No results/ directory at commit")
		return nil, nil
	}

	// git show on a tree prints "tree <commit>:results/" followed by a blank
	// line and one entry per line.
	var dirs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), "/")
		if line == "" || strings.HasPrefix(line, "tree ") {
			continue
		}
		dirs = append(dirs, line)
	}
	return dirs, nil
}

// ReadFileAtCommit returns a file's contents at a commit, or ok=false when
// the file does not exist there.
func (r *Repo) ReadFileAtCommit(ctx context.Context, commit, path string) (string, bool) {
	out, err := r.git(ctx, "show", commit+":"+path)
	if err != nil {
		return "", false
	}
	return out, true
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
