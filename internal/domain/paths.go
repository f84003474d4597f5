package domain

import (
	"path/filepath"
	"regexp"
)

// Directory and file names under the repository root.
const (
	OpencodeDirName   = ".opencode"
	StateFileName     = "transmute.sessions.json"
	SQLiteFileName    = "transmute.sessions.db"
	ConfigFileBase    = "transmute.config"
	GlobalLogFileName = "transmute.log"
)

// OpencodeDir returns <repoRoot>/.opencode.
func OpencodeDir(repoRoot string) string {
	return filepath.Join(repoRoot, OpencodeDirName)
}

// StateFilePath returns the JSON session store path.
func StateFilePath(repoRoot string) string {
	return filepath.Join(OpencodeDir(repoRoot), StateFileName)
}

// SQLiteFilePath returns the SQLite session store path.
func SQLiteFilePath(repoRoot string) string {
	return filepath.Join(OpencodeDir(repoRoot), SQLiteFileName)
}

// ConfigCandidates returns config file paths in lookup order.
func ConfigCandidates(repoRoot string) []string {
	exts := []string{".json", ".toml", ".yaml"}
	candidates := make([]string, 0, 2*len(exts))
	for _, dir := range []string{OpencodeDir(repoRoot), repoRoot} {
		for _, ext := range exts {
			candidates = append(candidates, filepath.Join(dir, ConfigFileBase+ext))
		}
	}
	return candidates
}

// LogsDir returns the log directory.
func LogsDir(repoRoot string) string {
	return filepath.Join(OpencodeDir(repoRoot), "logs")
}

// GlobalLogPath returns the global log file path.
func GlobalLogPath(repoRoot string) string {
	return filepath.Join(LogsDir(repoRoot), GlobalLogFileName)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TaskLogPath returns the log file path for a task. Task ids are free-form,
// so anything unsafe in a file name is replaced.
func TaskLogPath(repoRoot, taskID string) string {
	name := unsafeFileChars.ReplaceAllString(taskID, "_")
	return filepath.Join(LogsDir(repoRoot), "task-"+name+".log")
}

// ResolveWorktreesDir returns dir as an absolute path, relative to repoRoot
// when it is not absolute already.
func ResolveWorktreesDir(repoRoot, dir string) string {
	if dir == "" {
		dir = DefaultWorktreesDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(repoRoot, dir)
}

// CanonicalPath resolves symlinks in p. git reports worktree paths with links
// resolved, while stored and configured paths may go through a link. When p
// does not exist, its deepest existing ancestor is resolved instead.
func CanonicalPath(p string) string {
	p = filepath.Clean(p)
	rest := ""
	for dir := p; ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return p
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

// SamePath reports whether a and b name the same location once symlinks are
// resolved.
func SamePath(a, b string) bool {
	return CanonicalPath(a) == CanonicalPath(b)
}
