// Package workspace owns the job scoped directories that hold extracted
// frames, and the cache location of the motion transform file.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
)

const (
	// Namespace is the directory under the storage root holding all job workspaces.
	Namespace = "postProcess"
	// TransformFileName is the analyze output consumed by stabilize.
	TransformFileName = "transforms.trf"
)

// Manager resolves, prepares and removes workspaces. Workspaces live at
// <root>/<Namespace>/<job-id>/<unix-millis>.
type Manager struct {
	root     string
	cacheDir string
}

func NewManager(root, cacheDir string) *Manager {
	return &Manager{root: root, cacheDir: cacheDir}
}

// NamespaceDir returns the directory holding every managed workspace.
func (m *Manager) NamespaceDir() string {
	return filepath.Join(m.root, Namespace)
}

// Resolve returns the workspace path for a job started at ts. A non-empty
// override wins over the managed location.
func (m *Manager) Resolve(jobID, override string, ts time.Time) string {
	if override != "" {
		return override
	}
	return filepath.Join(m.NamespaceDir(), jobID, strconv.FormatInt(ts.UnixMilli(), 10))
}

// Prepare makes sure path exists as a directory. It reports whether the
// directory had to be created.
func (m *Manager) Prepare(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("workspace %s is not a directory", path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat workspace: %w", err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return false, fmt.Errorf("create workspace: %w", err)
	}
	return true, nil
}

// Cleanup removes path recursively. Failures are logged and reported as
// false, never returned as errors.
func (m *Manager) Cleanup(path string) bool {
	if path == "" {
		return false
	}
	if err := os.RemoveAll(path); err != nil {
		logger.Warn.Printf("cleanup %s failed: %v", logger.SanitizeForLog(path), err)
		return false
	}
	return true
}

// RemoveFile removes a single output file. Directories are left alone. A
// file that is already gone counts as removed.
func (m *Manager) RemoveFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return true
	}
	if err != nil {
		logger.Warn.Printf("stat %s failed: %v", logger.SanitizeForLog(path), err)
		return false
	}
	if info.IsDir() {
		logger.Warn.Printf("refusing to remove directory %s", logger.SanitizeForLog(path))
		return false
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn.Printf("remove %s failed: %v", logger.SanitizeForLog(path), err)
		return false
	}
	return true
}

// CheckOutputFile rejects an output path that names an existing directory.
func CheckOutputFile(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("%w: destination %s is a directory", domain.ErrInvalidRequest, path)
	}
	return nil
}

// TransformFile is the fixed location shared by analyze and stabilize.
func (m *Manager) TransformFile() string {
	return filepath.Join(m.cacheDir, TransformFileName)
}

// PrepareCache makes sure the cache directory for the transform file exists.
func (m *Manager) PrepareCache() error {
	if err := os.MkdirAll(m.cacheDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return nil
}

// Managed reports whether path lies inside the workspace namespace.
func (m *Manager) Managed(path string) bool {
	rel, err := filepath.Rel(m.NamespaceDir(), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DeleteAll removes every managed workspace.
func (m *Manager) DeleteAll() bool {
	return m.Cleanup(m.NamespaceDir())
}

// DeleteFrameFolder removes an extracted frame directory. Paths outside the
// managed namespace are refused.
func (m *Manager) DeleteFrameFolder(path string) bool {
	if !m.Managed(path) {
		return false
	}
	return m.Cleanup(path)
}

// PurgeOlderThan removes workspaces whose timestamp is older than age
// relative to now, then drops job directories left empty. It returns the
// number of workspaces removed.
func (m *Manager) PurgeOlderThan(age time.Duration, now time.Time) (int, error) {
	jobDirs, err := os.ReadDir(m.NamespaceDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read workspace namespace: %w", err)
	}

	cutoff := now.Add(-age)
	removed := 0
	for _, jobDir := range jobDirs {
		if !jobDir.IsDir() {
			continue
		}
		jobPath := filepath.Join(m.NamespaceDir(), jobDir.Name())
		entries, err := os.ReadDir(jobPath)
		if err != nil {
			logger.Warn.Printf("read workspace %s: %v", jobPath, err)
			continue
		}

		remaining := len(entries)
		for _, entry := range entries {
			if !entry.IsDir() || !workspaceOlder(jobPath, entry, cutoff) {
				continue
			}
			if m.Cleanup(filepath.Join(jobPath, entry.Name())) {
				removed++
				remaining--
			}
		}
		if remaining == 0 {
			_ = os.Remove(jobPath)
		}
	}
	return removed, nil
}

// workspaceOlder uses the millisecond timestamp in the directory name and
// falls back to the modification time for overridden names.
func workspaceOlder(parent string, entry os.DirEntry, cutoff time.Time) bool {
	if ms, err := strconv.ParseInt(entry.Name(), 10, 64); err == nil {
		return time.UnixMilli(ms).Before(cutoff)
	}
	info, err := entry.Info()
	if err != nil {
		logger.Warn.Printf("stat workspace %s: %v", filepath.Join(parent, entry.Name()), err)
		return false
	}
	return info.ModTime().Before(cutoff)
}
