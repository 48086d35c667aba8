// Package projectfs provides root-scoped file operations for generated projects.
//
// Overview:
//   - Responsibility: Write generated files under one output root and patch files
//     created by the bootstrap tools (pubspec.yaml, angular.json, package.json, styles.scss)
//   - Key Types: ProjectFS, Dependency, JSONObject
//   - Concurrency Model: Sequential file operations
//   - Error Semantics: INTERNAL coded errors naming the relative path; paths that
//     escape the root are rejected as INVALID_ARGUMENT
//   - Performance Notes: Whole-file writes, no partial updates
//
// Usage:
//
//	pfs := projectfs.NewProjectFS("out", logger)
//	err := pfs.WriteFile("shop/api/src/main/java/App.java", content)
package projectfs

import (
	"os"
	"path/filepath"
	"strings"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
)

// ProjectFS provides file system operations relative to a root directory.
//
// Parameters:
//   - rootDir: Root directory for operations
//   - logger: Logger receiving one debug line per write
//
// Concurrency:
//   - Not safe for concurrent writes to the same path
type ProjectFS struct {
	rootDir string
	logger  log.Logger
}

// NewProjectFS creates a new project file system rooted at rootDir.
func NewProjectFS(rootDir string, logger log.Logger) *ProjectFS {
	if logger == nil {
		logger = log.Nop()
	}
	return &ProjectFS{
		rootDir: rootDir,
		logger:  logger,
	}
}

// RootDir returns the root directory.
func (fs *ProjectFS) RootDir() string {
	return fs.rootDir
}

// resolve maps a slash-separated relative path to a file system path under the root.
func (fs *ProjectFS) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.CodeInvalidArgument, "path %q escapes the output root", path)
	}
	return filepath.Join(fs.rootDir, clean), nil
}

// GetAbsolutePath returns the absolute path of a relative path under the root.
func (fs *ProjectFS) GetAbsolutePath(path string) (string, error) {
	full, err := fs.resolve(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(full)
}

// EnsureDirectory creates a directory and its parents if they do not exist.
func (fs *ProjectFS) EnsureDirectory(path string) error {
	full, err := fs.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return errors.Wrapf(errors.CodeInternal, "projectfs.EnsureDirectory", err, "failed to create directory %s", path)
	}
	return nil
}

// WriteFile writes content to a file, replacing it entirely.
//
// Parameters:
//   - path: Slash-separated path relative to root
//   - content: Complete file content
//
// Returns:
//   - error: INVALID_ARGUMENT for escaping paths, INTERNAL for write failures
//
// Concurrency:
//   - Single-threaded per file
func (fs *ProjectFS) WriteFile(path, content string) error {
	full, err := fs.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(errors.CodeInternal, "projectfs.WriteFile", err, "failed to create parent directory for %s", path)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return errors.Wrapf(errors.CodeInternal, "projectfs.WriteFile", err, "failed to write file %s", path)
	}

	fs.logger.Debug("written file", log.Str("path", path), log.Int("bytes", len(content)))
	return nil
}

// FileExists checks if a regular file exists.
func (fs *ProjectFS) FileExists(path string) (bool, error) {
	full, err := fs.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(errors.CodeInternal, "projectfs.FileExists", err, "failed to stat %s", path)
}

// ReadFile reads content from a file.
func (fs *ProjectFS) ReadFile(path string) (string, error) {
	full, err := fs.resolve(path)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return "", errors.Wrapf(code, "projectfs.ReadFile", err, "failed to read file %s", path)
	}
	return string(content), nil
}

// RemoveFile removes a file if it exists.
func (fs *ProjectFS) RemoveFile(path string) error {
	full, err := fs.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(errors.CodeInternal, "projectfs.RemoveFile", err, "failed to remove file %s", path)
	}
	return nil
}

// AppendIfMissing appends block to the file unless it already contains marker.
// A missing file is left alone.
//
// Returns:
//   - bool: True if the file was changed
//   - error: Read or write failure
func (fs *ProjectFS) AppendIfMissing(path, marker, block string) (bool, error) {
	exists, err := fs.FileExists(path)
	if err != nil || !exists {
		return false, err
	}
	content, err := fs.ReadFile(path)
	if err != nil {
		return false, err
	}
	if strings.Contains(content, marker) {
		return false, nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return true, fs.WriteFile(path, content+block)
}
