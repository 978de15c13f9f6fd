package securefs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcpgate/mcpgate/internal/errors"
)

// SecureFS provides read-only filesystem operations with path validation,
// using os.Root for OS-level filesystem sandboxing when a base directory is
// configured.
//
// The os.Root feature provides directory-limited filesystem access,
// preventing path traversal vulnerabilities by enforcing access boundaries
// at the OS level: relative ".." escapes, symlinks pointing outside the base
// directory, and time-of-check/time-of-use races are all rejected by the
// kernel-backed root handle, in addition to the canonical-path containment
// check performed by Resolve.
//
// When no base directory is configured, Resolve canonicalizes paths without
// restricting them and operations fall through to the plain os package.
type SecureFS struct {
	baseDir         string   // The base directory operations are restricted to; empty when unrestricted
	root            *os.Root // The sandboxed filesystem root; nil when unrestricted
	maxReadFileSize int64    // Maximum file size for ReadFile (0 = unlimited)
}

// New creates a new secure filesystem restricted to baseDir. The directory
// must exist; the gateway never creates its own sandbox root.
func New(baseDir string) (*SecureFS, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	// Canonicalize the base so the containment check compares like with like
	// when client paths have their symlinks resolved.
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", absPath)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem sandbox: %w", err)
	}

	return &SecureFS{
		baseDir: absPath,
		root:    root,
	}, nil
}

// NewUnrestricted creates a SecureFS without a sandbox root. Resolve
// canonicalizes paths but never rejects them.
func NewUnrestricted() *SecureFS {
	return &SecureFS{}
}

// Sandboxed reports whether a base directory is configured.
func (sfs *SecureFS) Sandboxed() bool {
	return sfs.root != nil
}

// BaseDir returns the configured base directory, empty when unrestricted.
func (sfs *SecureFS) BaseDir() string {
	return sfs.baseDir
}

// Close releases the underlying root handle.
func (sfs *SecureFS) Close() error {
	if sfs.root == nil {
		return nil
	}
	return sfs.root.Close()
}

// SetMaxReadFileSize sets the maximum file size that ReadFile will read.
// A value of 0 means unlimited. This helps prevent memory exhaustion from
// reading very large files.
func (sfs *SecureFS) SetMaxReadFileSize(maxSize int64) {
	sfs.maxReadFileSize = maxSize
}

// MaxReadFileSize returns the current maximum file size for ReadFile.
func (sfs *SecureFS) MaxReadFileSize() int64 {
	return sfs.maxReadFileSize
}

// isPathPrefix checks if target is within or equal to base, comparing whole
// path segments. A base of /data admits /data and /data/x but never /data2.
func isPathPrefix(absBase, absTarget string) bool {
	return absTarget == absBase ||
		strings.HasPrefix(absTarget, absBase+string(filepath.Separator))
}

// resolveSymlinks resolves symlinks for a path, returning the input when
// resolution fails (typically because the path does not exist yet).
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

// resolveParentSymlinks attempts to resolve symlinks in parent directories
// when the full path cannot be resolved (e.g. the leaf does not exist).
func resolveParentSymlinks(absTarget string) string {
	dir := filepath.Dir(absTarget)

	for dir != "/" && dir != "." && dir != "" {
		resolvedDir := resolveSymlinks(dir)
		if resolvedDir != dir {
			rel, err := filepath.Rel(dir, absTarget)
			if err != nil {
				return absTarget
			}
			return filepath.Join(resolvedDir, rel)
		}
		dir = filepath.Dir(dir)
	}
	return absTarget
}

// Resolve normalizes a client-supplied path into absolute canonical form and
// verifies containment in the base directory. It does not require the path
// to exist; existence errors surface from the operation that follows.
func (sfs *SecureFS) Resolve(rawPath string) (string, error) {
	absTarget, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	absTarget = filepath.Clean(absTarget)

	// Resolve symlinks so a link inside the sandbox pointing outside of it
	// is compared by its real location. best effort for missing leaves.
	resolved := resolveSymlinks(absTarget)
	if resolved == absTarget {
		absTarget = resolveParentSymlinks(absTarget)
	} else {
		absTarget = resolved
	}
	absTarget = filepath.Clean(absTarget)

	if sfs.root == nil {
		return absTarget, nil
	}

	if !isPathPrefix(sfs.baseDir, absTarget) {
		return "", errors.New(fmt.Errorf("%w: path %s is outside allowed directory %s",
			ErrPathTraversal, rawPath, sfs.baseDir)).
			Category(errors.CategoryForbidden).
			Build()
	}

	return absTarget, nil
}

// relativePath converts a canonical absolute path into a path relative to
// the base directory for use with os.Root operations.
func (sfs *SecureFS) relativePath(canonical string) (string, error) {
	relPath, err := filepath.Rel(sfs.baseDir, canonical)
	if err != nil {
		return "", fmt.Errorf("failed to make path relative: %w", err)
	}

	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, canonical)
	}

	return relPath, nil
}

// Stat returns file info with path validation.
func (sfs *SecureFS) Stat(path string) (fs.FileInfo, error) {
	canonical, err := sfs.Resolve(path)
	if err != nil {
		return nil, err
	}

	if sfs.root == nil {
		return os.Stat(canonical)
	}

	relPath, err := sfs.relativePath(canonical)
	if err != nil {
		return nil, err
	}
	return sfs.root.Stat(relPath)
}

// Lstat returns file info without following the final symlink.
func (sfs *SecureFS) Lstat(path string) (fs.FileInfo, error) {
	canonical, err := sfs.Resolve(path)
	if err != nil {
		return nil, err
	}

	if sfs.root == nil {
		return os.Lstat(canonical)
	}

	relPath, err := sfs.relativePath(canonical)
	if err != nil {
		return nil, err
	}
	return sfs.root.Lstat(relPath)
}

// Open opens a file for reading with path validation.
func (sfs *SecureFS) Open(path string) (*os.File, error) {
	canonical, err := sfs.Resolve(path)
	if err != nil {
		return nil, err
	}

	if sfs.root == nil {
		return os.Open(canonical)
	}

	relPath, err := sfs.relativePath(canonical)
	if err != nil {
		return nil, err
	}
	return sfs.root.Open(relPath)
}

// ReadDir enumerates the direct children of a directory with path validation.
func (sfs *SecureFS) ReadDir(path string) ([]fs.DirEntry, error) {
	dir, err := sfs.Open(path)
	if err != nil {
		return nil, err
	}
	defer dir.Close() //nolint:errcheck // read-only handle

	return dir.ReadDir(0)
}

// ReadFile reads a file with path validation and returns its contents.
// When a maximum read size is configured, files larger than the limit are
// rejected before any bytes are read.
func (sfs *SecureFS) ReadFile(path string) ([]byte, error) {
	file, err := sfs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck // read-only handle

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotRegularFile, path)
	}

	if sfs.maxReadFileSize > 0 && info.Size() > sfs.maxReadFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d",
			ErrFileTooLarge, info.Size(), sfs.maxReadFileSize)
	}

	return io.ReadAll(file)
}

// Exists checks if a path exists with validation.
func (sfs *SecureFS) Exists(path string) (bool, error) {
	_, err := sfs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
