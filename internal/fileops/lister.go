package fileops

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcpgate/mcpgate/internal/errors"
	"github.com/mcpgate/mcpgate/internal/securefs"
)

// Lister enumerates directory entries within the sandbox.
type Lister struct {
	sfs    *securefs.SecureFS
	logger *slog.Logger
}

// NewLister creates a Lister over the given sandbox.
func NewLister(sfs *securefs.SecureFS, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{sfs: sfs, logger: logger}
}

// List enumerates rawPath. Non-recursive mode returns the direct children in
// filesystem enumeration order. Recursive mode performs a depth-first walk
// of the whole subtree, one entry per file and per directory, with no entry
// for the walk root itself.
//
// Listing a regular file returns a single-element result describing that
// file. Metadata is read per entry at enumeration time; a tree mutated
// concurrently yields a best-effort result.
func (l *Lister) List(ctx context.Context, rawPath string, recursive bool) ([]FileEntry, error) {
	canonical, err := l.sfs.Resolve(rawPath)
	if err != nil {
		return nil, err
	}

	info, err := l.sfs.Stat(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf("path not found: %s", rawPath).
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil, errors.Wrap(err).
			Category(errors.CategoryFileIO).
			Context("path", canonical).
			Build()
	}

	if !info.IsDir() {
		return []FileEntry{newEntry(filepath.Base(canonical), canonical, info)}, nil
	}

	entries := make([]FileEntry, 0, 16)
	if err := l.listDir(ctx, canonical, recursive, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// listDir appends one FileEntry per child of dir, recursing into
// subdirectories when recursive is set.
func (l *Lister) listDir(ctx context.Context, dir string, recursive bool, out *[]FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := l.sfs.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryFileIO).
			Context("path", dir).
			Build()
	}

	for _, child := range children {
		childPath := filepath.Join(dir, child.Name())

		info, err := l.statEntry(childPath, child)
		if err != nil {
			// Entry vanished or is unreadable mid-walk; skip it
			l.logger.Debug("skipping unreadable entry",
				"path", childPath, "error", err)
			continue
		}

		*out = append(*out, newEntry(child.Name(), childPath, info))

		// Recurse on real directories only; symlinked directories are
		// reported but not descended, so link cycles cannot loop the walk.
		if recursive && child.IsDir() {
			if err := l.listDir(ctx, childPath, true, out); err != nil {
				return err
			}
		}
	}

	return nil
}

// statEntry returns metadata for a directory child, following symlinks when
// the target is still inside the sandbox. A symlink whose target is missing
// or outside the sandbox reports the link's own metadata.
func (l *Lister) statEntry(childPath string, child fs.DirEntry) (fs.FileInfo, error) {
	info, err := child.Info()
	if err != nil {
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if target, err := l.sfs.Stat(childPath); err == nil {
			return target, nil
		}
	}

	return info, nil
}
