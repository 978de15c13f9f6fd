// Package fileops implements directory listing and file reading on top of a
// validated filesystem sandbox. All failures carry error categories that the
// transport layer maps to HTTP status codes.
package fileops

import (
	"io/fs"
	"time"
)

// FileEntry describes one file or directory produced by a listing. Paths are
// canonical absolute paths as resolved by the sandbox, with one exception:
// a symlinked entry keeps the link's own path while its size and mtime
// describe the link target.
type FileEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	IsDir    bool      `json:"is_dir"`
	Size     *int64    `json:"size"`     // nil iff IsDir
	Modified time.Time `json:"modified"` // mtime at enumeration time
}

// ReadResult holds decoded file content. Encoding is the character set name
// the content was decoded with, or "base64" when the bytes did not decode.
type ReadResult struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// EncodingBase64 labels content that is base64 of the raw file bytes.
const EncodingBase64 = "base64"

// newEntry builds a FileEntry from stat metadata.
func newEntry(name, canonicalPath string, info fs.FileInfo) FileEntry {
	entry := FileEntry{
		Name:     name,
		Path:     canonicalPath,
		IsDir:    info.IsDir(),
		Modified: info.ModTime(),
	}
	if !info.IsDir() {
		size := info.Size()
		entry.Size = &size
	}
	return entry
}
