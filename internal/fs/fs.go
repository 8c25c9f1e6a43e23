// Package fs is the file-system abstraction threaded through the resolver,
// project index and CLI so tests can run against an in-memory tree instead
// of touching disk.
package fs

import "errors"

var ErrNotFound = errors.New("file not found")

// FS is implemented by RealFS (the CLI and LSP server) and MockFS (tests).
// It is intentionally smaller than a general-purpose virtual filesystem:
// HQL never mounts zip archives or watches via polling, so only the calls
// the resolver and project scanner actually make are here.
type FS interface {
	ReadFile(path string) (contents string, err error)
	ReadDirectory(path string) (entries []DirEntry, err error)
	Stat(path string) (modTime int64, err error)

	IsAbs(path string) bool
	Abs(path string) (string, bool)
	Dir(path string) string
	Base(path string) string
	Ext(path string) string
	Join(parts ...string) string
	Rel(base, target string) (string, bool)
	Cwd() string
}

type EntryKind uint8

const (
	FileEntryKind EntryKind = iota
	DirEntryKind
)

// DirEntry is one result of ReadDirectory.
type DirEntry struct {
	Name string
	Kind EntryKind
}
