// Package contentstore mirrors generated artifacts and site files into a
// revisioned key-value content store.
package contentstore

import (
	"context"
	"path"
)

// SitesPrefix is the top-level folder holding owner/site trees in the store.
const SitesPrefix = "sites"

// KeepFile marks an otherwise empty site folder.
const KeepFile = ".keep"

// Entry types.
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Entry is one child of a store folder.
type Entry struct {
	Name string
	Path string
	Type string
	Size int64
}

// File is the stored content of one path together with its revision marker.
type File struct {
	Path     string
	Content  []byte
	Revision string
	Size     int64
}

// Store is the content-store contract. Every call is a single best-effort
// operation; callers do not assume retries.
type Store interface {
	// CreateFolder creates sites/<owner>/<name> by writing a marker file.
	CreateFolder(ctx context.Context, owner, name string) error
	// ListUserSites returns the site folders of owner.
	ListUserSites(ctx context.Context, owner string) ([]Entry, error)
	// ListSiteFiles returns the immediate children of sites/<owner>/<name>.
	ListSiteFiles(ctx context.Context, owner, name string) ([]Entry, error)
	// ReadFile returns the file at p or apperr.ErrNotFound.
	ReadFile(ctx context.Context, p string) (*File, error)
	// WriteFile creates or replaces p. The current revision is read first
	// and the write fails with apperr.ErrConflict if it changed meanwhile.
	WriteFile(ctx context.Context, p string, content []byte, message string) error
	// DeleteFile removes p. A missing file is not an error.
	DeleteFile(ctx context.Context, p, message string) error
	// FolderSizeBytes sums the sizes of all files under p.
	FolderSizeBytes(ctx context.Context, p string) (int64, error)
	Close() error
}

// SitePath returns the store folder of one site.
func SitePath(owner, name string) string {
	return path.Join(SitesPrefix, owner, name)
}
