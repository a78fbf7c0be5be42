// Package storage defines the project file-system abstraction used to read
// site files and publish generated artifacts.
package storage

import "time"

// FileInfo describes one regular file found by List.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Provider is the interface for project file operations. All paths are
// relative to the provider root.
type Provider interface {
	// List returns every regular file under dir in lexical order.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Remove deletes the file at path. A missing file is not an error.
	Remove(path string) error
	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)
}
