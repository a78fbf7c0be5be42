// Package testutil provides shared test helpers for building sites trees and
// content stores.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goose-online/goose-sites/internal/contentstore"
)

// Site describes a fixture site directory.
type Site struct {
	User   string
	Name   string
	Config map[string]any // written as goose.json when non-nil
	HTML   string         // written as index.html when non-empty
}

// SitesTree creates a temporary sites root populated with the given sites.
func SitesTree(t *testing.T, sites ...Site) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "sites")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, s := range sites {
		AddSite(t, root, s)
	}
	return root
}

// AddSite writes one fixture site below root and returns its directory.
func AddSite(t *testing.T, root string, s Site) string {
	t.Helper()
	dir := filepath.Join(root, s.User, s.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if s.Config != nil {
		data, err := json.Marshal(s.Config)
		if err != nil {
			t.Fatal(err)
		}
		WriteFile(t, filepath.Join(dir, "goose.json"), data)
	}
	if s.HTML != "" {
		WriteFile(t, filepath.Join(dir, "index.html"), []byte(s.HTML))
	}
	return dir
}

// Page returns a minimal HTML page with the given title and description.
func Page(title, description string) string {
	return fmt.Sprintf("<html><head><title>%s | Гусиный Интернет</title>"+
		"<meta name=\"description\" content=\"%s\"></head><body></body></html>", title, description)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// SparseFile creates a file of the given logical size without allocating
// its blocks, so quota tests can use realistic megabyte figures.
func SparseFile(t *testing.T, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatal(err)
	}
}

// TestStore opens a temporary SQLite content store that is closed on cleanup.
func TestStore(t *testing.T) *contentstore.SQLite {
	t.Helper()
	store, err := contentstore.OpenSQLite(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
