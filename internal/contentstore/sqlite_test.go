package contentstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goose-online/goose-sites/internal/apperr"
	"github.com/goose-online/goose-sites/internal/checksum"
)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteAndReadFile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.WriteFile(ctx, "index.json", []byte(`{"a":1}`), "Update index"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := s.ReadFile(ctx, "index.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(f.Content) != `{"a":1}` || f.Size != 7 {
		t.Errorf("file = %+v", f)
	}
	if f.Revision != checksum.Revision([]byte(`{"a":1}`)) {
		t.Errorf("revision = %q", f.Revision)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.ReadFile(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWriteFile_Overwrite(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_ = s.WriteFile(ctx, "README.md", []byte("v1"), "first")
	if err := s.WriteFile(ctx, "/README.md", []byte("v2"), "second"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, _ := s.ReadFile(ctx, "README.md")
	if string(f.Content) != "v2" {
		t.Errorf("content = %q", f.Content)
	}
	h, err := s.History(ctx, "README.md")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 2 || h[0].Message != "first" || h[1].Message != "second" {
		t.Errorf("history = %+v", h)
	}
}

func TestDeleteFile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_ = s.WriteFile(ctx, "violations.json", []byte("[]"), "")
	if err := s.DeleteFile(ctx, "violations.json", "clean"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := s.ReadFile(ctx, "violations.json"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("file still present: %v", err)
	}
	if err := s.DeleteFile(ctx, "violations.json", "again"); err != nil {
		t.Errorf("deleting absent file should succeed: %v", err)
	}
}

func TestFoldersAndListings(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.CreateFolder(ctx, "alice", "blog"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	_ = s.WriteFile(ctx, "sites/alice/blog/index.html", []byte("12345"), "")
	_ = s.WriteFile(ctx, "sites/alice/blog/img/a.png", []byte("1234567890"), "")
	_ = s.WriteFile(ctx, "sites/alice/notes/index.html", []byte("123"), "")
	_ = s.WriteFile(ctx, "sites/alice_two/x/index.html", []byte("1"), "")
	_ = s.WriteFile(ctx, "sites/alice/stray.txt", []byte("zz"), "")

	userSites, err := s.ListUserSites(ctx, "alice")
	if err != nil {
		t.Fatalf("ListUserSites: %v", err)
	}
	if len(userSites) != 2 || userSites[0].Name != "blog" || userSites[1].Name != "notes" {
		t.Errorf("user sites = %+v", userSites)
	}
	if userSites[0].Path != "sites/alice/blog" || userSites[0].Type != TypeDir {
		t.Errorf("entry = %+v", userSites[0])
	}

	files, err := s.ListSiteFiles(ctx, "alice", "blog")
	if err != nil {
		t.Fatalf("ListSiteFiles: %v", err)
	}
	names := map[string]string{}
	for _, f := range files {
		names[f.Name] = f.Type
	}
	if len(files) != 3 || names[KeepFile] != TypeFile || names["index.html"] != TypeFile || names["img"] != TypeDir {
		t.Errorf("site files = %+v", files)
	}

	n, err := s.FolderSizeBytes(ctx, "sites/alice/blog")
	if err != nil {
		t.Fatalf("FolderSizeBytes: %v", err)
	}
	if n != 15 {
		t.Errorf("blog size = %d, want 15", n)
	}
	n, _ = s.FolderSizeBytes(ctx, "sites/alice")
	if n != 20 {
		t.Errorf("alice size = %d, want 20", n)
	}
	n, _ = s.FolderSizeBytes(ctx, "sites/nobody")
	if n != 0 {
		t.Errorf("missing folder size = %d, want 0", n)
	}
}
