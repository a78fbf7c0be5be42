package contentstore

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/goose-online/goose-sites/internal/apperr"
	"github.com/goose-online/goose-sites/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func localProject(t *testing.T) *storage.FS {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestMirror_WritesAndDeletesOptional(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	local := localProject(t)
	_ = local.Write("index.json", []byte(`{"sites":[]}`))
	_ = local.Write("README.md", []byte("# readme"))
	_ = s.WriteFile(ctx, "violations.json", []byte("[stale]"), "")

	artifacts := []Artifact{
		{Local: "index.json", Remote: "index.json"},
		{Local: "README.md", Remote: "README.md"},
		{Local: "violations.json", Remote: "violations.json", Optional: true},
	}
	if err := Mirror(ctx, s, local, artifacts, "Update catalog", quietLogger()); err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	f, err := s.ReadFile(ctx, "README.md")
	if err != nil || string(f.Content) != "# readme" {
		t.Errorf("README.md = %v, %v", f, err)
	}
	if _, err := s.ReadFile(ctx, "violations.json"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale violations should be deleted, got %v", err)
	}

	// A second identical run leaves history untouched.
	if err := Mirror(ctx, s, local, artifacts, "Update catalog", quietLogger()); err != nil {
		t.Fatalf("Mirror again: %v", err)
	}
	h, _ := s.History(ctx, "index.json")
	if len(h) != 1 {
		t.Errorf("history entries = %d, want 1", len(h))
	}
}

func TestMirror_CollectsAllFailures(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	local := localProject(t)
	_ = local.Write("README.md", []byte("ok"))

	err := Mirror(ctx, s, local, []Artifact{
		{Local: "index.json", Remote: "index.json"},
		{Local: "README.md", Remote: "README.md"},
		{Local: "other.json", Remote: "other.json"},
	}, "msg", quietLogger())
	if err == nil {
		t.Fatal("expected error for missing required artifacts")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound in chain", err)
	}
	if _, rerr := s.ReadFile(ctx, "README.md"); rerr != nil {
		t.Errorf("present artifact should still be mirrored: %v", rerr)
	}
}

func TestMirrorSitesAndOwnerUsage(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	local := localProject(t)
	_ = local.Write("sites/alice/blog/index.html", []byte("<title>x</title>"))
	_ = local.Write("sites/alice/blog/css/site.css", []byte("body{}"))
	_ = local.Write("sites/alice/notes/goose.json", []byte("{}"))
	_ = local.Write("sites/alice/loose.txt", []byte("ignored"))

	if err := MirrorSites(ctx, s, local, "./sites", "Sync sites", quietLogger()); err != nil {
		t.Fatalf("MirrorSites: %v", err)
	}
	if _, err := s.ReadFile(ctx, "sites/alice/blog/.keep"); err != nil {
		t.Errorf("site folder marker missing: %v", err)
	}
	if _, err := s.ReadFile(ctx, "sites/alice/loose.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("files outside site folders should not be mirrored")
	}

	// Re-running is a no-op rather than a conflict.
	if err := MirrorSites(ctx, s, local, "sites", "Sync sites", quietLogger()); err != nil {
		t.Fatalf("MirrorSites again: %v", err)
	}

	usage, total, err := OwnerUsage(ctx, s, "alice")
	if err != nil {
		t.Fatalf("OwnerUsage: %v", err)
	}
	if len(usage) != 2 || usage[0].Name != "blog" || usage[0].Bytes != 22 || usage[0].Entries != 3 {
		t.Errorf("usage = %+v", usage)
	}
	if total != 24 {
		t.Errorf("total = %d, want 24", total)
	}
}
