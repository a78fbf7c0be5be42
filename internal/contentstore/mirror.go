package contentstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/goose-online/goose-sites/internal/apperr"
	"github.com/goose-online/goose-sites/internal/checksum"
	"github.com/goose-online/goose-sites/internal/storage"
)

// Artifact maps a local project file to its store path.
type Artifact struct {
	Local  string
	Remote string
	// Optional artifacts that are absent locally are deleted remotely.
	Optional bool
}

// Mirror pushes local artifacts into store. Every artifact is attempted;
// failures are collected and returned together.
func Mirror(ctx context.Context, store Store, local storage.Provider, artifacts []Artifact, message string, logger *slog.Logger) error {
	var result *multierror.Error
	for _, a := range artifacts {
		if err := mirrorOne(ctx, store, local, a, message, logger); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", a.Remote, err))
		}
	}
	return result.ErrorOrNil()
}

func mirrorOne(ctx context.Context, store Store, local storage.Provider, a Artifact, message string, logger *slog.Logger) error {
	ok, err := local.Exists(a.Local)
	if err != nil {
		return err
	}
	if !ok {
		if !a.Optional {
			return fmt.Errorf("local artifact %s: %w", a.Local, apperr.ErrNotFound)
		}
		if err := store.DeleteFile(ctx, a.Remote, message); err != nil {
			return err
		}
		logger.Debug("mirror: removed", slog.String("path", a.Remote))
		return nil
	}

	data, err := local.Read(a.Local)
	if err != nil {
		return err
	}
	return push(ctx, store, a.Remote, data, message, logger)
}

// push writes data unless the store already holds identical content.
func push(ctx context.Context, store Store, remote string, data []byte, message string, logger *slog.Logger) error {
	cur, err := store.ReadFile(ctx, remote)
	switch {
	case err == nil && checksum.Matches(data, cur.Revision):
		logger.Debug("mirror: unchanged", slog.String("path", remote))
		return nil
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return err
	}
	if err := store.WriteFile(ctx, remote, data, message); err != nil {
		return err
	}
	logger.Info("mirror: written", slog.String("path", remote), slog.Int("bytes", len(data)))
	return nil
}

// MirrorSites pushes every file of every site below sitesDir into the store
// under sites/<owner>/<name>/..., creating the site folders first. Files
// that are not inside a site directory are ignored.
func MirrorSites(ctx context.Context, store Store, local storage.Provider, sitesDir, message string, logger *slog.Logger) error {
	files, err := local.List(sitesDir)
	if err != nil {
		return err
	}

	base := strings.Trim(path.Clean("/"+sitesDir), "/")
	var result *multierror.Error
	created := make(map[string]struct{})
	for _, f := range files {
		rel := strings.TrimPrefix(f.Path, base+"/")
		parts := strings.SplitN(rel, "/", 3)
		if len(parts) < 3 {
			continue
		}
		owner, name := parts[0], parts[1]
		site := SitePath(owner, name)
		if _, ok := created[site]; !ok {
			created[site] = struct{}{}
			if err := ensureFolder(ctx, store, owner, name); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", site, err))
				continue
			}
		}

		data, err := local.Read(f.Path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := push(ctx, store, path.Join(site, parts[2]), data, message, logger); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", f.Path, err))
		}
	}
	return result.ErrorOrNil()
}

func ensureFolder(ctx context.Context, store Store, owner, name string) error {
	_, err := store.ReadFile(ctx, path.Join(SitePath(owner, name), KeepFile))
	if errors.Is(err, apperr.ErrNotFound) {
		return store.CreateFolder(ctx, owner, name)
	}
	return err
}

// SiteUsage is the stored size of one site folder.
type SiteUsage struct {
	Name    string
	Bytes   int64
	Entries int
}

// OwnerUsage lists the sites of owner with their stored sizes and returns
// the owner's total.
func OwnerUsage(ctx context.Context, store Store, owner string) ([]SiteUsage, int64, error) {
	entries, err := store.ListUserSites(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SiteUsage, 0, len(entries))
	for _, e := range entries {
		n, err := store.FolderSizeBytes(ctx, e.Path)
		if err != nil {
			return nil, 0, err
		}
		children, err := store.ListSiteFiles(ctx, owner, e.Name)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, SiteUsage{Name: e.Name, Bytes: n, Entries: len(children)})
	}
	total, err := store.FolderSizeBytes(ctx, path.Join(SitesPrefix, owner))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
