package sites

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/goose-online/goose-sites/internal/models"
)

// WalkResult is the outcome of one pass over the sites tree.
type WalkResult struct {
	// Records holds every site that extracted cleanly, valid or not, in
	// directory-listing order.
	Records []models.SiteRecord
	// Users is the deduplicated set of user directory names.
	Users map[string]struct{}
	// TotalSiteDirs counts every site directory, including skipped ones.
	TotalSiteDirs int
}

// UserCount returns the number of distinct users seen.
func (w *WalkResult) UserCount() int { return len(w.Users) }

// SiteDir identifies one root/user/site directory.
type SiteDir struct {
	User string
	Site string
	Path string
}

// ListSiteDirs returns every directory exactly two levels below root. Failure
// to read root or a user directory is fatal. users receives every user
// directory, including those without sites.
func ListSiteDirs(root string) (dirs []SiteDir, users []string, err error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("sites: read root: %w", err)
	}
	for _, u := range entries {
		if !u.IsDir() {
			continue
		}
		users = append(users, u.Name())
		userPath := filepath.Join(root, u.Name())
		siteEntries, err := os.ReadDir(userPath)
		if err != nil {
			return nil, nil, fmt.Errorf("sites: read user %s: %w", u.Name(), err)
		}
		for _, s := range siteEntries {
			if !s.IsDir() {
				continue
			}
			dirs = append(dirs, SiteDir{
				User: u.Name(),
				Site: s.Name(),
				Path: filepath.Join(userPath, s.Name()),
			})
		}
	}
	return dirs, users, nil
}

// Walk traverses root/user/site, extracting each site with up to workers
// goroutines. Sites that fail extraction are logged and left out of Records.
func Walk(ctx context.Context, root string, workers int, logger *slog.Logger) (*WalkResult, error) {
	dirs, users, err := ListSiteDirs(root)
	if err != nil {
		return nil, err
	}

	res := &WalkResult{
		Users:         make(map[string]struct{}, len(users)),
		TotalSiteDirs: len(dirs),
	}
	for _, u := range users {
		res.Users[u] = struct{}{}
	}

	// Indexed slots keep the output order independent of scheduling.
	slots := make([]*models.SiteRecord, len(dirs))

	g, gCtx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, d := range dirs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rec, err := Extract(root, d.Path)
			if err != nil {
				logger.Warn("walk: skipping site",
					slog.String("path", d.Path),
					slog.String("error", err.Error()))
				return nil
			}
			slots[i] = rec
			logger.Debug("walk: extracted",
				slog.String("path", rec.Path),
				slog.Bool("valid", rec.IsValid))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sites: walk: %w", err)
	}

	for _, rec := range slots {
		if rec != nil {
			res.Records = append(res.Records, *rec)
		}
	}
	return res, nil
}
