// Package internal provides the application initialization and the batch
// pipelines behind each command.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/goose-online/goose-sites/internal/catalog"
	"github.com/goose-online/goose-sites/internal/contentstore"
	"github.com/goose-online/goose-sites/internal/dirsize"
	"github.com/goose-online/goose-sites/internal/models"
	"github.com/goose-online/goose-sites/internal/quota"
	"github.com/goose-online/goose-sites/internal/sites"
	"github.com/goose-online/goose-sites/internal/storage"
)

// setup applies opts, installs the logger and opens the project root,
// provisioning an empty sites directory when it is missing.
func setup(opts []Option) (*application, *slog.Logger, *storage.FS, error) {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	handlerOpts := &slog.HandlerOptions{Level: cfg.App.LogLevel}
	var handler slog.Handler = slog.NewJSONHandler(app.stderr, handlerOpts)
	if cfg.App.LogFormat == LogFormatText {
		handler = slog.NewTextHandler(app.stderr, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	project, err := storage.NewFS(cfg.Paths.Root)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open project root: %w", err)
	}

	sitesDir := app.sitesDir(project)
	if _, err := os.Stat(sitesDir); os.IsNotExist(err) {
		logger.Info("Creating sites directory", slog.String("path", sitesDir))
	}
	if err := os.MkdirAll(sitesDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create sites dir: %w", err)
	}

	logger.Debug("Configuration loaded",
		slog.String("root", project.Root()),
		slog.String("sites_dir", sitesDir),
		slog.Float64("per_site_mb", cfg.Limits.PerSiteMB),
		slog.Float64("total_mb", cfg.Limits.TotalMB),
		slog.Int("workers", cfg.Scan.Workers))

	return app, logger, project, nil
}

func (a *application) sitesDir(project *storage.FS) string {
	return filepath.Join(project.Root(), a.config.Paths.SitesDir)
}

// RunBuildIndex walks the sites tree, writes the catalog document and the
// README summary, and returns the catalog.
func RunBuildIndex(ctx context.Context, opts ...Option) (*models.Catalog, error) {
	app, logger, project, err := setup(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	logger.Info("Scanning sites directory", slog.String("path", cfg.Paths.SitesDir))
	res, err := sites.Walk(ctx, app.sitesDir(project), cfg.Scan.Workers, logger)
	if err != nil {
		return nil, fmt.Errorf("walk sites: %w", err)
	}

	cat := catalog.Assemble(res.Records, res.UserCount(), res.TotalSiteDirs, app.now())
	if err := storage.WriteJSON(project, cfg.Paths.CatalogFile, cat); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	logger.Info("Index built",
		slog.Int("valid_sites", cat.Metadata.ValidSites),
		slog.Int("total_sites", cat.Metadata.TotalSites),
		slog.Int("users", cat.Metadata.TotalUsers),
		slog.String("path", cfg.Paths.CatalogFile))

	readme, err := catalog.Render(cat)
	if err != nil {
		return nil, err
	}
	if err := project.Write(cfg.Paths.ReadmeFile, []byte(readme)); err != nil {
		return nil, fmt.Errorf("write readme: %w", err)
	}
	logger.Info("README updated", slog.String("path", cfg.Paths.ReadmeFile))

	return cat, nil
}

// RunCheckLimits measures every site, prints the summary and writes the
// violations artifact when limits are exceeded. A stale artifact is removed
// when they are not. Exceeded limits are reported through the result only.
func RunCheckLimits(ctx context.Context, opts ...Option) (*quota.Result, error) {
	app, logger, project, err := setup(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	logger.Info("Checking site sizes", slog.String("path", cfg.Paths.SitesDir))
	res, err := quota.Evaluate(ctx, app.sitesDir(project), quota.Limits{
		PerSiteMB: cfg.Limits.PerSiteMB,
		TotalMB:   cfg.Limits.TotalMB,
	}, cfg.Scan.Workers)
	if err != nil {
		return nil, fmt.Errorf("check limits: %w", err)
	}

	for _, u := range res.PerSite {
		logger.Info("Site usage",
			slog.String("site", u.User+"/"+u.Site),
			slog.String("size", humanize.IBytes(uint64(u.Bytes))),
			slog.Float64("size_mb", u.SizeMB))
	}
	quota.WriteSummary(app.stdout, res)

	if res.WithinLimits() {
		if err := project.Remove(cfg.Paths.ViolationsFile); err != nil {
			return nil, fmt.Errorf("remove stale violations: %w", err)
		}
		logger.Info("All limits are satisfied", slog.Float64("total_mb", dirsize.Round2(res.TotalUsedMB)))
		return res, nil
	}

	if err := storage.WriteJSON(project, cfg.Paths.ViolationsFile, res.Violations); err != nil {
		return nil, fmt.Errorf("write violations: %w", err)
	}
	logger.Warn("Violations found",
		slog.Int("count", len(res.Violations)),
		slog.String("path", cfg.Paths.ViolationsFile))
	return res, nil
}

func (a *application) openStore(project *storage.FS) (*contentstore.SQLite, error) {
	p := a.config.Mirror.SQLitePath
	if !filepath.IsAbs(p) {
		p = filepath.Join(project.Root(), p)
	}
	store, err := contentstore.OpenSQLite(p)
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	return store, nil
}

// RunMirror pushes the finalized artifacts, and optionally every site file,
// into the content store.
func RunMirror(ctx context.Context, includeSites bool, opts ...Option) error {
	app, logger, project, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	store, err := app.openStore(project)
	if err != nil {
		return err
	}
	defer store.Close()

	artifacts := []contentstore.Artifact{
		{Local: cfg.Paths.CatalogFile, Remote: filepath.ToSlash(cfg.Paths.CatalogFile)},
		{Local: cfg.Paths.ReadmeFile, Remote: filepath.ToSlash(cfg.Paths.ReadmeFile)},
		{Local: cfg.Paths.ViolationsFile, Remote: filepath.ToSlash(cfg.Paths.ViolationsFile), Optional: true},
	}
	if err := contentstore.Mirror(ctx, store, project, artifacts, cfg.Mirror.Message, logger); err != nil {
		return fmt.Errorf("mirror artifacts: %w", err)
	}

	if includeSites {
		if err := contentstore.MirrorSites(ctx, store, project, cfg.Paths.SitesDir, cfg.Mirror.Message, logger); err != nil {
			return fmt.Errorf("mirror sites: %w", err)
		}
	}
	logger.Info("Mirror complete", slog.Bool("sites", includeSites))
	return nil
}

// RunRemoteUsage reports the stored usage of owner against the per-site
// ceiling and returns the headroom.
func RunRemoteUsage(ctx context.Context, owner string, opts ...Option) (*quota.Headroom, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	app, _, project, err := setup(opts)
	if err != nil {
		return nil, err
	}

	store, err := app.openStore(project)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	usage, total, err := contentstore.OwnerUsage(ctx, store, owner)
	if err != nil {
		return nil, fmt.Errorf("owner usage: %w", err)
	}
	rows := make([]quota.OwnerRow, 0, len(usage))
	for _, u := range usage {
		rows = append(rows, quota.OwnerRow{Site: u.Name, Entries: u.Entries, Bytes: u.Bytes})
	}
	h := quota.NewHeadroom(dirsize.MiB(total), app.config.Limits.PerSiteMB)
	quota.WriteOwnerUsage(app.stdout, owner, rows, h)
	return &h, nil
}
