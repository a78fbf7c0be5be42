package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/goose-online/goose-sites/internal"
	"github.com/goose-online/goose-sites/internal/apperr"
	pkgconfig "github.com/goose-online/goose-sites/pkg/config"
)

// commonFlags are accepted by every subcommand.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "goosesites.yaml",
			Value:       "goosesites.yaml",
			Sources:     cli.EnvVars("GOOSE_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "root",
			Usage:   "Project root that holds the sites tree and artifacts",
			Sources: cli.EnvVars("GOOSE_ROOT"),
		},
		&cli.StringFlag{
			Name:    "sites-dir",
			Usage:   "Sites directory, relative to the project root",
			Sources: cli.EnvVars("GOOSE_SITES_DIR"),
		},
	}
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Paths.Root = root
	}
	if dir := cmd.String("sites-dir"); dir != "" {
		cfg.Paths.SitesDir = dir
	}
	return cfg, nil
}

func buildIndex(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.RunBuildIndex(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	return nil
}

func checkLimits(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	res, err := internal.RunCheckLimits(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("check limits: %w", err)
	}
	if !res.WithinLimits() {
		return cli.Exit(fmt.Sprintf("%v: %d violation(s)", apperr.ErrLimitsExceeded, len(res.Violations)), 1)
	}
	return nil
}

func mirror(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMirror(ctx, cmd.Bool("sites"), internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

func remoteUsage(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h, err := internal.RunRemoteUsage(ctx, cmd.Args().First(), internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("remote usage: %w", err)
	}
	if h.OverLimit {
		return cli.Exit(fmt.Sprintf("%v: %s uses %.2f of %g MB", apperr.ErrLimitsExceeded, cmd.Args().First(), h.UsedMB, h.LimitMB), 1)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "goosesites",
		Usage: "Catalog user-published static sites and enforce storage quotas",
		Commands: []*cli.Command{
			{
				Name:   "build-index",
				Usage:  "Scan the sites tree and write index.json and README.md",
				Flags:  commonFlags(),
				Action: buildIndex,
			},
			{
				Name:   "check-limits",
				Usage:  "Measure site sizes; exit non-zero when a storage limit is exceeded",
				Flags:  commonFlags(),
				Action: checkLimits,
			},
			{
				Name:  "mirror",
				Usage: "Push generated artifacts into the content store",
				Flags: append(commonFlags(), &cli.BoolFlag{
					Name:  "sites",
					Usage: "Also push every site file",
				}),
				Action: mirror,
			},
			{
				Name:      "remote-usage",
				Usage:     "Show an owner's stored usage and headroom",
				ArgsUsage: "<owner>",
				Flags:     commonFlags(),
				Action:    remoteUsage,
			},
		},
	}
}

func main() {
	cmd := newCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
