package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "command: up|down|status|version|create|validate|seed")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// create and validate only touch the filesystem.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": opts.cmd, "dir": opts.dir})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	if opts.cmd == "seed" {
		svc, err := inventory.NewService(inventory.NewRepository(client.DB()), client, logg)
		if err != nil {
			return err
		}
		inserted, err := svc.Seed(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "drugs", inserted), "inventory seeded")
		return nil
	}

	if cfg.DB.IsSQLite() {
		return fmt.Errorf("goose migrations target postgres; sqlite schemas come from PHARMABOT_AUTO_MIGRATE")
	}
	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}

	logg.Info(ctx, "migrate ready")
	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}
}
