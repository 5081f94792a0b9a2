package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tenantconsole-backend/shared/config"
	"tenantconsole-backend/shared/database"
	"tenantconsole-backend/shared/logger"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type Globals struct {
	Config *config.Config
	Log    *zap.Logger
}

// SeedCmd migrates the schema and loads the demo tenants.
type SeedCmd struct{}

func (c *SeedCmd) Run(ctx context.Context, g *Globals) error {
	db, err := database.InitDatabase(g.Config, g.Log)
	if err != nil {
		return err
	}
	defer database.CloseDatabase()

	if err := database.SeedDemoData(ctx, database.NewRepository(db), g.Log); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	g.Log.Info("database seeding completed")
	return nil
}

// ResetCmd drops every table and optionally recreates the schema.
type ResetCmd struct {
	Yes     bool `help:"Do not ask for confirmation." short:"y"`
	Migrate bool `help:"Recreate the schema after dropping it." default:"true" negatable:""`
	Seed    bool `help:"Load the demo tenants after migrating."`
}

func (c *ResetCmd) Run(ctx context.Context, g *Globals) error {
	if !c.Yes {
		fmt.Printf("Drop every table of %s on %s? [y/N] ", g.Config.DBName, g.Config.DBHost)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			g.Log.Info("reset aborted")
			return nil
		}
	}

	db, err := database.InitDatabase(g.Config, g.Log)
	if err != nil {
		return err
	}
	defer database.CloseDatabase()

	if err := database.DropAll(db); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	g.Log.Info("all tables dropped")

	if !c.Migrate {
		return nil
	}
	if err := database.RunMigrations(db, g.Log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if c.Seed {
		if err := database.SeedDemoData(ctx, database.NewRepository(db), g.Log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	g.Log.Info("database reset completed")
	return nil
}

// MigrateCmd creates or updates the schema without touching data.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(g *Globals) error {
	_, err := database.InitDatabase(g.Config, g.Log)
	if err != nil {
		return err
	}
	return database.CloseDatabase()
}

var cli struct {
	Seed    SeedCmd    `cmd:"" help:"Migrate and load demo data."`
	Reset   ResetCmd   `cmd:"" help:"Drop all tables."`
	Migrate MigrateCmd `cmd:"" help:"Run schema migrations."`
	Debug   bool       `help:"Enable development logging."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("dbtool"),
		kong.Description("Tenant console database maintenance."),
		kong.BindTo(ctx, (*context.Context)(nil)))

	config.LoadConfig()
	cfg := config.GetConfig()
	cfg.StoreType = "postgres"
	if cli.Debug {
		cfg.LogDevelopment = true
		cfg.LogLevel = "debug"
	}
	log := logger.Must(cfg.LogLevel, cfg.LogDevelopment)
	defer log.Sync()

	err := kctx.Run(&Globals{Config: cfg, Log: log})
	kctx.FatalIfErrorf(err)
}
