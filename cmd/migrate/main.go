// Command migrate applies, inspects and rolls back the database schema.
package main

import (
	"fmt"
	"log"
	"os"

	"workstation/internal/config"
	"workstation/internal/database"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "Workstation Hub schema operations",
		Commands: []*cli.Command{
			{Name: "up", Usage: "Apply pending SQL migrations", Action: withDB(up)},
			{Name: "auto", Usage: "Run GORM AutoMigrate over every model", Action: withDB(auto)},
			{Name: "status", Usage: "Show applied and pending migrations", Action: withDB(status)},
			{
				Name:      "down",
				Usage:     "Roll back one migration",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "version", Required: true},
				},
				Action: withDB(down),
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type dbAction func(c *cli.Context, cfg *config.Config, db *gorm.DB) error

// withDB connects without applying the schema policy so every command
// controls exactly what runs.
func withDB(next dbAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		return next(c, cfg, db)
	}
}

func up(c *cli.Context, _ *config.Config, db *gorm.DB) error {
	if err := database.RunMigrations(c.Context, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Println("sql migrations applied")
	return nil
}

func auto(c *cli.Context, cfg *config.Config, db *gorm.DB) error {
	cfg.DBSchemaMode = config.SchemaModeAuto
	if err := database.ApplySchema(c.Context, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}

func status(c *cli.Context, cfg *config.Config, db *gorm.DB) error {
	st, err := database.GetSchemaStatus(c.Context, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d",
		st.Mode, st.Environment, st.RunSQL, st.RunAuto, len(st.AppliedVersions), len(st.PendingMigrations))
	for _, m := range st.PendingMigrations {
		log.Printf("pending: %s", m.String())
	}
	for _, name := range st.MissingIndexes {
		log.Printf("missing unique index: %s", name)
	}
	return nil
}

func down(c *cli.Context, _ *config.Config, db *gorm.DB) error {
	version := c.Int("version")
	if err := database.RollbackMigration(c.Context, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}
