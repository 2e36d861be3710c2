package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"workstation/internal/config"
	"workstation/internal/middleware"
	"workstation/internal/models"

	"gorm.io/gorm"
)

// pairIndex is a unique index that lets concurrent inserts of the same
// pair converge on one row. The conversation, membership and join request
// writers rely on ON CONFLICT against these.
type pairIndex struct {
	model interface{}
	name  string
}

var pairIndexes = []pairIndex{
	{&models.Conversation{}, "idx_conversation_pair"},
	{&models.ProjectMembership{}, "idx_membership_user_project"},
	{&models.JoinRequest{}, "idx_join_request_user_project"},
}

// SchemaPlan is what ApplySchema does for a configuration.
type SchemaPlan struct {
	Mode        string
	Environment string
	RunSQL      bool
	RunAuto     bool
}

// SchemaStatus is a SchemaPlan plus the migration and index state of the database.
type SchemaStatus struct {
	SchemaPlan
	AppliedVersions   []int
	PendingMigrations []Migration
	MissingIndexes    []string
}

// planSchema maps DB_SCHEMA_MODE to actions. Hybrid applies SQL migrations
// and, outside production and staging, lets AutoMigrate fill in new columns.
func planSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{
		Mode:        strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)),
		Environment: cfg.Env,
	}
	if plan.Mode == "" {
		plan.Mode = config.SchemaModeHybrid
	}

	switch plan.Mode {
	case config.SchemaModeSQL:
		plan.RunSQL = true
	case config.SchemaModeAuto:
		plan.RunAuto = true
	case config.SchemaModeHybrid:
		plan.RunSQL = true
		plan.RunAuto = !deployedEnv(cfg.Env)
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

func deployedEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// AutoMigrate creates or updates every persistent table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// missingPairIndexes lists pair indexes absent from tables that exist.
func missingPairIndexes(db *gorm.DB) []string {
	m := db.Migrator()
	var missing []string
	for _, idx := range pairIndexes {
		if m.HasTable(idx.model) && !m.HasIndex(idx.model, idx.name) {
			missing = append(missing, idx.name)
		}
	}
	return missing
}

// ApplySchema brings the schema up to date and fails when a pair index is
// missing afterwards.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.RunAuto {
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", plan.Mode), slog.String("env", plan.Environment))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	if missing := missingPairIndexes(db.WithContext(ctx)); len(missing) > 0 {
		return fmt.Errorf("schema is missing unique indexes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports applied and pending migrations and missing pair
// indexes without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{
		SchemaPlan:     plan,
		MissingIndexes: missingPairIndexes(db.WithContext(ctx)),
	}
	if !plan.RunSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	for _, m := range GetMigrations() {
		if !done[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
