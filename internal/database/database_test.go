package database

import (
	"context"
	"testing"

	"workstation/internal/config"
	"workstation/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"host=h port=5432 user=u password=p dbname=d sslmode=disable",
		DSN("h", "5432", "u", "p", "d", ""))
	assert.Contains(t, DSN("h", "5432", "u", "p", "d", "require"), "sslmode=require")
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		mode, env         string
		wantSQL, wantAuto bool
		wantErr           bool
	}{
		{"", "development", true, true, false},
		{"hybrid", "production", true, false, false},
		{"sql", "development", true, false, false},
		{"auto", "staging", false, true, false},
		{"other", "development", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.env, func(t *testing.T) {
			plan, err := planSchema(&config.Config{DBSchemaMode: tt.mode, Env: tt.env})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.RunSQL)
			assert.Equal(t, tt.wantAuto, plan.RunAuto)
		})
	}
}

func TestGetAppliedMigrations_ReturnsVersions(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT "version" FROM "migration_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1).AddRow(2))

	versions, err := NewMigrationStore(db).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, versions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisteredMigrationsHaveDownScripts(t *testing.T) {
	require.NotEmpty(t, GetMigrations())
	for _, m := range GetMigrations() {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
	}
	assert.NotNil(t, GetMigrationByVersion(1))
}

func TestPairIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	assert.Empty(t, missingPairIndexes(db), "absent tables are not reported")

	cfg := &config.Config{DBSchemaMode: config.SchemaModeAuto, Env: "development"}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.Empty(t, missingPairIndexes(db))

	require.NoError(t, db.Migrator().DropIndex(&models.Conversation{}, "idx_conversation_pair"))
	assert.Equal(t, []string{"idx_conversation_pair"}, missingPairIndexes(db))

	st, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"idx_conversation_pair"}, st.MissingIndexes)
	assert.True(t, st.RunAuto)

	// AutoMigrate recreates the index
	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.Empty(t, missingPairIndexes(db))
}
