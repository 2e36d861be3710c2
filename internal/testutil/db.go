// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"workstation/internal/database"
	"workstation/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	dbSeq       atomic.Int64
	nonWordChar = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// NewSQLiteDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every statement on the same memory database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("%s_%d", nonWordChar.ReplaceAllString(t.Name(), "_"), dbSeq.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// NewRedis starts a miniredis server and returns it with a connected client.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user named username with a derived email.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		UserType: models.UserTypeEnthusiast,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateProject inserts a project owned by creator plus the creator membership.
func CreateProject(t testing.TB, db *gorm.DB, creator *models.User, title, slug string) *models.Project {
	t.Helper()
	p := &models.Project{
		Title:       title,
		Slug:        slug,
		Description: title + " description",
		ProjectType: models.ProjectTypeProject,
		CreatorID:   creator.ID,
		Stage:       models.ProjectStageIdea,
		Status:      models.ProjectStatusOpen,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create project %s: %v", slug, err)
	}
	m := &models.ProjectMembership{
		UserID:    creator.ID,
		ProjectID: p.ID,
		Role:      models.MembershipRoleCreator,
		IsActive:  true,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create creator membership: %v", err)
	}
	return p
}
