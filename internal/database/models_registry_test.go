package database

import (
	"testing"

	modelspkg "workstation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_IncludesCoreTables(t *testing.T) {
	var haveJoinRequest, haveConversation, haveNotification bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.JoinRequest:
			haveJoinRequest = true
		case *modelspkg.Conversation:
			haveConversation = true
		case *modelspkg.Notification:
			haveNotification = true
		}
	}
	assert.True(t, haveJoinRequest, "PersistentModels should include JoinRequest")
	assert.True(t, haveConversation, "PersistentModels should include Conversation")
	assert.True(t, haveNotification, "PersistentModels should include Notification")
}

func TestAutoMigrate_EnforcesUniquePairs(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:registry?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	a := modelspkg.User{Username: "a", Email: "a@example.com", Password: "x"}
	b := modelspkg.User{Username: "b", Email: "b@example.com", Password: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	low, high := modelspkg.ConversationPair(b.ID, a.ID)
	require.NoError(t, db.Create(&modelspkg.Conversation{ParticipantLowID: low, ParticipantHighID: high}).Error)
	err = db.Create(&modelspkg.Conversation{ParticipantLowID: low, ParticipantHighID: high}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
