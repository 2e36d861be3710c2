package repository

import (
	"context"
	"testing"

	"workstation/internal/models"
	"workstation/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRepository_ConversationIdentity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	ab, err := repo.GetOrCreateConversation(ctx, alice.ID, bob.ID, nil)
	require.NoError(t, err)
	ba, err := repo.GetOrCreateConversation(ctx, bob.ID, alice.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, alice.ID, ab.ParticipantLowID)
	assert.Equal(t, bob.ID, ab.ParticipantHighID)

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestChatRepository_MessageLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	first := &models.Message{SenderID: alice.ID, RecipientID: bob.ID, Content: "hello"}
	conv, err := repo.CreateMessage(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, conv.LastMessageID)
	assert.Equal(t, first.ID, *conv.LastMessageID)

	reply := &models.Message{SenderID: bob.ID, RecipientID: alice.ID, Content: "hi back"}
	conv2, err := repo.CreateMessage(ctx, reply)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, conv2.ID)
	assert.Equal(t, conv.ID, reply.ConversationID)

	second := &models.Message{SenderID: alice.ID, RecipientID: bob.ID, Content: "again"}
	_, err = repo.CreateMessage(ctx, second)
	require.NoError(t, err)

	unread, err := repo.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	convs, err := repo.ListUserConversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 2, convs[0].UnreadCount)
	require.NotNil(t, convs[0].LastMessage)
	assert.Equal(t, "again", convs[0].LastMessage.Content)

	changed, err := repo.MarkConversationRead(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	changed, err = repo.MarkConversationRead(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)

	msgs, err := repo.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.True(t, msgs[0].IsRead)
	assert.NotNil(t, msgs[0].ReadAt)
	assert.False(t, msgs[1].IsRead, "alice has not opened the conversation yet")

	inbox, err := repo.Inbox(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
	sent, err := repo.Sent(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, sent, 2)
}

func TestChatRepository_MarkMessageRead_RecipientOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	msg := &models.Message{SenderID: alice.ID, RecipientID: bob.ID, Content: "ping"}
	_, err := repo.CreateMessage(ctx, msg)
	require.NoError(t, err)

	ok, err := repo.MarkMessageRead(ctx, msg.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MarkMessageRead(ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChatRepository_DeleteConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	conv, err := repo.CreateMessage(ctx, &models.Message{SenderID: alice.ID, RecipientID: bob.ID, Content: "one"})
	require.NoError(t, err)
	_, err = repo.CreateMessage(ctx, &models.Message{SenderID: alice.ID, RecipientID: carol.ID, Content: "other"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteConversation(ctx, conv))

	_, err = repo.GetConversation(ctx, conv.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	var remaining int64
	db.Model(&models.Message{}).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
}
