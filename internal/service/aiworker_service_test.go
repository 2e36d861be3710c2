package service

import (
	"context"
	"testing"

	"workstation/internal/models"
	"workstation/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIWorkerConversation(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	require.NoError(t, e.ai.SyncCatalog(ctx))
	require.NoError(t, e.ai.SyncCatalog(ctx))

	workers, err := e.ai.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, workers, 6)
	tools, err := e.ai.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 10)
	assert.Equal(t, "Code Generator", tools[0].Name)

	_, err = e.ai.StartConversation(ctx, alice.ID, "astrologer", "")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	conv, err := e.ai.StartConversation(ctx, alice.ID, "coder", "")
	require.NoError(t, err)
	assert.Equal(t, "Chat with AI Coder", conv.Title)

	first, err := e.ai.SendAIMessage(ctx, alice.ID, conv.ID, "a cache layer")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, models.AIMessageSenderUser, first[0].Sender)
	assert.Equal(t, models.AIMessageSenderAI, first[1].Sender)
	assert.Contains(t, first[1].Content, "a cache layer")

	second, err := e.ai.SendAIMessage(ctx, alice.ID, conv.ID, "a cache layer")
	require.NoError(t, err)
	assert.NotEqual(t, first[1].Content, second[1].Content, "next turn uses the next template")

	_, err = e.ai.SendAIMessage(ctx, bob.ID, conv.ID, "hi")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	_, err = e.ai.SendAIMessage(ctx, alice.ID, conv.ID, "  ")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	loaded, err := e.ai.GetConversation(ctx, alice.ID, conv.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 4)

	assert.Equal(t, models.CodeNotFound, models.ErrorCode(e.ai.DeleteConversation(ctx, bob.ID, conv.ID)))
	require.NoError(t, e.ai.DeleteConversation(ctx, alice.ID, conv.ID))
	convs, err := e.ai.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, convs)
}
