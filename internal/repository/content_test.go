package repository

import (
	"context"
	"testing"

	"workstation/internal/models"
	"workstation/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByProjectNestsReplies(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	p := testutil.CreateProject(t, db, owner, "Rocket", "rocket")

	top := &models.Comment{UserID: fan.ID, ProjectID: p.ID, Content: "great"}
	require.NoError(t, repo.Create(ctx, top))
	reply := &models.Comment{UserID: owner.ID, ProjectID: p.ID, Content: "thanks", ParentCommentID: &top.ID}
	require.NoError(t, repo.Create(ctx, reply))

	comments, err := repo.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, "thanks", comments[0].Replies[0].Content)
	require.NotNil(t, comments[0].Replies[0].User)
	assert.Equal(t, "owner", comments[0].Replies[0].User.Username)

	n, err := repo.CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestThoughtRepository_LikesAndTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThoughtRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")

	thought := &models.Thought{UserID: author.ID, Content: "shipping today"}
	require.NoError(t, repo.Create(ctx, thought, []string{"launch"}))

	liked, count, err := repo.ToggleLike(ctx, thought.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].LikesCount)
	assert.Len(t, list[0].Tags, 1)

	liked, count, err = repo.ToggleLike(ctx, thought.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, count)

	got, err := repo.GetByID(ctx, thought.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikesCount)

	mine, err := repo.ListByUser(ctx, author.ID, 5)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestAIWorkerRepository_CatalogAndConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIWorkerRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user")
	workers := []models.AIWorker{
		{Name: "AI Coder", WorkerType: "coder", IsActive: true},
		{Name: "AI Writer", WorkerType: "writer", IsActive: true},
	}
	require.NoError(t, repo.UpsertWorkers(ctx, workers))
	require.NoError(t, repo.UpsertWorkers(ctx, []models.AIWorker{{Name: "AI Coder v2", WorkerType: "coder", IsActive: true}}))

	listed, err := repo.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	coder, err := repo.GetWorkerByType(ctx, "coder")
	require.NoError(t, err)
	assert.Equal(t, "AI Coder v2", coder.Name)

	_, err = repo.GetWorkerByType(ctx, "wizard")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	require.NoError(t, repo.UpsertTools(ctx, []models.AITool{
		{Name: "Linter", Order: 2, IsActive: true},
		{Name: "Profiler", Order: 1, IsActive: true},
	}))
	tools, err := repo.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "Profiler", tools[0].Name)

	conv := &models.AIConversation{UserID: user.ID, WorkerID: coder.ID, Title: "help"}
	require.NoError(t, repo.CreateConversation(ctx, conv))
	require.NoError(t, repo.AppendMessages(ctx, conv.ID,
		&models.AIMessage{Sender: models.AIMessageSenderUser, Content: "hi"},
		&models.AIMessage{Sender: models.AIMessageSenderAI, Content: "hello"},
	))

	n, err := repo.CountMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	loaded, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, models.AIMessageSenderUser, loaded.Messages[0].Sender)
	require.NotNil(t, loaded.Worker)

	convs, err := repo.ListConversations(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
	require.NoError(t, repo.DeleteConversation(ctx, conv.ID))
	_, err = repo.GetConversation(ctx, conv.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.DeleteConversation(ctx, conv.ID)))
}
