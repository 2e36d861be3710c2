package service

import (
	"context"
	"testing"

	"workstation/internal/models"
	"workstation/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment_OneLevelOfReplies(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	fan := testutil.CreateUser(t, e.db, "fan")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")
	other := testutil.CreateProject(t, e.db, owner, "Other", "other")

	top, err := e.comments.AddComment(ctx, CreateCommentInput{UserID: fan.ID, ProjectID: project.ID, Content: "nice"})
	require.NoError(t, err)

	reply, err := e.comments.AddComment(ctx, CreateCommentInput{UserID: owner.ID, ProjectID: project.ID, Content: "thanks", ParentCommentID: &top.ID})
	require.NoError(t, err)

	_, err = e.comments.AddComment(ctx, CreateCommentInput{UserID: fan.ID, ProjectID: project.ID, Content: "deeper", ParentCommentID: &reply.ID})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, err = e.comments.AddComment(ctx, CreateCommentInput{UserID: fan.ID, ProjectID: other.ID, Content: "wrong", ParentCommentID: &top.ID})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	list, err := e.comments.ListComments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Replies, 1)
	assert.Equal(t, "thanks", list[0].Replies[0].Content)

	got := e.notificationsOf(t, owner.ID)
	require.Len(t, got, 1, "creator replying to their own project is not notified")
	assert.Equal(t, "fan commented on Rocket", got[0].Content)
	assert.Equal(t, "/projects/rocket/#comments", got[0].Link)
}

func TestDeleteComment_OwnerOnly(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	fan := testutil.CreateUser(t, e.db, "fan")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	c, err := e.comments.AddComment(ctx, CreateCommentInput{UserID: fan.ID, ProjectID: project.ID, Content: "hi"})
	require.NoError(t, err)

	assert.Equal(t, models.CodeForbidden, models.ErrorCode(e.comments.DeleteComment(ctx, owner.ID, c.ID)))
	require.NoError(t, e.comments.DeleteComment(ctx, fan.ID, c.ID))
}

func TestCreateThought_NotifiesExistingMentions(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	thought, err := e.thoughts.CreateThought(ctx, CreateThoughtInput{
		UserID:  alice.ID,
		Content: "shipping with @bob and @bob and @ghost, cc @alice",
		Tags:    []string{"launch"},
	})
	require.NoError(t, err)
	assert.NotZero(t, thought.ID)

	got := e.notificationsOf(t, bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationMention, got[0].NotificationType)
	assert.Equal(t, "alice mentioned you in a thought", got[0].Content)
	assert.Equal(t, "/users/alice/", got[0].Link)
	assert.Empty(t, e.notificationsOf(t, alice.ID))

	_, err = e.thoughts.CreateThought(ctx, CreateThoughtInput{UserID: alice.ID, Content: " "})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestToggleThoughtLike(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	thought, err := e.thoughts.CreateThought(ctx, CreateThoughtInput{UserID: alice.ID, Content: "hello"})
	require.NoError(t, err)

	res, err := e.thoughts.ToggleLike(ctx, bob.ID, thought.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: true, LikesCount: 1}, res)

	res, err = e.thoughts.ToggleLike(ctx, bob.ID, thought.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: false, LikesCount: 0}, res)

	_, err = e.thoughts.ToggleLike(ctx, bob.ID, 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
