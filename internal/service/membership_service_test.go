package service

import (
	"context"
	"sync"
	"testing"

	"workstation/internal/models"
	"workstation/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestToJoin_IdempotentAndNotifiesOnce(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	dev := testutil.CreateUser(t, e.db, "dev")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	req, created, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID, Message: "let me in", DesiredRole: "Co-Founder"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.JoinRequestStatusPending, req.Status)

	again, created, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID, Message: "second"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, req.ID, again.ID)
	assert.Equal(t, "let me in", again.Message)

	got := e.notificationsOf(t, owner.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationJoinRequest, got[0].NotificationType)
	assert.Equal(t, "dev wants to join your project", got[0].Title)
	assert.Equal(t, "/projects/rocket/requests/", got[0].Link)
}

func TestRequestToJoin_RejectsOwnerAndMembers(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	dev := testutil.CreateUser(t, e.db, "dev")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	_, _, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: owner.ID, ProjectID: project.ID})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, _, err = e.membership.AddMember(ctx, AddMemberInput{ActorID: owner.ID, ProjectID: project.ID, UserID: dev.ID})
	require.NoError(t, err)
	_, _, err = e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, _, err = e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: 999})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestRespond_AcceptGrantsMappedRole(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	dev := testutil.CreateUser(t, e.db, "dev")
	stranger := testutil.CreateUser(t, e.db, "stranger")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	req, _, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID, DesiredRole: "cofounder"})
	require.NoError(t, err)

	_, err = e.membership.Respond(ctx, stranger.ID, req.ID, models.JoinDecisionAccept)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = e.membership.Respond(ctx, owner.ID, req.ID, models.JoinDecision("maybe"))
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	resolved, err := e.membership.Respond(ctx, owner.ID, req.ID, models.JoinDecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestStatusAccepted, resolved.Status)
	assert.NotNil(t, resolved.RespondedAt)

	members, err := e.membership.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	roles := map[uint]models.MembershipRole{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	assert.Equal(t, models.MembershipRoleCoFounder, roles[dev.ID])
	assert.Equal(t, models.MembershipRoleCreator, roles[owner.ID])

	got := e.notificationsOf(t, dev.ID)
	require.Len(t, got, 2)
	assert.Equal(t, models.NotificationJoinRequest, got[0].NotificationType)
	assert.Equal(t, "Join request accepted", got[0].Title)
	assert.Equal(t, "Your request to join Rocket was accepted!", got[0].Content)
	assert.Equal(t, models.NotificationProjectInvite, got[1].NotificationType)
	assert.Equal(t, "Added to project", got[1].Title)
	assert.Equal(t, "You have been added to Rocket as co-founder", got[1].Content)
	assert.Equal(t, "/projects/rocket/", got[1].Link)

	_, err = e.membership.Respond(ctx, owner.ID, req.ID, models.JoinDecisionReject)
	assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	assert.Len(t, e.notificationsOf(t, dev.ID), 2)
}

func TestRespond_RejectAddsNoMember(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	dev := testutil.CreateUser(t, e.db, "dev")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	req, _, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID})
	require.NoError(t, err)
	_, err = e.membership.Respond(ctx, owner.ID, req.ID, models.JoinDecisionReject)
	require.NoError(t, err)

	members, err := e.membership.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Empty(t, e.notificationsOf(t, dev.ID))

	pending, err := e.membership.ListJoinRequests(ctx, owner.ID, project.ID, models.JoinRequestStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = e.membership.ListJoinRequests(ctx, dev.ID, project.ID, "")
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestCoFounderCanManage(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	cof := testutil.CreateUser(t, e.db, "cof")
	dev := testutil.CreateUser(t, e.db, "dev")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	_, created, err := e.membership.AddMember(ctx, AddMemberInput{ActorID: owner.ID, ProjectID: project.ID, UserID: cof.ID, Role: "co-founder"})
	require.NoError(t, err)
	assert.True(t, created)

	req, _, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID})
	require.NoError(t, err)
	_, err = e.membership.Respond(ctx, cof.ID, req.ID, models.JoinDecisionAccept)
	require.NoError(t, err)
}

func TestAddMember_RoleRulesAndIdempotence(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	dev := testutil.CreateUser(t, e.db, "dev")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	_, _, err := e.membership.AddMember(ctx, AddMemberInput{ActorID: owner.ID, ProjectID: project.ID, UserID: dev.ID, Role: "creator"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	_, _, err = e.membership.AddMember(ctx, AddMemberInput{ActorID: dev.ID, ProjectID: project.ID, UserID: dev.ID, Role: "member"})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	m, created, err := e.membership.AddMember(ctx, AddMemberInput{ActorID: owner.ID, ProjectID: project.ID, UserID: dev.ID, Role: "mentor"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.MembershipRoleMentor, m.Role)

	m, created, err = e.membership.AddMember(ctx, AddMemberInput{ActorID: owner.ID, ProjectID: project.ID, UserID: dev.ID, Role: "investor"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.MembershipRoleMentor, m.Role)

	got := e.notificationsOf(t, dev.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationProjectInvite, got[0].NotificationType)
	assert.Equal(t, "You have been added to Rocket as mentor", got[0].Content)
}

func TestToggleSupport(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	fan := testutil.CreateUser(t, e.db, "fan")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	res, err := e.membership.ToggleSupport(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, &SupportResult{Supported: true, SupportersCount: 1}, res)

	res, err = e.membership.ToggleSupport(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, &SupportResult{Supported: false, SupportersCount: 0}, res)

	res, err = e.membership.ToggleSupport(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, res.Supported)

	got := e.notificationsOf(t, owner.ID)
	require.Len(t, got, 1, "self-support sends nothing")
	assert.Equal(t, "fan supported your project", got[0].Title)
	assert.Equal(t, "fan is now supporting Rocket", got[0].Content)

	_, err = e.membership.ToggleSupport(ctx, fan.ID, 404)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestRespond_ConcurrentAcceptsResolveOnce(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	dev := testutil.CreateUser(t, e.db, "dev")
	project := testutil.CreateProject(t, e.db, owner, "Rocket", "rocket")

	req, _, err := e.membership.RequestToJoin(ctx, RequestToJoinInput{UserID: dev.ID, ProjectID: project.ID, DesiredRole: "mentor"})
	require.NoError(t, err)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.membership.Respond(ctx, owner.ID, req.ID, models.JoinDecisionAccept)
		}(i)
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case models.ErrorCode(err) == models.CodeInvalidState:
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)

	var members int64
	require.NoError(t, e.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, dev.ID).Count(&members).Error)
	assert.Equal(t, int64(1), members)

	got := e.notificationsOf(t, dev.ID)
	assert.Len(t, got, 2, "one acceptance and one invite")
}
