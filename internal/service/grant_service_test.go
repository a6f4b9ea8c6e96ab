package service

import (
	"context"
	"testing"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrantFixture() (GrantService, *fakeMemberRepo, *fakeGrantRepo) {
	members := newFakeMemberRepo()
	grants := newFakeGrantRepo()
	authorizer := access.NewAuthorizer(members, grants, nil)
	svc := NewGrantService(members, grants, authorizer)
	return svc, members, grants
}

func seedTeamMember(t *testing.T, members *fakeMemberRepo, grants *fakeGrantRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, members.Upsert(ctx, &domain.TeamMember{
		TraineeID: testTraineeID,
		UID:       testProUID,
		Role:      domain.RoleTrainer,
		Status:    domain.TeamMemberActive,
	}))
	require.NoError(t, grants.Upsert(ctx, &domain.Grant{
		TraineeID: testTraineeID,
		MemberUID: testProUID,
		Role:      domain.RoleTrainer,
		Active:    true,
		Modules:   domain.NoModules(),
	}))
}

func TestToggleModule(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	require.NoError(t, svc.ToggleModule(ctx, traineeIdentity(), testTraineeID, testProUID, domain.ModuleWorkouts, true))

	grant, err := grants.Get(ctx, testTraineeID, testProUID)
	require.NoError(t, err)
	assert.True(t, grant.Modules[domain.ModuleWorkouts])
	for _, key := range domain.AllModuleKeys {
		if key == domain.ModuleWorkouts {
			continue
		}
		assert.False(t, grant.Modules[key], "toggling one module must not touch %s", key)
	}
}

func TestToggleModuleReactivatesGrant(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	require.NoError(t, svc.SetGrantActive(ctx, traineeIdentity(), testTraineeID, testProUID, false))
	grant, err := grants.Get(ctx, testTraineeID, testProUID)
	require.NoError(t, err)
	require.False(t, grant.Active)

	// Disabling a module is still a toggle, and any toggle re-enables
	// the grant.
	require.NoError(t, svc.ToggleModule(ctx, traineeIdentity(), testTraineeID, testProUID, domain.ModuleNutrition, false))
	grant, err = grants.Get(ctx, testTraineeID, testProUID)
	require.NoError(t, err)
	assert.True(t, grant.Active)
}

func TestToggleModuleUnknownKey(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	err := svc.ToggleModule(ctx, traineeIdentity(), testTraineeID, testProUID, domain.ModuleKey("telepathy"), true)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggleModuleMissingGrant(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newGrantFixture()

	err := svc.ToggleModule(ctx, traineeIdentity(), testTraineeID, "nobody", domain.ModuleWorkouts, true)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

func TestToggleModuleOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	intruder := access.Identity{UID: testProUID, Role: domain.RoleTrainer}
	err := svc.ToggleModule(ctx, intruder, testTraineeID, testProUID, domain.ModuleWorkouts, true)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestSetGrantActivePreservesModules(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	require.NoError(t, svc.ToggleModule(ctx, traineeIdentity(), testTraineeID, testProUID, domain.ModuleProgress, true))
	require.NoError(t, svc.SetGrantActive(ctx, traineeIdentity(), testTraineeID, testProUID, false))

	grant, err := grants.Get(ctx, testTraineeID, testProUID)
	require.NoError(t, err)
	assert.False(t, grant.Active)
	assert.True(t, grant.Modules[domain.ModuleProgress], "pausing must not clear module choices")
	assert.False(t, grant.Allows(domain.ModuleProgress), "a paused grant exposes nothing")
}

func TestRevokeAccess(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	require.NoError(t, svc.RevokeAccess(ctx, traineeIdentity(), testTraineeID, testProUID))

	_, err := members.Get(ctx, testTraineeID, testProUID)
	assert.Error(t, err)
	_, err = grants.Get(ctx, testTraineeID, testProUID)
	assert.Error(t, err)

	// Idempotent: revoking again succeeds quietly.
	assert.NoError(t, svc.RevokeAccess(ctx, traineeIdentity(), testTraineeID, testProUID))
}

func TestListTeam(t *testing.T) {
	ctx := context.Background()
	svc, members, grants := newGrantFixture()
	seedTeamMember(t, members, grants)

	// A member whose grant has drifted away still shows up, with no grant.
	require.NoError(t, members.Upsert(ctx, &domain.TeamMember{
		TraineeID: testTraineeID,
		UID:       "pro-2",
		Role:      domain.RoleCounsellor,
		Status:    domain.TeamMemberActive,
	}))

	team, err := svc.ListTeam(ctx, traineeIdentity(), testTraineeID)
	require.NoError(t, err)
	require.Len(t, team, 2)

	byUID := make(map[string]TeamView, len(team))
	for _, view := range team {
		byUID[view.UID] = view
	}
	require.NotNil(t, byUID[testProUID].Grant)
	assert.True(t, byUID[testProUID].Grant.Active)
	assert.Nil(t, byUID["pro-2"].Grant)
}
