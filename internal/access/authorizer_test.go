package access

import (
	"context"
	"testing"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTraineeID = "trainee-1"
	testProUID    = "pro-1"
)

// Minimal in-memory repositories; the Mongo implementations share these
// contracts.

type memberStore struct {
	members map[string]*domain.TeamMember
	calls   int
}

func newMemberStore() *memberStore {
	return &memberStore{members: make(map[string]*domain.TeamMember)}
}

func pairKey(traineeID, uid string) string { return traineeID + "|" + uid }

func (s *memberStore) Upsert(ctx context.Context, member *domain.TeamMember) error {
	s.members[pairKey(member.TraineeID, member.UID)] = member
	return nil
}

func (s *memberStore) Get(ctx context.Context, traineeID, uid string) (*domain.TeamMember, error) {
	s.calls++
	member, ok := s.members[pairKey(traineeID, uid)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return member, nil
}

func (s *memberStore) ListByTrainee(ctx context.Context, traineeID string) ([]domain.TeamMember, error) {
	return nil, nil
}

func (s *memberStore) Delete(ctx context.Context, traineeID, uid string) error {
	delete(s.members, pairKey(traineeID, uid))
	return nil
}

type grantStore struct {
	grants map[string]*domain.Grant
	calls  int
}

func newGrantStore() *grantStore {
	return &grantStore{grants: make(map[string]*domain.Grant)}
}

func (s *grantStore) Upsert(ctx context.Context, grant *domain.Grant) error {
	s.grants[pairKey(grant.TraineeID, grant.MemberUID)] = grant
	return nil
}

func (s *grantStore) Get(ctx context.Context, traineeID, memberUID string) (*domain.Grant, error) {
	s.calls++
	grant, ok := s.grants[pairKey(traineeID, memberUID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *grant
	copied.Modules = grant.Modules.Clone()
	return &copied, nil
}

func (s *grantStore) ListByTrainee(ctx context.Context, traineeID string) ([]domain.Grant, error) {
	return nil, nil
}

func (s *grantStore) ListByMember(ctx context.Context, memberUID string, limit int64) ([]domain.Grant, error) {
	return nil, nil
}

func (s *grantStore) SetModule(ctx context.Context, traineeID, memberUID string, module domain.ModuleKey, enabled bool) error {
	grant, ok := s.grants[pairKey(traineeID, memberUID)]
	if !ok {
		return repository.ErrNotFound
	}
	grant.Modules[module] = enabled
	grant.Active = true
	return nil
}

func (s *grantStore) SetActive(ctx context.Context, traineeID, memberUID string, active bool) error {
	grant, ok := s.grants[pairKey(traineeID, memberUID)]
	if !ok {
		return repository.ErrNotFound
	}
	grant.Active = active
	return nil
}

func (s *grantStore) Delete(ctx context.Context, traineeID, memberUID string) error {
	delete(s.grants, pairKey(traineeID, memberUID))
	return nil
}

func seedAccess(t *testing.T, members *memberStore, grants *grantStore, modules ...domain.ModuleKey) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, members.Upsert(ctx, &domain.TeamMember{
		TraineeID: testTraineeID,
		UID:       testProUID,
		Role:      domain.RoleTrainer,
		Status:    domain.TeamMemberActive,
	}))
	perms := domain.NoModules()
	for _, key := range modules {
		perms[key] = true
	}
	require.NoError(t, grants.Upsert(ctx, &domain.Grant{
		TraineeID: testTraineeID,
		MemberUID: testProUID,
		Role:      domain.RoleTrainer,
		Active:    true,
		Modules:   perms,
	}))
}

func TestOwnerAlwaysAllowed(t *testing.T) {
	ctx := context.Background()
	authorizer := NewAuthorizer(newMemberStore(), newGrantStore(), nil)
	owner := Identity{UID: testTraineeID, Role: domain.RoleTrainee}

	for _, collection := range GuardedCollections() {
		assert.NoError(t, authorizer.CanAccess(ctx, owner, testTraineeID, collection, OpRead))
		assert.NoError(t, authorizer.CanAccess(ctx, owner, testTraineeID, collection, OpWrite))
	}
}

func TestStrangerDenied(t *testing.T) {
	ctx := context.Background()
	authorizer := NewAuthorizer(newMemberStore(), newGrantStore(), nil)
	stranger := Identity{UID: "stranger", Role: domain.RoleTrainer}

	err := authorizer.CanAccess(ctx, stranger, testTraineeID, CollectionWorkouts, OpRead)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGrantedMemberReadsGrantedModuleOnly(t *testing.T) {
	ctx := context.Background()
	members := newMemberStore()
	grants := newGrantStore()
	seedAccess(t, members, grants, domain.ModuleWorkouts)
	authorizer := NewAuthorizer(members, grants, nil)
	pro := Identity{UID: testProUID, Role: domain.RoleTrainer}

	assert.NoError(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead))
	assert.ErrorIs(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionRecovery, OpRead), ErrPermissionDenied)
	assert.ErrorIs(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpWrite), ErrPermissionDenied,
		"grants never confer write access")
}

func TestInactiveGrantDenied(t *testing.T) {
	ctx := context.Background()
	members := newMemberStore()
	grants := newGrantStore()
	seedAccess(t, members, grants, domain.ModuleWorkouts)
	require.NoError(t, grants.SetActive(ctx, testTraineeID, testProUID, false))
	authorizer := NewAuthorizer(members, grants, nil)
	pro := Identity{UID: testProUID, Role: domain.RoleTrainer}

	assert.ErrorIs(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead), ErrPermissionDenied)
}

func TestInactiveMembershipDenied(t *testing.T) {
	ctx := context.Background()
	members := newMemberStore()
	grants := newGrantStore()
	seedAccess(t, members, grants, domain.ModuleWorkouts)
	members.members[pairKey(testTraineeID, testProUID)].Status = domain.TeamMemberRevoked
	authorizer := NewAuthorizer(members, grants, nil)
	pro := Identity{UID: testProUID, Role: domain.RoleTrainer}

	assert.ErrorIs(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead), ErrPermissionDenied)
}

func TestUnknownCollectionDenied(t *testing.T) {
	ctx := context.Background()
	members := newMemberStore()
	grants := newGrantStore()
	seedAccess(t, members, grants, domain.AllModuleKeys...)
	authorizer := NewAuthorizer(members, grants, nil)
	pro := Identity{UID: testProUID, Role: domain.RoleTrainer}

	assert.ErrorIs(t, authorizer.CanAccess(ctx, pro, testTraineeID, Collection("diary"), OpRead), ErrPermissionDenied)
}

func TestCanManageTeam(t *testing.T) {
	authorizer := NewAuthorizer(newMemberStore(), newGrantStore(), nil)

	owner := Identity{UID: testTraineeID, Role: domain.RoleTrainee}
	assert.NoError(t, authorizer.CanManageTeam(owner, testTraineeID))

	other := Identity{UID: "someone-else", Role: domain.RoleTrainee}
	assert.ErrorIs(t, authorizer.CanManageTeam(other, testTraineeID), ErrPermissionDenied)

	anonymous := Identity{}
	assert.ErrorIs(t, authorizer.CanManageTeam(anonymous, ""), ErrPermissionDenied)
}

func newTestCache(t *testing.T) *GrantCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewGrantCache(client, DefaultGrantCacheTTL)
}

func TestCachedGrantLookup(t *testing.T) {
	ctx := context.Background()
	members := newMemberStore()
	grants := newGrantStore()
	seedAccess(t, members, grants, domain.ModuleWorkouts)
	authorizer := NewAuthorizer(members, grants, newTestCache(t))
	pro := Identity{UID: testProUID, Role: domain.RoleTrainer}

	require.NoError(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead))
	require.NoError(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead))
	assert.Equal(t, 1, grants.calls, "second lookup must be served from the cache")
}

func TestInvalidateGrantDropsCacheEntry(t *testing.T) {
	ctx := context.Background()
	members := newMemberStore()
	grants := newGrantStore()
	seedAccess(t, members, grants, domain.ModuleWorkouts)
	authorizer := NewAuthorizer(members, grants, newTestCache(t))
	pro := Identity{UID: testProUID, Role: domain.RoleTrainer}

	require.NoError(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead))

	// Mutate the grant behind the cache, then invalidate: the next check
	// must observe the new state.
	require.NoError(t, grants.SetActive(ctx, testTraineeID, testProUID, false))
	authorizer.InvalidateGrant(ctx, testTraineeID, testProUID)

	assert.ErrorIs(t, authorizer.CanAccess(ctx, pro, testTraineeID, CollectionWorkouts, OpRead), ErrPermissionDenied)
}

func TestCacheGetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	_, ok := cache.Get(ctx, testTraineeID, testProUID)
	assert.False(t, ok)

	perms := domain.NoModules()
	perms[domain.ModuleWearables] = true
	cache.Set(ctx, &domain.Grant{
		TraineeID: testTraineeID,
		MemberUID: testProUID,
		Active:    true,
		Modules:   perms,
	})

	cached, ok := cache.Get(ctx, testTraineeID, testProUID)
	require.True(t, ok)
	assert.True(t, cached.Allows(domain.ModuleWearables))
	assert.False(t, cached.Allows(domain.ModuleWorkouts))

	cache.Invalidate(ctx, testTraineeID, testProUID)
	_, ok = cache.Get(ctx, testTraineeID, testProUID)
	assert.False(t, ok)
}
