package access

import (
	"context"
	"errors"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"
)

// ErrPermissionDenied is the single error every denied operation surfaces
// as. Callers must not be able to distinguish "not a team member" from
// "grant disabled" from "module not enabled" by probing.
var ErrPermissionDenied = errors.New("permission denied")

// Identity is the authenticated requester as established by the JWT
// middleware. Authorization is layered on top of it.
type Identity struct {
	UID   string
	Role  domain.Role
	Email string
}

// Authorizer evaluates whether an identity may touch a trainee-owned
// sub-collection. It is consulted twice per operation: by the route
// middleware (authoritative) and by the service layer (UX gate, avoids
// wasted reads); both paths run this same code over the same policy table.
type Authorizer struct {
	members repository.TeamMemberRepository
	grants  repository.GrantRepository
	cache   *GrantCache // nil disables caching
}

// NewAuthorizer builds an Authorizer. cache may be nil.
func NewAuthorizer(members repository.TeamMemberRepository, grants repository.GrantRepository, cache *GrantCache) *Authorizer {
	return &Authorizer{
		members: members,
		grants:  grants,
		cache:   cache,
	}
}

// CanAccess returns nil when requester may perform op on the given
// sub-collection of traineeID, and ErrPermissionDenied otherwise.
//
// The trainee who owns traineeID may read and write all of their own
// sub-collections unconditionally. Any other identity may read (never
// write) a sub-collection only when an active TeamMember record exists AND
// the Grant is active AND the collection's module flag is on.
func (a *Authorizer) CanAccess(ctx context.Context, requester Identity, traineeID string, collection Collection, op Operation) error {
	if requester.UID == "" || traineeID == "" {
		recordDecision(collection, false)
		return ErrPermissionDenied
	}

	if requester.UID == traineeID {
		recordDecision(collection, true)
		return nil
	}

	if op != OpRead {
		recordDecision(collection, false)
		return ErrPermissionDenied
	}

	module, ok := ModuleForCollection(collection)
	if !ok {
		recordDecision(collection, false)
		return ErrPermissionDenied
	}

	member, err := a.members.Get(ctx, traineeID, requester.UID)
	if err != nil || member.Status != domain.TeamMemberActive {
		recordDecision(collection, false)
		return ErrPermissionDenied
	}

	grant, err := a.lookupGrant(ctx, traineeID, requester.UID)
	if err != nil || !grant.Allows(module) {
		recordDecision(collection, false)
		return ErrPermissionDenied
	}

	recordDecision(collection, true)
	return nil
}

// CanManageTeam returns nil only for the owning trainee. Grant toggles,
// invite issuing, and revocation all go through this check.
func (a *Authorizer) CanManageTeam(requester Identity, traineeID string) error {
	if requester.UID == "" || requester.UID != traineeID {
		return ErrPermissionDenied
	}
	return nil
}

// InvalidateGrant drops the cached grant for one (trainee, professional)
// pair. Call after any mutation of that grant.
func (a *Authorizer) InvalidateGrant(ctx context.Context, traineeID, memberUID string) {
	if a.cache != nil {
		a.cache.Invalidate(ctx, traineeID, memberUID)
	}
}

func (a *Authorizer) lookupGrant(ctx context.Context, traineeID, memberUID string) (*domain.Grant, error) {
	if a.cache != nil {
		if grant, ok := a.cache.Get(ctx, traineeID, memberUID); ok {
			return grant, nil
		}
	}

	grant, err := a.grants.Get(ctx, traineeID, memberUID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, grant)
	}
	return grant, nil
}
