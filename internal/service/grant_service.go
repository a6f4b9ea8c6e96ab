package service

import (
	"context"
	"errors"
	"fmt"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrGrantNotFound = errors.New("grant not found")
)

// TeamView joins one team member with their grant for the trainee's roster
// UI. Grant is nil when the documents have drifted (member without grant).
type TeamView struct {
	domain.TeamMember
	Grant *domain.Grant `json:"grant"`
}

// --- Service Interface ---
type GrantService interface {
	ToggleModule(ctx context.Context, requester access.Identity, traineeID, memberUID string, module domain.ModuleKey, enabled bool) error
	SetGrantActive(ctx context.Context, requester access.Identity, traineeID, memberUID string, active bool) error
	RevokeAccess(ctx context.Context, requester access.Identity, traineeID, memberUID string) error
	ListTeam(ctx context.Context, requester access.Identity, traineeID string) ([]TeamView, error)
}

// --- Service Implementation ---

type grantService struct {
	memberRepo repository.TeamMemberRepository
	grantRepo  repository.GrantRepository
	authorizer *access.Authorizer
}

// NewGrantService creates a new instance of grantService.
func NewGrantService(
	memberRepo repository.TeamMemberRepository,
	grantRepo repository.GrantRepository,
	authorizer *access.Authorizer,
) GrantService {
	return &grantService{
		memberRepo: memberRepo,
		grantRepo:  grantRepo,
		authorizer: authorizer,
	}
}

// ToggleModule flips exactly one module flag on an existing grant. Enabling
// or disabling any module also force-sets active=true: a disabled grant
// that gets a module toggled becomes enabled again.
func (s *grantService) ToggleModule(ctx context.Context, requester access.Identity, traineeID, memberUID string, module domain.ModuleKey, enabled bool) error {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return err
	}
	if !domain.IsValidModuleKey(module) {
		return fmt.Errorf("%w: unknown module %q", ErrValidation, module)
	}

	err := s.grantRepo.SetModule(ctx, traineeID, memberUID, module, enabled)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGrantNotFound
		}
		return err
	}
	s.authorizer.InvalidateGrant(ctx, traineeID, memberUID)
	return nil
}

// SetGrantActive is the master on/off switch, independent of the individual
// module flags.
func (s *grantService) SetGrantActive(ctx context.Context, requester access.Identity, traineeID, memberUID string, active bool) error {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return err
	}

	err := s.grantRepo.SetActive(ctx, traineeID, memberUID, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGrantNotFound
		}
		return err
	}
	s.authorizer.InvalidateGrant(ctx, traineeID, memberUID)
	return nil
}

// RevokeAccess hard-deletes both the TeamMember and the Grant, immediately
// ending the professional's access. Idempotent: revoking an absent member
// is not an error.
func (s *grantService) RevokeAccess(ctx context.Context, requester access.Identity, traineeID, memberUID string) error {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, traineeID, memberUID); err != nil {
		return err
	}
	if err := s.grantRepo.Delete(ctx, traineeID, memberUID); err != nil {
		return err
	}
	s.authorizer.InvalidateGrant(ctx, traineeID, memberUID)
	return nil
}

// ListTeam returns the trainee's care team joined with grants.
func (s *grantService) ListTeam(ctx context.Context, requester access.Identity, traineeID string) ([]TeamView, error) {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByTrainee(ctx, traineeID)
	if err != nil {
		return nil, err
	}
	grants, err := s.grantRepo.ListByTrainee(ctx, traineeID)
	if err != nil {
		return nil, err
	}

	grantsByMember := make(map[string]*domain.Grant, len(grants))
	for i := range grants {
		grantsByMember[grants[i].MemberUID] = &grants[i]
	}

	views := make([]TeamView, 0, len(members))
	for _, member := range members {
		views = append(views, TeamView{
			TeamMember: member,
			Grant:      grantsByMember[member.UID],
		})
	}
	return views, nil
}
