package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteInactive = errors.New("invite is no longer active")
	ErrInviteExpired  = errors.New("invite has expired")
	ErrRoleMismatch   = errors.New("invite role does not match your account role")
	ErrEmailMismatch  = errors.New("invite is addressed to a different email")
	ErrValidation     = errors.New("invalid input")
)

const (
	inviteCodeLength  = 8
	inviteCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

// CreatedInvite is what CreateInvite hands back to the UI: the code itself
// plus a shareable deep link embedding traineeId and code.
type CreatedInvite struct {
	Code      string    `json:"code"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AcceptingUser is the professional identity accepting an invite, as
// supplied by the authentication boundary.
type AcceptingUser struct {
	UID         string
	Role        domain.Role
	Email       string
	DisplayName string
}

// --- Service Interface ---
type InviteService interface {
	CreateInvite(ctx context.Context, requester access.Identity, traineeID string, role domain.Role, targetEmail string) (*CreatedInvite, error)
	AcceptInvite(ctx context.Context, traineeID, code string, user AcceptingUser) error
	RevokeInvite(ctx context.Context, requester access.Identity, traineeID, code string) error
	ListInvites(ctx context.Context, requester access.Identity, traineeID string) ([]domain.Invite, error)
	ListIncomingInvites(ctx context.Context, email string) ([]domain.Invite, error)
}

// --- Service Implementation ---

type inviteService struct {
	inviteRepo repository.InviteRepository
	memberRepo repository.TeamMemberRepository
	grantRepo  repository.GrantRepository
	authorizer *access.Authorizer
	baseURL    string
}

// NewInviteService creates a new instance of inviteService. baseURL is the
// public web origin used to build shareable invite links.
func NewInviteService(
	inviteRepo repository.InviteRepository,
	memberRepo repository.TeamMemberRepository,
	grantRepo repository.GrantRepository,
	authorizer *access.Authorizer,
	baseURL string,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		memberRepo: memberRepo,
		grantRepo:  grantRepo,
		authorizer: authorizer,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CreateInvite issues a pending, role-scoped, time-boxed invite for the
// trainee's care team. Only the owning trainee may issue invites.
func (s *inviteService) CreateInvite(ctx context.Context, requester access.Identity, traineeID string, role domain.Role, targetEmail string) (*CreatedInvite, error) {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return nil, err
	}
	if !domain.IsProfessionalRole(role) {
		return nil, fmt.Errorf("%w: role must be one of trainer, nutritionist, counsellor", ErrValidation)
	}

	now := time.Now().UTC()
	invite := &domain.Invite{
		TraineeID:   traineeID,
		Role:        role,
		CreatedBy:   requester.UID,
		Status:      domain.InviteStatusPending,
		TargetEmail: strings.ToLower(strings.TrimSpace(targetEmail)),
		ExpiresAt:   now.Add(domain.InviteTTL),
	}

	// Code collisions are negligible at this scale but cheap to recover
	// from: the unique (traineeId, code) index rejects a duplicate and we
	// draw a fresh code once.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		invite.Code, err = generateInviteCode()
		if err != nil {
			return nil, err
		}
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil || !errors.Is(err, repository.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	return &CreatedInvite{
		Code:      invite.Code,
		Link:      s.inviteLink(traineeID, invite.Code),
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// AcceptInvite consumes a pending invite and installs the accepting
// professional on the trainee's care team: the invite flips to accepted via
// a conditional update, then a TeamMember (active) and a Grant (all modules
// off, active) are upserted. The grant deliberately starts all-false; the
// trainee opts in per module afterwards.
func (s *inviteService) AcceptInvite(ctx context.Context, traineeID, code string, user AcceptingUser) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if traineeID == "" || !inviteCodePattern.MatchString(code) {
		return fmt.Errorf("%w: malformed invite code", ErrValidation)
	}
	if !domain.IsProfessionalRole(user.Role) {
		return ErrRoleMismatch
	}

	invite, err := s.inviteRepo.Get(ctx, traineeID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if invite.Status != domain.InviteStatusPending {
		return ErrInviteInactive
	}
	if invite.Role != user.Role {
		return ErrRoleMismatch
	}
	if invite.Expired(time.Now().UTC()) {
		return ErrInviteExpired
	}
	if invite.TargetEmail != "" && !strings.EqualFold(invite.TargetEmail, user.Email) {
		return ErrEmailMismatch
	}

	// Conditional pending -> accepted swap. A losing concurrent acceptor
	// fails here with no TeamMember or Grant written.
	if err := s.inviteRepo.MarkAccepted(ctx, traineeID, code, user.UID, user.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInviteInactive
		}
		return err
	}

	now := time.Now().UTC()
	member := &domain.TeamMember{
		TraineeID:   traineeID,
		UID:         user.UID,
		Role:        user.Role,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Status:      domain.TeamMemberActive,
		InviteCode:  code,
		InvitedAt:   invite.CreatedAt,
		AcceptedAt:  &now,
	}
	if err := s.memberRepo.Upsert(ctx, member); err != nil {
		return err
	}

	grant := &domain.Grant{
		TraineeID:  traineeID,
		MemberUID:  user.UID,
		Role:       user.Role,
		Active:     true,
		Modules:    domain.NoModules(),
		InviteCode: code,
	}
	if err := s.grantRepo.Upsert(ctx, grant); err != nil {
		return err
	}
	s.authorizer.InvalidateGrant(ctx, traineeID, user.UID)

	return nil
}

// RevokeInvite withdraws a still-pending invite. Owner only.
func (s *inviteService) RevokeInvite(ctx context.Context, requester access.Identity, traineeID, code string) error {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return err
	}

	err := s.inviteRepo.MarkRevoked(ctx, traineeID, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, repository.ErrNotFound) {
		// Either absent or no longer pending; the caller cannot tell which.
		return ErrInviteInactive
	}
	return err
}

// ListInvites returns the invites the trainee has issued, for the roster UI.
func (s *inviteService) ListInvites(ctx context.Context, requester access.Identity, traineeID string) ([]domain.Invite, error) {
	if err := s.authorizer.CanManageTeam(requester, traineeID); err != nil {
		return nil, err
	}
	return s.inviteRepo.ListByTrainee(ctx, traineeID)
}

// ListIncomingInvites is the professional's "pending invites for me" inbox,
// keyed on their verified email across all trainees.
func (s *inviteService) ListIncomingInvites(ctx context.Context, email string) ([]domain.Invite, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	return s.inviteRepo.ListByTargetEmail(ctx, email)
}

func (s *inviteService) inviteLink(traineeID, code string) string {
	return fmt.Sprintf("%s/app/invite?traineeId=%s&code=%s",
		s.baseURL, url.QueryEscape(traineeID), url.QueryEscape(code))
}

// generateInviteCode draws a short random code from crypto/rand.
func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteCodeCharset[int(b)%len(inviteCodeCharset)]
	}
	return string(buf), nil
}
