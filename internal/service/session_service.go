package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionDraft carries the caller-supplied fields of a new session offer.
type SessionDraft struct {
	Title       string
	Description string
	Audience    domain.SessionAudience
	ScheduledAt time.Time
}

// --- Service Interface ---
type SessionService interface {
	CreateOffer(ctx context.Context, requester access.Identity, displayName string, draft SessionDraft) (*domain.SessionOffer, error)
	UpdateOffer(ctx context.Context, requester access.Identity, sessionID string, draft SessionDraft) (*domain.SessionOffer, error)
	ListOffers(ctx context.Context) ([]domain.SessionOffer, error)
	Enroll(ctx context.Context, requester access.Identity, sessionID string) (*domain.Enrollment, error)
	Withdraw(ctx context.Context, requester access.Identity, sessionID string) error
	ListEnrollments(ctx context.Context, requester access.Identity, sessionID string) ([]domain.Enrollment, error)
}

// --- Service Implementation ---

type sessionService struct {
	sessionRepo    repository.SessionRepository
	enrollmentRepo repository.EnrollmentRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.SessionRepository, enrollmentRepo repository.EnrollmentRepository) SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// CreateOffer posts a scheduled session. Only professionals may post, and
// the offer is stamped with their own role; a trainer cannot post a
// nutritionist session.
func (s *sessionService) CreateOffer(ctx context.Context, requester access.Identity, displayName string, draft SessionDraft) (*domain.SessionOffer, error) {
	if !domain.IsProfessionalRole(requester.Role) {
		return nil, access.ErrPermissionDenied
	}
	if err := validateSessionDraft(draft); err != nil {
		return nil, err
	}

	offer := &domain.SessionOffer{
		Title:         draft.Title,
		Description:   draft.Description,
		Audience:      draft.Audience,
		ScheduledAt:   draft.ScheduledAt,
		CreatedByUID:  requester.UID,
		CreatedByRole: requester.Role,
		CreatedByName: displayName,
	}

	id, err := s.sessionRepo.Create(ctx, offer)
	if err != nil {
		return nil, err
	}
	offer.ID = id
	return offer, nil
}

// UpdateOffer edits an existing offer. Only the creator may update.
func (s *sessionService) UpdateOffer(ctx context.Context, requester access.Identity, sessionID string, draft SessionDraft) (*domain.SessionOffer, error) {
	offer, err := s.getOffer(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if offer.CreatedByUID != requester.UID {
		return nil, access.ErrPermissionDenied
	}
	if err := validateSessionDraft(draft); err != nil {
		return nil, err
	}

	offer.Title = draft.Title
	offer.Description = draft.Description
	offer.Audience = draft.Audience
	offer.ScheduledAt = draft.ScheduledAt

	if err := s.sessionRepo.Update(ctx, offer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return offer, nil
}

// ListOffers returns all offers; any authenticated identity may browse.
func (s *sessionService) ListOffers(ctx context.Context) ([]domain.SessionOffer, error) {
	return s.sessionRepo.List(ctx)
}

// Enroll signs the requesting trainee up for a session. The deterministic
// enrollment ID makes re-enrolling idempotent.
func (s *sessionService) Enroll(ctx context.Context, requester access.Identity, sessionID string) (*domain.Enrollment, error) {
	if requester.Role != domain.RoleTrainee {
		return nil, access.ErrPermissionDenied
	}
	if _, err := s.getOffer(ctx, sessionID); err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		SessionID: sessionID,
		TraineeID: requester.UID,
	}
	if err := s.enrollmentRepo.Upsert(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Withdraw removes the requester's own enrollment. The ownership check is
// encoded in the ID itself: a trainee can only ever address
// sessionID_ownUID.
func (s *sessionService) Withdraw(ctx context.Context, requester access.Identity, sessionID string) error {
	if requester.Role != domain.RoleTrainee {
		return access.ErrPermissionDenied
	}
	return s.enrollmentRepo.Delete(ctx, domain.EnrollmentID(sessionID, requester.UID))
}

// ListEnrollments returns who enrolled in a session. Creator only.
func (s *sessionService) ListEnrollments(ctx context.Context, requester access.Identity, sessionID string) ([]domain.Enrollment, error) {
	offer, err := s.getOffer(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if offer.CreatedByUID != requester.UID {
		return nil, access.ErrPermissionDenied
	}
	return s.enrollmentRepo.ListBySession(ctx, sessionID)
}

func (s *sessionService) getOffer(ctx context.Context, sessionID string) (*domain.SessionOffer, error) {
	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session id", ErrValidation)
	}
	offer, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return offer, nil
}

func validateSessionDraft(draft SessionDraft) error {
	if len(draft.Title) < 3 || len(draft.Description) < 3 {
		return fmt.Errorf("%w: title and description must be at least 3 characters", ErrValidation)
	}
	switch draft.Audience {
	case domain.AudienceTrainee, domain.AudienceTrainer, domain.AudienceNutritionist, domain.AudienceCounsellor, domain.AudienceAll:
	default:
		return fmt.Errorf("%w: unknown audience %q", ErrValidation, draft.Audience)
	}
	if draft.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", ErrValidation)
	}
	return nil
}
