package repository

import (
	"context"

	"cleoaura/careteam-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// TraineeRepository manages the per-trainee root documents.
type TraineeRepository interface {
	Create(ctx context.Context, trainee *domain.Trainee) error
	GetByUID(ctx context.Context, uid string) (*domain.Trainee, error)
}

// InviteRepository defines the interface for interacting with invite data.
// Invites are keyed by (traineeId, code).
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error // ErrConflict when the code is taken for this trainee
	Get(ctx context.Context, traineeID, code string) (*domain.Invite, error)
	ListByTrainee(ctx context.Context, traineeID string) ([]domain.Invite, error)
	// ListByTargetEmail is the cross-trainee "pending invites for me" query.
	ListByTargetEmail(ctx context.Context, email string) ([]domain.Invite, error)
	// MarkAccepted performs a conditional pending -> accepted transition.
	// It returns ErrNotFound when no pending invite matched, so a losing
	// concurrent acceptor gets a clean failure instead of double-granting.
	MarkAccepted(ctx context.Context, traineeID, code, byUID, byEmail string) error
	// MarkRevoked performs the conditional pending -> revoked transition.
	MarkRevoked(ctx context.Context, traineeID, code string) error
}

// TeamMemberRepository defines the interface for care-team membership records.
type TeamMemberRepository interface {
	Upsert(ctx context.Context, member *domain.TeamMember) error
	Get(ctx context.Context, traineeID, uid string) (*domain.TeamMember, error)
	ListByTrainee(ctx context.Context, traineeID string) ([]domain.TeamMember, error)
	Delete(ctx context.Context, traineeID, uid string) error // No error when already absent
}

// GrantRepository defines the interface for per-(trainee, professional)
// permission records.
type GrantRepository interface {
	Upsert(ctx context.Context, grant *domain.Grant) error
	Get(ctx context.Context, traineeID, memberUID string) (*domain.Grant, error)
	ListByTrainee(ctx context.Context, traineeID string) ([]domain.Grant, error)
	// ListByMember is the reverse lookup used by the client roster.
	ListByMember(ctx context.Context, memberUID string, limit int64) ([]domain.Grant, error)
	// SetModule flips exactly one module flag. Writes are field-scoped so
	// concurrent toggles of different modules do not clobber each other.
	// Enabling or disabling a module also force-sets active=true.
	SetModule(ctx context.Context, traineeID, memberUID string, module domain.ModuleKey, enabled bool) error
	SetActive(ctx context.Context, traineeID, memberUID string, active bool) error
	Delete(ctx context.Context, traineeID, memberUID string) error // No error when already absent
}

// RecordRepository stores entries of the trainee module sub-collections.
type RecordRepository interface {
	Put(ctx context.Context, record *domain.ModuleRecord) error
	Get(ctx context.Context, traineeID, collection, recordID string) (*domain.ModuleRecord, error)
	List(ctx context.Context, traineeID, collection string) ([]domain.ModuleRecord, error)
	Delete(ctx context.Context, traineeID, collection, recordID string) error
}

// SessionRepository defines the interface for session offers.
type SessionRepository interface {
	Create(ctx context.Context, offer *domain.SessionOffer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionOffer, error)
	List(ctx context.Context) ([]domain.SessionOffer, error)
	Update(ctx context.Context, offer *domain.SessionOffer) error
}

// EnrollmentRepository defines the interface for session enrollments.
type EnrollmentRepository interface {
	Upsert(ctx context.Context, enrollment *domain.Enrollment) error
	Get(ctx context.Context, id string) (*domain.Enrollment, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Enrollment, error)
	Delete(ctx context.Context, id string) error
}
