package service

import (
	"context"
	"testing"
	"time"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture() (SessionService, *fakeSessionRepo, *fakeEnrollmentRepo) {
	sessions := newFakeSessionRepo()
	enrollments := newFakeEnrollmentRepo()
	return NewSessionService(sessions, enrollments), sessions, enrollments
}

func validDraft() SessionDraft {
	return SessionDraft{
		Title:       "Mobility basics",
		Description: "A guided mobility session for beginners",
		Audience:    domain.AudienceAll,
		ScheduledAt: time.Now().UTC().Add(48 * time.Hour),
	}
}

func TestCreateOffer(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	offer, err := svc.CreateOffer(ctx, proIdentity(), "Coach Sam", validDraft())
	require.NoError(t, err)
	assert.False(t, offer.ID.IsZero())
	assert.Equal(t, testProUID, offer.CreatedByUID)
	assert.Equal(t, domain.RoleTrainer, offer.CreatedByRole, "the offer carries the creator's own role")
	assert.Equal(t, "Coach Sam", offer.CreatedByName)
}

func TestCreateOfferTraineeDenied(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	_, err := svc.CreateOffer(ctx, traineeIdentity(), "Someone", validDraft())
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestCreateOfferValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	short := validDraft()
	short.Title = "ab"
	_, err := svc.CreateOffer(ctx, proIdentity(), "Coach", short)
	assert.ErrorIs(t, err, ErrValidation)

	badAudience := validDraft()
	badAudience.Audience = domain.SessionAudience("everyone")
	_, err = svc.CreateOffer(ctx, proIdentity(), "Coach", badAudience)
	assert.ErrorIs(t, err, ErrValidation)

	noTime := validDraft()
	noTime.ScheduledAt = time.Time{}
	_, err = svc.CreateOffer(ctx, proIdentity(), "Coach", noTime)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateOfferCreatorOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	offer, err := svc.CreateOffer(ctx, proIdentity(), "Coach", validDraft())
	require.NoError(t, err)

	updated := validDraft()
	updated.Title = "Mobility basics II"
	got, err := svc.UpdateOffer(ctx, proIdentity(), offer.ID.Hex(), updated)
	require.NoError(t, err)
	assert.Equal(t, "Mobility basics II", got.Title)

	other := access.Identity{UID: "pro-2", Role: domain.RoleCounsellor}
	_, err = svc.UpdateOffer(ctx, other, offer.ID.Hex(), updated)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = svc.UpdateOffer(ctx, proIdentity(), "not-a-hex-id", updated)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEnrollIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, enrollments := newSessionFixture()

	offer, err := svc.CreateOffer(ctx, proIdentity(), "Coach", validDraft())
	require.NoError(t, err)
	sessionID := offer.ID.Hex()

	first, err := svc.Enroll(ctx, traineeIdentity(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentID(sessionID, testTraineeID), first.ID)

	second, err := svc.Enroll(ctx, traineeIdentity(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, enrollments.enrollments, 1)
}

func TestEnrollProfessionalDenied(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	offer, err := svc.CreateOffer(ctx, proIdentity(), "Coach", validDraft())
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, proIdentity(), offer.ID.Hex())
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestEnrollUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	_, err := svc.Enroll(ctx, traineeIdentity(), "5f2a000000000000000000aa")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	svc, _, enrollments := newSessionFixture()

	offer, err := svc.CreateOffer(ctx, proIdentity(), "Coach", validDraft())
	require.NoError(t, err)
	sessionID := offer.ID.Hex()

	_, err = svc.Enroll(ctx, traineeIdentity(), sessionID)
	require.NoError(t, err)

	require.NoError(t, svc.Withdraw(ctx, traineeIdentity(), sessionID))
	assert.Empty(t, enrollments.enrollments)

	// Withdrawing again is a no-op.
	assert.NoError(t, svc.Withdraw(ctx, traineeIdentity(), sessionID))
}

func TestListEnrollmentsCreatorOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture()

	offer, err := svc.CreateOffer(ctx, proIdentity(), "Coach", validDraft())
	require.NoError(t, err)
	sessionID := offer.ID.Hex()

	_, err = svc.Enroll(ctx, traineeIdentity(), sessionID)
	require.NoError(t, err)

	listed, err := svc.ListEnrollments(ctx, proIdentity(), sessionID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, testTraineeID, listed[0].TraineeID)

	other := access.Identity{UID: "pro-2", Role: domain.RoleNutritionist}
	_, err = svc.ListEnrollments(ctx, other, sessionID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}
