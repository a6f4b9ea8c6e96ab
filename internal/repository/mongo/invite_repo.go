package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const inviteCollectionName = "invites"

// mongoInviteRepository implements repository.InviteRepository using MongoDB.
// Invites for all trainees live in one collection with a unique
// (traineeId, code) index.
type mongoInviteRepository struct {
	collection *mongo.Collection
}

// NewMongoInviteRepository creates a new instance of mongoInviteRepository.
func NewMongoInviteRepository(db *mongo.Database) repository.InviteRepository {
	return &mongoInviteRepository{
		collection: db.Collection(inviteCollectionName),
	}
}

// Create inserts a new pending invite.
func (r *mongoInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	if invite.Code == "" || invite.TraineeID == "" || invite.Role == "" {
		return errors.New("invite code, traineeId, and role are required")
	}

	now := time.Now().UTC()
	invite.CreatedAt = now
	invite.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, invite)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// Get retrieves an invite by trainee and code.
func (r *mongoInviteRepository) Get(ctx context.Context, traineeID, code string) (*domain.Invite, error) {
	var invite domain.Invite
	filter := bson.M{"traineeId": traineeID, "code": code}

	err := r.collection.FindOne(ctx, filter).Decode(&invite)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &invite, nil
}

// ListByTrainee returns all invites a trainee has issued, newest first.
func (r *mongoInviteRepository) ListByTrainee(ctx context.Context, traineeID string) ([]domain.Invite, error) {
	filter := bson.M{"traineeId": traineeID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invites []domain.Invite
	if err = cursor.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// ListByTargetEmail returns the pending invites targeted at a professional's
// verified email, across all trainees.
func (r *mongoInviteRepository) ListByTargetEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	filter := bson.M{
		"targetEmail": strings.ToLower(email),
		"status":      domain.InviteStatusPending,
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invites []domain.Invite
	if err = cursor.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// MarkAccepted transitions pending -> accepted as a single conditional
// update. The status filter makes this a compare-and-swap: of two racing
// acceptors only one matches, the other gets ErrNotFound.
func (r *mongoInviteRepository) MarkAccepted(ctx context.Context, traineeID, code, byUID, byEmail string) error {
	now := time.Now().UTC()
	filter := bson.M{
		"traineeId": traineeID,
		"code":      code,
		"status":    domain.InviteStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":          domain.InviteStatusAccepted,
			"acceptedAt":      now,
			"acceptedByUid":   byUID,
			"acceptedByEmail": byEmail,
			"updatedAt":       now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkRevoked transitions pending -> revoked, conditionally like MarkAccepted.
func (r *mongoInviteRepository) MarkRevoked(ctx context.Context, traineeID, code string) error {
	filter := bson.M{
		"traineeId": traineeID,
		"code":      code,
		"status":    domain.InviteStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.InviteStatusRevoked,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureInviteIndexes creates necessary indexes for the invites collection.
func EnsureInviteIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Cross-trainee "pending invites for me" inbox query.
			Keys:    bson.D{{Key: "targetEmail", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
