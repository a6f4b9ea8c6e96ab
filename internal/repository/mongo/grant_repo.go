package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const grantCollectionName = "grants"

// mongoGrantRepository implements repository.GrantRepository using MongoDB.
type mongoGrantRepository struct {
	collection *mongo.Collection
}

// NewMongoGrantRepository creates a new instance of mongoGrantRepository.
func NewMongoGrantRepository(db *mongo.Database) repository.GrantRepository {
	return &mongoGrantRepository{
		collection: db.Collection(grantCollectionName),
	}
}

// Upsert writes the grant keyed by (traineeId, memberUid). Modules are
// normalized so the persisted map is always total.
func (r *mongoGrantRepository) Upsert(ctx context.Context, grant *domain.Grant) error {
	if grant.TraineeID == "" || grant.MemberUID == "" {
		return errors.New("grant traineeId and memberUid are required")
	}
	grant.Modules = grant.Modules.Normalize()
	now := time.Now().UTC()
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = now
	}
	grant.UpdatedAt = now

	filter := bson.M{"traineeId": grant.TraineeID, "memberUid": grant.MemberUID}
	update := bson.M{"$set": grant}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Get retrieves one grant.
func (r *mongoGrantRepository) Get(ctx context.Context, traineeID, memberUID string) (*domain.Grant, error) {
	var grant domain.Grant
	filter := bson.M{"traineeId": traineeID, "memberUid": memberUID}

	err := r.collection.FindOne(ctx, filter).Decode(&grant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	grant.Modules = grant.Modules.Normalize()
	return &grant, nil
}

// ListByTrainee returns all grants a trainee has issued.
func (r *mongoGrantRepository) ListByTrainee(ctx context.Context, traineeID string) ([]domain.Grant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"traineeId": traineeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var grants []domain.Grant
	if err = cursor.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// ListByMember is the reverse lookup across all trainees' grants, used by
// the professional's client roster.
func (r *mongoGrantRepository) ListByMember(ctx context.Context, memberUID string, limit int64) ([]domain.Grant, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"memberUid": memberUID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var grants []domain.Grant
	if err = cursor.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// SetModule flips exactly one module flag via a field-scoped update, so
// concurrent toggles of different modules cannot clobber each other.
// Enabling any module reactivates the whole grant.
func (r *mongoGrantRepository) SetModule(ctx context.Context, traineeID, memberUID string, module domain.ModuleKey, enabled bool) error {
	filter := bson.M{"traineeId": traineeID, "memberUid": memberUID}
	update := bson.M{
		"$set": bson.M{
			fmt.Sprintf("modules.%s", module): enabled,
			"active":                          true,
			"updatedAt":                       time.Now().UTC(),
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

// SetActive flips the master switch without touching module flags.
func (r *mongoGrantRepository) SetActive(ctx context.Context, traineeID, memberUID string, active bool) error {
	filter := bson.M{"traineeId": traineeID, "memberUid": memberUID}
	update := bson.M{
		"$set": bson.M{
			"active":    active,
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

// Delete hard-deletes the grant. Absent grants delete cleanly so revocation
// stays idempotent.
func (r *mongoGrantRepository) Delete(ctx context.Context, traineeID, memberUID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"traineeId": traineeID, "memberUid": memberUID})
	return err
}

// EnsureGrantIndexes creates necessary indexes for the grants collection.
func EnsureGrantIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "memberUid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Roster reverse lookup by professional.
			Keys:    bson.D{{Key: "memberUid", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
