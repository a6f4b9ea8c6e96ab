package mongo

import (
	"context"
	"errors"
	"time"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const teamMemberCollectionName = "teamMembers"

// mongoTeamMemberRepository implements repository.TeamMemberRepository using MongoDB.
type mongoTeamMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoTeamMemberRepository creates a new instance of mongoTeamMemberRepository.
func NewMongoTeamMemberRepository(db *mongo.Database) repository.TeamMemberRepository {
	return &mongoTeamMemberRepository{
		collection: db.Collection(teamMemberCollectionName),
	}
}

// Upsert writes the membership record keyed by (traineeId, uid).
func (r *mongoTeamMemberRepository) Upsert(ctx context.Context, member *domain.TeamMember) error {
	if member.TraineeID == "" || member.UID == "" {
		return errors.New("team member traineeId and uid are required")
	}
	member.UpdatedAt = time.Now().UTC()

	filter := bson.M{"traineeId": member.TraineeID, "uid": member.UID}
	update := bson.M{"$set": member}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Get retrieves one membership record.
func (r *mongoTeamMemberRepository) Get(ctx context.Context, traineeID, uid string) (*domain.TeamMember, error) {
	var member domain.TeamMember
	filter := bson.M{"traineeId": traineeID, "uid": uid}

	err := r.collection.FindOne(ctx, filter).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ListByTrainee returns all members of a trainee's care team.
func (r *mongoTeamMemberRepository) ListByTrainee(ctx context.Context, traineeID string) ([]domain.TeamMember, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"traineeId": traineeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []domain.TeamMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Delete hard-deletes the membership record. Deleting an absent record is
// not an error: revocation must be idempotent.
func (r *mongoTeamMemberRepository) Delete(ctx context.Context, traineeID, uid string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"traineeId": traineeID, "uid": uid})
	return err
}

// EnsureTeamMemberIndexes creates necessary indexes for the teamMembers collection.
func EnsureTeamMemberIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
