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

const enrollmentCollectionName = "sessionEnrollments"

// mongoEnrollmentRepository implements repository.EnrollmentRepository using
// MongoDB. The deterministic _id (sessionId_traineeId) makes Upsert a
// natural idempotency mechanism.
type mongoEnrollmentRepository struct {
	collection *mongo.Collection
}

// NewMongoEnrollmentRepository creates a new instance of mongoEnrollmentRepository.
func NewMongoEnrollmentRepository(db *mongo.Database) repository.EnrollmentRepository {
	return &mongoEnrollmentRepository{
		collection: db.Collection(enrollmentCollectionName),
	}
}

// Upsert writes the enrollment under its deterministic ID.
func (r *mongoEnrollmentRepository) Upsert(ctx context.Context, enrollment *domain.Enrollment) error {
	if enrollment.SessionID == "" || enrollment.TraineeID == "" {
		return errors.New("enrollment sessionId and traineeId are required")
	}
	enrollment.ID = domain.EnrollmentID(enrollment.SessionID, enrollment.TraineeID)

	filter := bson.M{"_id": enrollment.ID}
	update := bson.M{
		"$set": bson.M{
			"sessionId": enrollment.SessionID,
			"traineeId": enrollment.TraineeID,
		},
		"$setOnInsert": bson.M{
			"enrolledAt": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Get retrieves an enrollment by its deterministic ID.
func (r *mongoEnrollmentRepository) Get(ctx context.Context, id string) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// ListBySession returns all enrollments referencing a session.
func (r *mongoEnrollmentRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Enrollment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Delete removes an enrollment; deleting an absent one is not an error.
func (r *mongoEnrollmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureEnrollmentIndexes creates necessary indexes for the sessionEnrollments collection.
func EnsureEnrollmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
