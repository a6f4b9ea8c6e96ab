package mongo

import (
	"context"
	"errors"
	"time"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const traineeCollectionName = "trainees"

// mongoTraineeRepository implements repository.TraineeRepository using MongoDB.
type mongoTraineeRepository struct {
	collection *mongo.Collection
}

// NewMongoTraineeRepository creates a new instance of mongoTraineeRepository.
func NewMongoTraineeRepository(db *mongo.Database) repository.TraineeRepository {
	return &mongoTraineeRepository{
		collection: db.Collection(traineeCollectionName),
	}
}

// Create inserts the per-trainee root document. The UID doubles as the
// document ID, so re-registration of the same user conflicts.
func (r *mongoTraineeRepository) Create(ctx context.Context, trainee *domain.Trainee) error {
	if trainee.UID == "" || trainee.OwnerID == "" {
		return errors.New("trainee uid and ownerId are required")
	}
	trainee.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, trainee)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetByUID retrieves a trainee root document by its UID.
func (r *mongoTraineeRepository) GetByUID(ctx context.Context, uid string) (*domain.Trainee, error) {
	var trainee domain.Trainee
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&trainee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainee, nil
}
