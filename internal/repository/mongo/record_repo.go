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

const recordCollectionName = "moduleRecords"

// mongoRecordRepository implements repository.RecordRepository using MongoDB.
// All module sub-collections share one backing collection, discriminated by
// the collection field.
type mongoRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoRecordRepository creates a new instance of mongoRecordRepository.
func NewMongoRecordRepository(db *mongo.Database) repository.RecordRepository {
	return &mongoRecordRepository{
		collection: db.Collection(recordCollectionName),
	}
}

// Put upserts a record keyed by (traineeId, collection, recordId).
func (r *mongoRecordRepository) Put(ctx context.Context, record *domain.ModuleRecord) error {
	if record.TraineeID == "" || record.Collection == "" || record.RecordID == "" {
		return errors.New("record traineeId, collection, and recordId are required")
	}

	now := time.Now().UTC()
	record.UpdatedAt = now

	filter := bson.M{
		"traineeId":  record.TraineeID,
		"collection": record.Collection,
		"recordId":   record.RecordID,
	}
	update := bson.M{
		"$set": bson.M{
			"date":      record.Date,
			"data":      record.Data,
			"updatedAt": record.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"traineeId":  record.TraineeID,
			"collection": record.Collection,
			"recordId":   record.RecordID,
			"createdAt":  now,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Get retrieves one record.
func (r *mongoRecordRepository) Get(ctx context.Context, traineeID, collection, recordID string) (*domain.ModuleRecord, error) {
	var record domain.ModuleRecord
	filter := bson.M{"traineeId": traineeID, "collection": collection, "recordId": recordID}

	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List returns all records of one trainee sub-collection, newest date first.
func (r *mongoRecordRepository) List(ctx context.Context, traineeID, collection string) ([]domain.ModuleRecord, error) {
	filter := bson.M{"traineeId": traineeID, "collection": collection}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ModuleRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes one record; deleting an absent record is not an error.
func (r *mongoRecordRepository) Delete(ctx context.Context, traineeID, collection, recordID string) error {
	filter := bson.M{"traineeId": traineeID, "collection": collection, "recordId": recordID}
	_, err := r.collection.DeleteOne(ctx, filter)
	return err
}

// EnsureRecordIndexes creates necessary indexes for the moduleRecords collection.
func EnsureRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "traineeId", Value: 1},
				{Key: "collection", Value: 1},
				{Key: "recordId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
