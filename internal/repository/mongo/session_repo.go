package mongo

import (
	"context"
	"errors"
	"time"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessionOffers"

// mongoSessionRepository implements repository.SessionRepository using MongoDB.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new instance of mongoSessionRepository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session offer.
func (r *mongoSessionRepository) Create(ctx context.Context, offer *domain.SessionOffer) (primitive.ObjectID, error) {
	if offer.Title == "" || offer.CreatedByUID == "" || offer.CreatedByRole == "" {
		return primitive.NilObjectID, errors.New("session title, createdByUid, and createdByRole are required")
	}

	offer.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, offer)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session offer.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionOffer, error) {
	var offer domain.SessionOffer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// List returns all session offers, soonest first.
func (r *mongoSessionRepository) List(ctx context.Context) ([]domain.SessionOffer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var offers []domain.SessionOffer
	if err = cursor.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Update replaces the mutable fields of an existing offer.
func (r *mongoSessionRepository) Update(ctx context.Context, offer *domain.SessionOffer) error {
	offer.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": offer.ID}
	update := bson.M{
		"$set": bson.M{
			"title":       offer.Title,
			"description": offer.Description,
			"audience":    offer.Audience,
			"scheduledAt": offer.ScheduledAt,
			"updatedAt":   offer.UpdatedAt,
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
