package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/apperror"
	"marketplace/database"
	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

func NewMongoAvailabilityRepo(db *mongo.Database) (*MongoAvailabilityRepo, error) {
	repo := &MongoAvailabilityRepo{coll: db.Collection(database.AvailabilityCollection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "providerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.coll.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("failed to create availability index: %w", err)
	}
	return repo, nil
}

func (r *MongoAvailabilityRepo) Get(ctx context.Context, providerID string) (*models.AvailabilityRecord, error) {
	var rec models.AvailabilityRecord
	err := r.coll.FindOne(ctx, bson.M{"providerId": providerID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("availability.Get", "no availability record for provider %s", providerID)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "availability.Get", err)
	}
	return &rec, nil
}

func (r *MongoAvailabilityRepo) Save(ctx context.Context, rec *models.AvailabilityRecord) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"providerId": rec.ProviderID}, rec, opts); err != nil {
		return apperror.Wrap(apperror.KindInternal, "availability.Save", err)
	}
	return nil
}
