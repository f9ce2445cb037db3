package subscriptionRepo

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

type MongoSubscriptionRepo struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionRepo(db *mongo.Database) (*MongoSubscriptionRepo, error) {
	repo := &MongoSubscriptionRepo{coll: db.Collection(database.SubscriptionsCollection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "clientId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create subscription indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	return database.InsertOne(ctx, r.coll, "subscriptions.Create", sub)
}

func (r *MongoSubscriptionRepo) GetByClient(ctx context.Context, clientID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.coll.FindOne(ctx, bson.M{"clientId": clientID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("subscriptions.GetByClient", "no subscription for client %s", clientID)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "subscriptions.GetByClient", err)
	}
	return &sub, nil
}

func (r *MongoSubscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	expected := sub.Version
	sub.Version++
	if err := database.ReplaceVersioned(ctx, r.coll, "subscriptions.Update", sub.ID, expected, sub); err != nil {
		sub.Version = expected
		return err
	}
	return nil
}
