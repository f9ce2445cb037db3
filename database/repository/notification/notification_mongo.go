package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"marketplace/apperror"
	"marketplace/database"
	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) (*MongoNotificationRepo, error) {
	repo := &MongoNotificationRepo{coll: db.Collection(database.NotificationsCollection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "targetRole", Value: 1}, {Key: "targetId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return database.InsertOne(ctx, r.coll, "notifications.Create", n)
}

func (r *MongoNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := database.FindByID(ctx, r.coll, "notifications.GetByID", id, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *MongoNotificationRepo) ListForTarget(ctx context.Context, role models.Role, targetID string, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"targetRole": role, "targetId": targetID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "notifications.ListForTarget", err)
	}
	defer cursor.Close(ctx)

	var out []models.Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, id string, role models.Role, targetID string) error {
	filter := bson.M{"id": id, "targetRole": role, "targetId": targetID}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "notifications.MarkRead", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("notifications.MarkRead", "notification %s not found", id)
	}
	return nil
}
