package userRepo

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

type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) (*MongoUserRepo, error) {
	repo := &MongoUserRepo{coll: db.Collection(database.UsersCollection)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoUserRepo) Create(ctx context.Context, c *models.Client) error {
	return database.InsertOne(ctx, r.coll, "users.Create", c)
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	if err := database.FindByID(ctx, r.coll, "users.GetByID", id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var c models.Client
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("users.GetByEmail", "user with email %s not found", email)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "users.GetByEmail", err)
	}
	return &c, nil
}

func (r *MongoUserRepo) Update(ctx context.Context, c *models.Client) error {
	expected := c.Version
	c.Version++
	if err := database.ReplaceVersioned(ctx, r.coll, "users.Update", c.ID, expected, c); err != nil {
		c.Version = expected
		return err
	}
	return nil
}

func (r *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
