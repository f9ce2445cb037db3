package providerRepo

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

// MongoProviderRepo implements ProviderRepository on MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

func NewMongoProviderRepo(db *mongo.Database) (*MongoProviderRepo, error) {
	repo := &MongoProviderRepo{coll: db.Collection(database.ProvidersCollection)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	return database.InsertOne(ctx, r.coll, "providers.Create", p)
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	var p models.Provider
	if err := database.FindByID(ctx, r.coll, "providers.GetByID", id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoProviderRepo) GetByEmail(ctx context.Context, email string) (*models.Provider, error) {
	var p models.Provider
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("providers.GetByEmail", "provider with email %s not found", email)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "providers.GetByEmail", err)
	}
	return &p, nil
}

func (r *MongoProviderRepo) GetAll(ctx context.Context) ([]models.Provider, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "providers.GetAll", err)
	}
	defer cursor.Close(ctx)

	var providers []models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) Update(ctx context.Context, p *models.Provider) error {
	expected := p.Version
	p.Version++
	if err := database.ReplaceVersioned(ctx, r.coll, "providers.Update", p.ID, expected, p); err != nil {
		p.Version = expected
		return err
	}
	return nil
}

func (r *MongoProviderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "serviceType", Value: 1}, {Key: "documentsVerified", Value: -1}}},
		{Keys: bson.D{{Key: "bookingEnabled", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	return nil
}
