package catalogRepo

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

type MongoCatalogRepo struct {
	coll *mongo.Collection
}

func NewMongoCatalogRepo(db *mongo.Database) (*MongoCatalogRepo, error) {
	repo := &MongoCatalogRepo{coll: db.Collection(database.ServicesCollection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create service indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoCatalogRepo) Create(ctx context.Context, svc *models.ServiceOffering) error {
	return database.InsertOne(ctx, r.coll, "services.Create", svc)
}

func (r *MongoCatalogRepo) GetByID(ctx context.Context, id string) (*models.ServiceOffering, error) {
	var svc models.ServiceOffering
	if err := database.FindByID(ctx, r.coll, "services.GetByID", id, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *MongoCatalogRepo) ListByProvider(ctx context.Context, providerID string) ([]models.ServiceOffering, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"providerId": providerID}, opts)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "services.ListByProvider", err)
	}
	defer cursor.Close(ctx)

	var out []models.ServiceOffering
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return out, nil
}

func (r *MongoCatalogRepo) Update(ctx context.Context, svc *models.ServiceOffering) error {
	expected := svc.Version
	svc.Version++
	if err := database.ReplaceVersioned(ctx, r.coll, "services.Update", svc.ID, expected, svc); err != nil {
		svc.Version = expected
		return err
	}
	return nil
}

func (r *MongoCatalogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "services.Delete", err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("services.Delete", "service %s not found", id)
	}
	return nil
}
