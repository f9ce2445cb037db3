package bookingRepo

import (
	"context"
	"fmt"

	"marketplace/apperror"
	"marketplace/database"
	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository on MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo binds the repo to the bookings collection and makes
// sure its indexes exist.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{coll: db.Collection(database.BookingsCollection)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return database.InsertOne(ctx, r.coll, "bookings.Create", b)
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := database.FindByID(ctx, r.coll, "bookings.GetByID", id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	expected := b.Version
	b.Version++
	if err := database.ReplaceVersioned(ctx, r.coll, "bookings.Update", b.ID, expected, b); err != nil {
		b.Version = expected
		return err
	}
	return nil
}

func (r *MongoBookingRepo) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if filter.ClientID != "" {
		query["clientId"] = filter.ClientID
	}
	if filter.ProviderID != "" {
		query["providerId"] = filter.ProviderID
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.CancellationRequested != nil {
		query["cancellationRequested"] = *filter.CancellationRequested
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "bookings.List", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
