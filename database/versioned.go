package database

import (
	"context"
	"errors"

	"marketplace/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReplaceVersioned replaces the document with the given id only if its
// stored version still equals expected. The caller sets the new version on
// doc. A miss is reported as NotFound or Conflict.
func ReplaceVersioned(ctx context.Context, coll *mongo.Collection, op, id string, expected int64, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"id": id, "version": expected}, doc)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, op, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, op, err)
	}
	if n == 0 {
		return apperror.NotFound(op, "document %s not found", id)
	}
	return apperror.New(apperror.KindConflict, op, "document %s was modified concurrently", id)
}

// FindByID decodes the document with the given id into out.
func FindByID(ctx context.Context, coll *mongo.Collection, op, id string, out interface{}) error {
	err := coll.FindOne(ctx, bson.M{"id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NotFound(op, "document %s not found", id)
	}
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, op, err)
	}
	return nil
}

// InsertOne inserts doc, reporting duplicate keys as AlreadyExists.
func InsertOne(ctx context.Context, coll *mongo.Collection, op string, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.New(apperror.KindAlreadyExists, op, "document already exists")
		}
		return apperror.Wrap(apperror.KindInternal, op, err)
	}
	return nil
}
