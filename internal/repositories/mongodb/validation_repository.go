package mongodb

import (
	"context"
	"fmt"
	"time"

	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type validationRepository struct {
	collection *mongo.Collection
}

func NewValidationRepository(db *mongo.Database) interfaces.ValidationRepository {
	return &validationRepository{
		collection: db.Collection("validations"),
	}
}

func (r *validationRepository) Create(ctx context.Context, validation *models.Validation) error {
	validation.ID = primitive.NewObjectID()
	if validation.Date.IsZero() {
		validation.Date = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, validation)
	if err != nil {
		return fmt.Errorf("failed to create validation: %w", err)
	}

	return nil
}

func (r *validationRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Validation, error) {
	return r.list(ctx, bson.M{"driver": driverID})
}

func (r *validationRepository) ListByDriverBetween(ctx context.Context, driverID primitive.ObjectID, from, to time.Time) ([]*models.Validation, error) {
	return r.list(ctx, bson.M{
		"driver": driverID,
		"date":   bson.M{"$gte": from, "$lte": to},
	})
}

func (r *validationRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*models.Validation, error) {
	return r.list(ctx, bson.M{"student": studentID})
}

func (r *validationRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"date": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count validations: %w", err)
	}
	return count, nil
}

func (r *validationRepository) list(ctx context.Context, filter bson.M) ([]*models.Validation, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"date": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	defer cursor.Close(ctx)

	var validations []*models.Validation
	if err := cursor.All(ctx, &validations); err != nil {
		return nil, fmt.Errorf("failed to decode validations: %w", err)
	}

	return validations, nil
}
