package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ukbus/internal/apperrors"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/services"
	"ukbus/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type studentRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewStudentRepository(db *mongo.Database, cache services.CacheService) interfaces.StudentRepository {
	return &studentRepository{
		collection: db.Collection("students"),
		cache:      cache,
	}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	student.ID = primitive.NewObjectID()
	student.CreatedAt = time.Now()
	student.UpdatedAt = time.Now()
	if student.History == nil {
		student.History = []models.HistoryEntry{}
	}

	_, err := r.collection.InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrPhoneAlreadyUsed
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	if student := r.getFromCache(ctx, id.Hex()); student != nil {
		return student, nil
	}

	var student models.Student
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	r.cacheStudent(ctx, &student)
	return &student, nil
}

func (r *studentRepository) GetByPhone(ctx context.Context, phone string) (*models.Student, error) {
	var student models.Student
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student by phone: %w", err)
	}

	return &student, nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

func (r *studentRepository) CreditBalance(ctx context.Context, id primitive.ObjectID, amount int64) (*models.Student, error) {
	after := options.After
	var student models.Student
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"balance": amount},
			"$set": bson.M{"updated_at": time.Now()},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	r.invalidateCache(ctx, id.Hex())
	return &student, nil
}

// DebitForPurchase is a single conditional update: the balance guard lives
// in the filter, so two concurrent purchases cannot both spend the same
// francs.
func (r *studentRepository) DebitForPurchase(ctx context.Context, id primitive.ObjectID, total, quantity int64, entry models.HistoryEntry) (*models.Student, error) {
	after := options.After
	var student models.Student
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":     id,
			"balance": bson.M{"$gte": total},
		},
		bson.M{
			"$inc":  bson.M{"balance": -total, "tickets": quantity},
			"$push": bson.M{"history": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the student is unknown or the balance guard failed.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to debit for purchase: %w", err)
	}

	r.invalidateCache(ctx, id.Hex())
	return &student, nil
}

// ConsumeTicket decrements tickets only when at least one remains. The
// guard in the filter is what keeps two concurrent scans from both spending
// the last ticket.
func (r *studentRepository) ConsumeTicket(ctx context.Context, id primitive.ObjectID, entry models.HistoryEntry) (*models.Student, error) {
	after := options.After
	var student models.Student
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":     id,
			"tickets": bson.M{"$gte": int64(1)},
		},
		bson.M{
			"$inc":  bson.M{"tickets": -1},
			"$push": bson.M{"history": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.ErrNoTicketAvailable
		}
		return nil, fmt.Errorf("failed to consume ticket: %w", err)
	}

	r.invalidateCache(ctx, id.Hex())
	return &student, nil
}

func (r *studentRepository) cacheStudent(ctx context.Context, student *models.Student) {
	if r.cache == nil {
		return
	}
	key := fmt.Sprintf("student_%s", student.ID.Hex())
	_ = r.cache.Set(ctx, key, student, utils.StudentCacheTTL)
}

func (r *studentRepository) getFromCache(ctx context.Context, id string) *models.Student {
	if r.cache == nil {
		return nil
	}
	var student models.Student
	if err := r.cache.Get(ctx, fmt.Sprintf("student_%s", id), &student); err != nil {
		return nil
	}
	return &student
}

func (r *studentRepository) invalidateCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("student_%s", id))
}
