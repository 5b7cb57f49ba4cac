package services

import (
	"context"

	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentService reads the student-facing views: profile and history.
type StudentService interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	History(ctx context.Context, id primitive.ObjectID) (*StudentHistory, error)
}

type StudentHistory struct {
	Purchases   []models.HistoryEntry `json:"purchases"`
	Validations []*models.Validation  `json:"validations"`
}

type studentService struct {
	studentRepo    interfaces.StudentRepository
	validationRepo interfaces.ValidationRepository
}

func NewStudentService(studentRepo interfaces.StudentRepository, validationRepo interfaces.ValidationRepository) StudentService {
	return &studentService{
		studentRepo:    studentRepo,
		validationRepo: validationRepo,
	}
}

func (s *studentService) Profile(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

func (s *studentService) History(ctx context.Context, id primitive.ObjectID) (*StudentHistory, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	validations, err := s.validationRepo.ListByStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	purchases := make([]models.HistoryEntry, 0, len(student.History))
	for _, entry := range student.History {
		if entry.Type == models.HistoryTypePurchase {
			purchases = append(purchases, entry)
		}
	}

	return &StudentHistory{
		Purchases:   purchases,
		Validations: validations,
	}, nil
}
