package services

import (
	"context"
	"fmt"

	"ukbus/internal/apperrors"
	"ukbus/internal/config"
	"ukbus/internal/models"
	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/utils"
	"ukbus/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStudent = "student"
	RoleDriver  = "driver"
	RoleAdmin   = "admin"
)

// AuthService is the credential side of the house: registration, login and
// refresh-token exchange for students, drivers and admins.
type AuthService interface {
	RegisterStudent(ctx context.Context, request *RegisterRequest) (*models.Student, error)
	RegisterDriver(ctx context.Context, request *RegisterRequest) (*models.Driver, error)
	RegisterAdmin(ctx context.Context, request *RegisterRequest) (*models.Admin, error)

	LoginStudent(ctx context.Context, phone, password string) (*models.Student, *utils.TokenPair, error)
	LoginDriver(ctx context.Context, phone, password string) (*models.Driver, *utils.TokenPair, error)
	LoginAdmin(ctx context.Context, phone, password string) (*models.Admin, *utils.TokenPair, error)

	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required,togo_phone"`
	Password  string `json:"password" validate:"required,min=6"`
}

type authService struct {
	studentRepo interfaces.StudentRepository
	driverRepo  interfaces.DriverRepository
	adminRepo   interfaces.AdminRepository
	security    *config.SecurityConfig
	logger      *logger.Logger
}

func NewAuthService(
	studentRepo interfaces.StudentRepository,
	driverRepo interfaces.DriverRepository,
	adminRepo interfaces.AdminRepository,
	security *config.SecurityConfig,
	log *logger.Logger,
) AuthService {
	return &authService{
		studentRepo: studentRepo,
		driverRepo:  driverRepo,
		adminRepo:   adminRepo,
		security:    security,
		logger:      log,
	}
}

func (s *authService) RegisterStudent(ctx context.Context, request *RegisterRequest) (*models.Student, error) {
	phone, hash, err := s.prepareCredentials(request)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     phone,
		Password:  hash,
		Balance:   0,
		Tickets:   0,
		History:   []models.HistoryEntry{},
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.WithStudentID(student.ID).Info("student registered")
	return student, nil
}

func (s *authService) RegisterDriver(ctx context.Context, request *RegisterRequest) (*models.Driver, error) {
	phone, hash, err := s.prepareCredentials(request)
	if err != nil {
		return nil, err
	}

	driver := &models.Driver{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     phone,
		Password:  hash,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

func (s *authService) RegisterAdmin(ctx context.Context, request *RegisterRequest) (*models.Admin, error) {
	phone, hash, err := s.prepareCredentials(request)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     phone,
		Password:  hash,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	return admin, nil
}

func (s *authService) LoginStudent(ctx context.Context, phone, password string) (*models.Student, *utils.TokenPair, error) {
	normalized, err := utils.NormalizeTogolesePhone(phone)
	if err != nil {
		return nil, nil, apperrors.ErrAuthentication
	}

	student, err := s.studentRepo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, nil, apperrors.ErrAuthentication
	}

	tokens, err := s.checkPasswordAndIssue(student.ID, RoleStudent, student.Password, password)
	if err != nil {
		return nil, nil, err
	}

	return student, tokens, nil
}

func (s *authService) LoginDriver(ctx context.Context, phone, password string) (*models.Driver, *utils.TokenPair, error) {
	normalized, err := utils.NormalizeTogolesePhone(phone)
	if err != nil {
		return nil, nil, apperrors.ErrAuthentication
	}

	driver, err := s.driverRepo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, nil, apperrors.ErrAuthentication
	}

	tokens, err := s.checkPasswordAndIssue(driver.ID, RoleDriver, driver.Password, password)
	if err != nil {
		return nil, nil, err
	}

	return driver, tokens, nil
}

func (s *authService) LoginAdmin(ctx context.Context, phone, password string) (*models.Admin, *utils.TokenPair, error) {
	normalized, err := utils.NormalizeTogolesePhone(phone)
	if err != nil {
		return nil, nil, apperrors.ErrAuthentication
	}

	admin, err := s.adminRepo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, nil, apperrors.ErrAuthentication
	}

	tokens, err := s.checkPasswordAndIssue(admin.ID, RoleAdmin, admin.Password, password)
	if err != nil {
		return nil, nil, err
	}

	return admin, tokens, nil
}

// RefreshAccessToken trades a valid refresh token for a fresh access token;
// it never re-issues the refresh token itself.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := utils.VerifyToken(refreshToken, s.security.JWTRefreshSecret)
	if err != nil {
		return "", apperrors.ErrAuthentication
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return "", apperrors.ErrAuthentication
	}

	return utils.SignAccessToken(userID, claims.Role, s.security.JWTSecret)
}

func (s *authService) prepareCredentials(request *RegisterRequest) (phone, hash string, err error) {
	phone, err = utils.NormalizeTogolesePhone(request.Phone)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if len(request.Password) < s.security.PasswordMinLength {
		return "", "", fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, s.security.PasswordMinLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), utils.BcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	return phone, string(hashed), nil
}

func (s *authService) checkPasswordAndIssue(userID primitive.ObjectID, role, storedHash, password string) (*utils.TokenPair, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return nil, apperrors.ErrAuthentication
	}

	tokens, err := utils.GenerateTokenPair(userID, role, s.security.JWTSecret, s.security.JWTRefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return tokens, nil
}
