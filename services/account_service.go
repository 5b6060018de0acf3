package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vishalmadargaon/Flight-delay-predictor/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AccountService creates and verifies users.
type AccountService struct {
	db     *gorm.DB
	hasher PasswordHasher
	log    *zap.Logger
}

func NewAccountService(db *gorm.DB, hasher PasswordHasher, log *zap.Logger) *AccountService {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{db: db, hasher: hasher, log: log}
}

// CreateUser inserts a new account. A taken username yields ErrUsernameExists
// and leaves the table unchanged.
func (s *AccountService) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, Password: stored}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// a concurrent registration can still win the race to the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return &user, nil
}

// VerifyUser returns the account matching both username and password, or
// ErrInvalidCredentials.
func (s *AccountService) VerifyUser(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
