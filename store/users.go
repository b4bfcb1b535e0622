package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"marketplace/apperror"
	"marketplace/models"
)

// CreateUser inserts a user; a taken email is a Conflict
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return errors.Wrap(err, "checking email")
	}
	if count > 0 {
		return apperror.New(apperror.Conflict, "User already exists")
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.New(apperror.Conflict, "User already exists")
		}
		return errors.Wrap(err, "creating user")
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "User")
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User")
	}
	return &user, nil
}
