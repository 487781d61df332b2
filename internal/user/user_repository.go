package user

import (
	"context"

	"gorm.io/gorm"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

//go:generate mockgen -source=user_repository.go -destination=mock_user_repository.go -package=user

// UserRepository reads and edits participant profiles. Rows themselves are
// provisioned by the hosted auth backend.
type UserRepository interface {
	GetUserByID(ctx context.Context, userID string) (*dbsql.User, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbsql.User, error) {
	var user dbsql.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, common.FromGorm(err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&dbsql.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}
