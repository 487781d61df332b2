// Package user exposes participant profiles.
package user

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

const MaxFullNameLength = 100

type ProfileUpdate struct {
	FullName     string `json:"full_name"`
	ProfileImage string `json:"profile_image"`
	Location     string `json:"location"`
}

func (p ProfileUpdate) validate() error {
	var errs []string
	name := strings.TrimSpace(p.FullName)
	switch {
	case name == "":
		errs = append(errs, "Full name is required")
	case utf8.RuneCountInString(name) > MaxFullNameLength:
		errs = append(errs, fmt.Sprintf("Full name must be at most %d characters", MaxFullNameLength))
	}
	if len(errs) > 0 {
		return &common.ValidationError{Errors: errs}
	}
	return nil
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dbsql.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*dbsql.User, error)
}

type userService struct {
	userRepo UserRepository
}

func NewUserService(userRepo UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbsql.User, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return user, nil
}

// UpdateProfile replaces the editable profile fields.
func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*dbsql.User, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	updates := map[string]interface{}{
		"full_name":     strings.TrimSpace(in.FullName),
		"profile_image": strings.TrimSpace(in.ProfileImage),
		"location":      strings.TrimSpace(in.Location),
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	user.FullName = updates["full_name"].(string)
	user.ProfileImage = updates["profile_image"].(string)
	user.Location = updates["location"].(string)
	return user, nil
}
