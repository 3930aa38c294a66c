package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages the signed-in user's profile
type UserService struct {
	store  UserStore
	cost   int
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store UserStore, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		store:  store,
		cost:   bcryptCost,
		logger: util.GetLogger(),
	}
}

// UpdateProfileRequest changes the public profile fields
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ChangePasswordRequest replaces the password after verifying the current one
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GetProfile returns a user by ID
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.GetProfile")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes username and email; the email must not belong to another user
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateProfile")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		return nil, invalid("username and email are required")
	}

	taken, err := s.store.EmailTaken(ctx, email, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user, err := s.store.UpdateUserProfile(ctx, userID, username, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, store.ErrConflict):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", userID))
	return user, nil
}

// ChangePassword verifies the current password and stores a hash of the new one
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	ctx, span := util.StartSpan(ctx, "UserService.ChangePassword")
	defer span.End()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return invalid("current password and new password are required")
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info("Password changed", zap.Int64("user_id", userID))
	return nil
}
