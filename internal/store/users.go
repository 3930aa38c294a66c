package store

import (
	"context"

	"bookstore-service/internal/models"
)

// CreateUser inserts a user. A taken email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		user.Username, user.Email, user.Password, user.Role)
	return mapError(row.Scan(&user.ID, &user.CreatedAt))
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// EmailTaken reports whether another user already uses email
func (s *Store) EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)", email, exceptUserID)
	return exists, err
}

// UpdateUserProfile changes username and email
func (s *Store) UpdateUserProfile(ctx context.Context, id int64, username, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"UPDATE users SET username = $1, email = $2 WHERE id = $3 RETURNING *",
		username, email, id)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// UpdateUserPassword stores a new password hash
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password = $1 WHERE id = $2", passwordHash, id)
	return expectOne(res, err)
}
