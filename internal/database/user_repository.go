package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/railserve/reservation-backend/internal/models"
)

// ErrUserNotFound is returned when a username or user id is unknown.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles agent account database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser creates a new agent account. The password hash must already
// be computed by the caller.
func (r *UserRepository) CreateUser(username, passwordHash, fullName string, roles []string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Roles:        roles,
		Active:       true,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (
			id, username, password_hash, full_name, roles, active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Roles,
		user.Active,
		user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves an agent by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, full_name, roles, active,
			   last_login_at, created_at
		FROM users
		WHERE username = $1
	`

	user, err := scanUser(r.db.QueryRow(query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves an agent by id
func (r *UserRepository) GetUserByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, full_name, roles, active,
			   last_login_at, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.db.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// UpdateLastLogin stamps the agent's last successful login
func (r *UserRepository) UpdateLastLogin(userID uuid.UUID) error {
	query := `
		UPDATE users
		SET last_login_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName,
		&user.Roles, &user.Active, &lastLogin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}

	return user, nil
}
