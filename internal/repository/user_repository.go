package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MSSkowron/userregistry/internal/database"
	"github.com/MSSkowron/userregistry/internal/model"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned by AddUser when the storage layer rejects
	// the write because the username is already taken.
	ErrDuplicateUsername = errors.New("duplicate username")
)

// UserRepository is an interface that defines the methods required for user data management.
type UserRepository interface {
	// AddUser persists a new user and returns it with its assigned ID.
	AddUser(ctx context.Context, user *model.User) (addedUser *model.User, err error)

	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, userID int) (user *model.User, err error)

	// GetUserByUsername retrieves a user by their username.
	GetUserByUsername(ctx context.Context, username string) (user *model.User, err error)
}

// UserRepositoryImpl implements the UserRepository interface on top of a SQL database.
type UserRepositoryImpl struct {
	db database.Database
}

// NewUserRepository creates a new UserRepositoryImpl instance with the provided database.
func NewUserRepository(db database.Database) *UserRepositoryImpl {
	return &UserRepositoryImpl{
		db: db,
	}
}

func (ur *UserRepositoryImpl) AddUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := "INSERT INTO users (created_at, username, password, role) VALUES ($1, $2, $3, $4) RETURNING id"

	row, err := ur.db.QueryRowContext(ctx, query, user.CreatedAt, user.Username, user.Password, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to add user: %w", err)
	}

	var id int
	if err = row.Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to add user %q: %w", user.Username, ErrDuplicateUsername)
		}

		return nil, fmt.Errorf("failed to add user: %w", err)
	}

	added := *user
	added.ID = id

	return &added, nil
}

func (ur *UserRepositoryImpl) GetUserByID(ctx context.Context, userID int) (*model.User, error) {
	query := `
		SELECT id, created_at, username, password, role
		FROM users
		WHERE id = $1
	`

	user, err := ur.queryUser(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

func (ur *UserRepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, created_at, username, password, role
		FROM users
		WHERE username = $1
	`

	user, err := ur.queryUser(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

func (ur *UserRepositoryImpl) queryUser(ctx context.Context, query string, arg any) (*model.User, error) {
	row, err := ur.db.QueryRowContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}

	var (
		user model.User
		role string
	)
	if err = row.Scan(&user.ID, &user.CreatedAt, &user.Username, &user.Password, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}
	user.Role = model.Role(role)

	return &user, nil
}
