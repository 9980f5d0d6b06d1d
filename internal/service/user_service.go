package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MSSkowron/userregistry/internal/dto"
	"github.com/MSSkowron/userregistry/internal/metrics"
	"github.com/MSSkowron/userregistry/internal/model"
	"github.com/MSSkowron/userregistry/internal/repository"
	"github.com/MSSkowron/userregistry/pkg/crypto"
	"github.com/MSSkowron/userregistry/pkg/logger"
	"github.com/MSSkowron/userregistry/pkg/validation"
)

var (
	// ErrUserAlreadyExists is returned when a user with the same username already exists.
	ErrUserAlreadyExists = errors.New("user with the provided user name already exists")
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrStorage is returned when the identity store fails for any reason other than a duplicate username.
	ErrStorage = errors.New("storage failure")
)

// UserAlreadyExistsError carries the username that caused a registration conflict.
// It matches ErrUserAlreadyExists with errors.Is.
type UserAlreadyExistsError struct {
	Username string
}

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with user name %q already exists", e.Username)
}

// Is reports whether target is ErrUserAlreadyExists.
func (e *UserAlreadyExistsError) Is(target error) bool {
	return target == ErrUserAlreadyExists
}

// UserService defines the interface for user-related operations.
type UserService interface {
	// RegisterUser registers a new user with the default role.
	RegisterUser(context.Context, *dto.UserRegisterDTO) (*dto.UserDTO, error)

	// GetUser returns the user with the given ID.
	GetUser(context.Context, int) (*dto.UserDTO, error)

	// GetUserByUsername returns the user with the given username.
	GetUserByUsername(context.Context, string) (*dto.UserDTO, error)
}

// UserServiceImpl implements the UserService interface.
// It holds no per-call state and is safe for concurrent use.
type UserServiceImpl struct {
	userRepository repository.UserRepository
	hasher         crypto.Hasher
	now            func() time.Time
}

// UserServiceOption is a function signature for providing options to configure the UserServiceImpl.
type UserServiceOption func(*UserServiceImpl)

// WithHasher sets the hasher applied to passwords before they are stored.
func WithHasher(hasher crypto.Hasher) UserServiceOption {
	return func(us *UserServiceImpl) {
		us.hasher = hasher
	}
}

// WithClock overrides the clock used to stamp new users.
func WithClock(now func() time.Time) UserServiceOption {
	return func(us *UserServiceImpl) {
		us.now = now
	}
}

// NewUserService creates a new UserServiceImpl instance with the provided userRepository.
// Passwords are hashed with bcrypt unless another hasher is supplied.
func NewUserService(userRepository repository.UserRepository, opts ...UserServiceOption) *UserServiceImpl {
	us := &UserServiceImpl{
		userRepository: userRepository,
		hasher:         crypto.NewBcryptHasher(crypto.Cost),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(us)
	}

	return us
}

func (us *UserServiceImpl) RegisterUser(ctx context.Context, userRegister *dto.UserRegisterDTO) (userDTO *dto.UserDTO, err error) {
	start := time.Now()
	defer func() {
		result := registrationResult(err)
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
		metrics.RegistrationDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	if userRegister == nil {
		return nil, validation.ErrInvalidUsername
	}
	if err := validation.ValidateUsername(userRegister.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(userRegister.Password); err != nil {
		return nil, err
	}

	existing, err := us.userRepository.GetUserByUsername(ctx, userRegister.Username)
	switch {
	case err == nil && existing != nil:
		return nil, &UserAlreadyExistsError{Username: userRegister.Username}
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if userRegister.Role != "" && model.Role(userRegister.Role) != model.DefaultRole {
		logger.Debug("Ignoring requested role on registration",
			"username", userRegister.Username, "requested_role", userRegister.Role, "assigned_role", model.DefaultRole.String())
	}

	hashedPassword, err := us.hasher.Hash(userRegister.Password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		CreatedAt: us.now().UTC(),
		Username:  userRegister.Username,
		Password:  hashedPassword,
		Role:      model.DefaultRole,
	}
	addedUser, err := us.userRepository.AddUser(ctx, newUser)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, &UserAlreadyExistsError{Username: userRegister.Username}
		}

		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	logger.Info("Registered user", "user_id", addedUser.ID, "username", addedUser.Username, "role", addedUser.Role.String())

	return toUserDTO(addedUser), nil
}

func (us *UserServiceImpl) GetUser(ctx context.Context, id int) (*dto.UserDTO, error) {
	user, err := us.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}

	return toUserDTO(user), nil
}

func (us *UserServiceImpl) GetUserByUsername(ctx context.Context, username string) (*dto.UserDTO, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := us.userRepository.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, lookupError(err)
	}

	return toUserDTO(user), nil
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultCreated
	case errors.Is(err, ErrUserAlreadyExists):
		return metrics.ResultConflict
	case errors.Is(err, validation.ErrValidation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

func toUserDTO(user *model.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:        user.ID,
		CreatedAt: user.CreatedAt,
		Username:  user.Username,
		Role:      user.Role.String(),
	}
}
