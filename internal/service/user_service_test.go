package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MSSkowron/userregistry/internal/dto"
	"github.com/MSSkowron/userregistry/internal/model"
	"github.com/MSSkowron/userregistry/internal/repository"
	"github.com/MSSkowron/userregistry/pkg/crypto"
	"github.com/MSSkowron/userregistry/pkg/validation"
	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return password, nil
}

// stubUserRepository records calls and lets each test decide what the store returns.
type stubUserRepository struct {
	mu    sync.Mutex
	calls int

	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	getByIDFn       func(ctx context.Context, id int) (*model.User, error)
	addFn           func(ctx context.Context, user *model.User) (*model.User, error)
}

func (s *stubUserRepository) called() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *stubUserRepository) AddUser(ctx context.Context, user *model.User) (*model.User, error) {
	s.called()
	if s.addFn != nil {
		return s.addFn(ctx, user)
	}
	return nil, errors.New("unexpected AddUser call")
}

func (s *stubUserRepository) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	s.called()
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.called()
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrUserNotFound
}

func newTestService(repo repository.UserRepository) *UserServiceImpl {
	return NewUserService(repo, WithHasher(plainHasher{}))
}

func TestRegisterUserOnEmptyStore(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewUserService(repo, WithHasher(plainHasher{}), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, &dto.UserRegisterDTO{Username: "john_doe", Password: "12345"})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "john_doe", user.Username)
	require.Equal(t, "employee", user.Role)
	require.Equal(t, now, user.CreatedAt)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, model.User{
		ID:        user.ID,
		CreatedAt: now,
		Username:  "john_doe",
		Password:  "12345",
		Role:      model.RoleEmployee,
	}, *stored)
}

func TestRegisterUserIgnoresRequestedRole(t *testing.T) {
	data := []struct {
		name string
		role string
	}{
		{"no role", ""},
		{"employee", "employee"},
		{"manager", "manager"},
		{"unknown role", "admin"},
	}

	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			repo := repository.NewInMemoryUserRepository()
			svc := newTestService(repo)

			user, err := svc.RegisterUser(context.Background(), &dto.UserRegisterDTO{
				Username: "user_" + d.name,
				Password: "secret",
				Role:     d.role,
			})
			require.NoError(t, err)
			require.Equal(t, model.RoleEmployee.String(), user.Role)

			stored, err := repo.GetUserByUsername(context.Background(), user.Username)
			require.NoError(t, err)
			require.Equal(t, model.RoleEmployee, stored.Role)
		})
	}
}

func TestRegisterUserTwice(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	request := &dto.UserRegisterDTO{Username: "john_doe", Password: "12345"}

	_, err := svc.RegisterUser(ctx, request)
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, request)
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	var existsErr *UserAlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
	require.Equal(t, "john_doe", existsErr.Username)
	require.Contains(t, err.Error(), "john_doe")

	require.Equal(t, 1, repo.Len())
}

func TestRegisterUserExistingUsernameDoesNotWrite(t *testing.T) {
	repo := &stubUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 7, Username: username, Password: "x", Role: model.RoleManager}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.RegisterUser(context.Background(), &dto.UserRegisterDTO{Username: "taken", Password: "pw"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
	require.Equal(t, 1, repo.calls)
}

func TestRegisterUserValidation(t *testing.T) {
	data := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty username", "", "12345", validation.ErrInvalidUsername},
		{"empty password", "john_doe", "", validation.ErrInvalidPassword},
		{"both empty", "", "", validation.ErrInvalidUsername},
	}

	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			repo := &stubUserRepository{}
			svc := newTestService(repo)

			user, err := svc.RegisterUser(context.Background(), &dto.UserRegisterDTO{Username: d.username, Password: d.password})
			require.Nil(t, user)
			require.ErrorIs(t, err, d.wantErr)
			require.ErrorIs(t, err, validation.ErrValidation)
			require.Zero(t, repo.calls, "validation failures must not reach the store")
		})
	}
}

func TestRegisterUserDuplicateKeyFromStore(t *testing.T) {
	repo := &stubUserRepository{
		addFn: func(ctx context.Context, user *model.User) (*model.User, error) {
			return nil, repository.ErrDuplicateUsername
		},
	}
	svc := newTestService(repo)

	_, err := svc.RegisterUser(context.Background(), &dto.UserRegisterDTO{Username: "john_doe", Password: "12345"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
	require.NotErrorIs(t, err, ErrStorage)

	var existsErr *UserAlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
	require.Equal(t, "john_doe", existsErr.Username)
}

func TestRegisterUserStorageFailure(t *testing.T) {
	dbErr := errors.New("connection refused")

	data := []struct {
		name string
		repo *stubUserRepository
	}{
		{
			name: "lookup fails",
			repo: &stubUserRepository{
				getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
					return nil, dbErr
				},
			},
		},
		{
			name: "insert fails",
			repo: &stubUserRepository{
				addFn: func(ctx context.Context, user *model.User) (*model.User, error) {
					return nil, dbErr
				},
			},
		},
	}

	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			svc := newTestService(d.repo)

			_, err := svc.RegisterUser(context.Background(), &dto.UserRegisterDTO{Username: "john_doe", Password: "12345"})
			require.ErrorIs(t, err, ErrStorage)
			require.ErrorIs(t, err, dbErr)
			require.NotErrorIs(t, err, ErrUserAlreadyExists)
		})
	}
}

func TestRegisterUserConcurrentSameUsername(t *testing.T) {
	const workers = 16

	repo := repository.NewInMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.RegisterUser(ctx, &dto.UserRegisterDTO{Username: "racer", Password: "pw"})
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrUserAlreadyExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, conflicts)
	require.Equal(t, 1, repo.Len())
}

func TestRegisterUserHashesPasswordByDefault(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	svc := NewUserService(repo, WithHasher(crypto.NewBcryptHasher(4)))
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, &dto.UserRegisterDTO{Username: "john_doe", Password: "12345"})
	require.NoError(t, err)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, "12345", stored.Password)
	require.NoError(t, crypto.CheckPassword("12345", stored.Password))
}

func TestGetUser(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	registered, err := svc.RegisterUser(ctx, &dto.UserRegisterDTO{Username: "john_doe", Password: "12345"})
	require.NoError(t, err)

	byID, err := svc.GetUser(ctx, registered.ID)
	require.NoError(t, err)
	require.Equal(t, registered, byID)

	byName, err := svc.GetUserByUsername(ctx, "john_doe")
	require.NoError(t, err)
	require.Equal(t, registered, byName)

	_, err = svc.GetUser(ctx, registered.ID+1)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetUserByUsername(ctx, "jane_doe")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetUserByUsername(ctx, "")
	require.ErrorIs(t, err, validation.ErrValidation)
}

func TestGetUserStorageFailure(t *testing.T) {
	dbErr := errors.New("timeout")
	repo := &stubUserRepository{
		getByIDFn: func(ctx context.Context, id int) (*model.User, error) {
			return nil, dbErr
		},
	}
	svc := newTestService(repo)

	_, err := svc.GetUser(context.Background(), 1)
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, dbErr)
}

func TestRegisterUserLongPasswordWithDefaultHasher(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()
	password := strings.Repeat("a", 73)

	user, err := svc.RegisterUser(ctx, &dto.UserRegisterDTO{Username: "john_doe", Password: password})
	require.NoError(t, err)
	require.Equal(t, model.RoleEmployee.String(), user.Role)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, crypto.CheckPassword(password, stored.Password))
	require.ErrorIs(t, crypto.CheckPassword(strings.Repeat("a", 72), stored.Password), crypto.ErrInvalidCredentials)
}

func TestRegisterUserNilRequest(t *testing.T) {
	repo := &stubUserRepository{}
	svc := newTestService(repo)

	user, err := svc.RegisterUser(context.Background(), nil)
	require.Nil(t, user)
	require.ErrorIs(t, err, validation.ErrValidation)
	require.Zero(t, repo.calls)
}
