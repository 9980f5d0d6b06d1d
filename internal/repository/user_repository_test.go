package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MSSkowron/userregistry/internal/database"
	"github.com/MSSkowron/userregistry/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) database.Database {
	t.Helper()

	ctx := context.Background()
	db, err := database.NewSQLiteDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db))

	return db
}

func repositories(t *testing.T) map[string]UserRepository {
	return map[string]UserRepository{
		"sqlite": NewUserRepository(newTestDatabase(t)),
		"memory": NewInMemoryUserRepository(),
	}
}

func TestAddAndGetUser(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			createdAt := time.Now().UTC().Truncate(time.Second)

			added, err := repo.AddUser(ctx, &model.User{
				CreatedAt: createdAt,
				Username:  "john_doe",
				Password:  "12345",
				Role:      model.RoleEmployee,
			})
			require.NoError(t, err)
			require.NotZero(t, added.ID)
			require.Equal(t, "john_doe", added.Username)

			byName, err := repo.GetUserByUsername(ctx, "john_doe")
			require.NoError(t, err)
			require.Equal(t, added.ID, byName.ID)
			require.Equal(t, "12345", byName.Password)
			require.Equal(t, model.RoleEmployee, byName.Role)
			require.WithinDuration(t, createdAt, byName.CreatedAt, time.Second)

			byID, err := repo.GetUserByID(ctx, added.ID)
			require.NoError(t, err)
			require.Equal(t, byName.Username, byID.Username)
		})
	}
}

func TestAddUserAssignsDistinctIDs(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seen := make(map[int]struct{})

			for _, username := range []string{"alice", "bob", "carol"} {
				added, err := repo.AddUser(ctx, &model.User{Username: username, Password: "pw", Role: model.RoleEmployee})
				require.NoError(t, err)

				_, dup := seen[added.ID]
				require.False(t, dup, "ID %d assigned twice", added.ID)
				seen[added.ID] = struct{}{}
			}
		})
	}
}

func TestAddUserDuplicateUsername(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.AddUser(ctx, &model.User{Username: "john_doe", Password: "12345", Role: model.RoleEmployee})
			require.NoError(t, err)

			_, err = repo.AddUser(ctx, &model.User{Username: "john_doe", Password: "other", Role: model.RoleManager})
			require.ErrorIs(t, err, ErrDuplicateUsername)

			stored, err := repo.GetUserByUsername(ctx, "john_doe")
			require.NoError(t, err)
			require.Equal(t, "12345", stored.Password)
		})
	}
}

func TestAddUserConcurrentSameUsername(t *testing.T) {
	const workers = 8

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				successes  int
				duplicates int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()

					_, err := repo.AddUser(ctx, &model.User{Username: "racer", Password: "pw", Role: model.RoleEmployee})

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, ErrDuplicateUsername):
						duplicates++
					}
				}()
			}
			wg.Wait()

			require.Equal(t, 1, successes)
			require.Equal(t, workers-1, duplicates)
		})
	}
}

func TestGetUserNotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			user, err := repo.GetUserByUsername(ctx, "nobody")
			require.ErrorIs(t, err, ErrUserNotFound)
			require.Nil(t, user)

			user, err = repo.GetUserByID(ctx, 42)
			require.ErrorIs(t, err, ErrUserNotFound)
			require.Nil(t, user)
		})
	}
}

func TestUserRepositoryPropagatesDatabaseErrors(t *testing.T) {
	dbErr := errors.New("connection refused")

	db := database.NewMockDatabase()
	db.QueryRowContextFn = func(ctx context.Context, query string, args ...any) (*sql.Row, error) {
		return nil, dbErr
	}
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.AddUser(ctx, &model.User{Username: "john_doe", Password: "12345", Role: model.RoleEmployee})
	require.ErrorIs(t, err, dbErr)
	require.NotErrorIs(t, err, ErrDuplicateUsername)

	_, err = repo.GetUserByUsername(ctx, "john_doe")
	require.ErrorIs(t, err, dbErr)
	require.NotErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByID(ctx, 1)
	require.ErrorIs(t, err, dbErr)
}

func TestInMemoryUserRepositoryReturnsCopies(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	added, err := repo.AddUser(ctx, &model.User{Username: "john_doe", Password: "12345", Role: model.RoleEmployee})
	require.NoError(t, err)

	added.Role = model.RoleManager

	stored, err := repo.GetUserByID(ctx, added.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleEmployee, stored.Role)
	require.Equal(t, 1, repo.Len())
}

func TestInMemoryUserRepositoryCanceledContext(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.AddUser(ctx, &model.User{Username: "john_doe", Password: "12345", Role: model.RoleEmployee})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, repo.Len())
}

func TestUserRepositoryUnconfiguredDatabase(t *testing.T) {
	repo := NewUserRepository(database.NewMockDatabase())
	ctx := context.Background()

	_, err := repo.GetUserByID(ctx, 1)
	require.ErrorIs(t, err, database.ErrMockNotConfigured)

	_, err = repo.GetUserByUsername(ctx, "john_doe")
	require.ErrorIs(t, err, database.ErrMockNotConfigured)

	_, err = repo.AddUser(ctx, &model.User{Username: "john_doe", Password: "12345", Role: model.RoleEmployee})
	require.ErrorIs(t, err, database.ErrMockNotConfigured)
}
