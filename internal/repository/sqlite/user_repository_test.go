package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnsite/internal/domain"
	"vulnsite/internal/repository"
	"vulnsite/internal/repository/sqlite"
)

type queryLog struct {
	mu      sync.Mutex
	queries []repository.Query
}

func (l *queryLog) observe(q repository.Query) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, q)
}

func (l *queryLog) last() repository.Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queries[len(l.queries)-1]
}

func newRepo(t *testing.T) (*sqlite.UserRepository, *queryLog) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	log := &queryLog{}
	repo := sqlite.NewUserRepository(db, sqlite.WithLogger(logger), sqlite.WithObserver(log.observe))
	require.NoError(t, repo.Init(context.Background()))
	return repo, log
}

func TestUserRepository_InsertAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)

	require.NoError(t, repo.Insert(ctx, &domain.User{Username: "alice", Password: "secret", Profile: "hello"}))

	user, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.User{Username: "alice", Password: "secret", Profile: "hello"}, *user)

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_FindByCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Insert(ctx, &domain.User{Username: "alice", Password: "secret", Profile: "x"}))

	count, err := repo.FindByCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.FindByCredentials(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUserRepository_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Insert(ctx, &domain.User{Username: "alice", Password: "secret", Profile: "x"}))

	require.NoError(t, repo.Update(ctx, &domain.User{Username: "alice", Password: "secret2", Profile: "y"}))

	user, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "secret2", user.Password)
	assert.Equal(t, "y", user.Profile)
}

func TestUserRepository_Reset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Insert(ctx, &domain.User{Username: "alice", Password: "secret", Profile: "x"}))

	require.NoError(t, repo.Reset(ctx))

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_QueriesAreNotParameterized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, log := newRepo(t)
	require.NoError(t, repo.Insert(ctx, &domain.User{Username: "alice", Password: "secret", Profile: "x"}))

	t.Run("observer receives raw text", func(t *testing.T) {
		_, err := repo.FindByCredentials(ctx, "o'brien", "pw")
		require.Error(t, err, "an unbalanced quote breaks the statement")

		q := log.last()
		assert.Contains(t, q.Text, "username='o'brien'")
		assert.Equal(t, repository.NoteUnparameterized, q.Note)
	})

	t.Run("comment bypasses password", func(t *testing.T) {
		count, err := repo.FindByCredentials(ctx, "alice' --", "anything")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("tautology matches rows", func(t *testing.T) {
		count, err := repo.FindByCredentials(ctx, "nobody", "' OR '1'='1")
		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("exists needs exactly one row", func(t *testing.T) {
		require.NoError(t, repo.Insert(ctx, &domain.User{Username: "bob", Password: "pw", Profile: "y"}))

		exists, err := repo.Exists(ctx, "x' OR '1'='1")
		require.NoError(t, err)
		assert.False(t, exists, "two rows match")

		exists, err = repo.Exists(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
