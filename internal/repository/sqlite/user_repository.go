package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"vulnsite/internal/domain"
	"vulnsite/internal/repository"
)

type UserRepository struct {
	db       *sql.DB
	logger   logrus.FieldLogger
	observer repository.QueryObserver
}

type Option func(*UserRepository)

// WithLogger sets the logger used to trace executed queries at debug level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *UserRepository) {
		r.logger = logger
	}
}

// WithObserver registers a hook that sees every query before it runs.
func WithObserver(observer repository.QueryObserver) Option {
	return func(r *UserRepository) {
		r.observer = observer
	}
}

func NewUserRepository(db *sql.DB, opts ...Option) *UserRepository {
	r := &UserRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logrus.New()
	}
	return r
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.exec(ctx, repository.Query{Text: repository.CreateUsersTable}); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Reset(ctx context.Context) error {
	if err := r.exec(ctx, repository.Query{Text: repository.DropUsersTable}); err != nil {
		return fmt.Errorf("drop users table: %w", err)
	}
	return r.Init(ctx)
}

func (r *UserRepository) FindByCredentials(ctx context.Context, username, password string) (int, error) {
	count, err := r.count(ctx, repository.FindByCredentialsQuery(username, password))
	if err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return count, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.withConn(ctx, repository.FindByUsernameQuery(username), func(conn *sql.Conn, q repository.Query) error {
		var password, profile sql.NullString
		if err := conn.QueryRowContext(ctx, q.Text).Scan(&user.Username, &password, &profile); err != nil {
			return err
		}
		user.Password = password.String
		user.Profile = profile.String
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// Exists reports whether the username matches exactly one row. A statement
// that matches several rows counts as no match.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	count, err := r.count(ctx, repository.CountByUsernameQuery(username))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count == 1, nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	if err := r.exec(ctx, repository.InsertQuery(user.Username, user.Password, user.Profile)); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.exec(ctx, repository.UpdateQuery(user.Username, user.Password, user.Profile)); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) count(ctx context.Context, q repository.Query) (int, error) {
	var count int
	err := r.withConn(ctx, q, func(conn *sql.Conn, q repository.Query) error {
		return conn.QueryRowContext(ctx, q.Text).Scan(&count)
	})
	return count, err
}

func (r *UserRepository) exec(ctx context.Context, q repository.Query) error {
	return r.withConn(ctx, q, func(conn *sql.Conn, q repository.Query) error {
		_, err := conn.ExecContext(ctx, q.Text)
		return err
	})
}

// withConn runs fn on a dedicated connection that is released when fn returns.
func (r *UserRepository) withConn(ctx context.Context, q repository.Query, fn func(*sql.Conn, repository.Query) error) error {
	if r.observer != nil {
		r.observer(q)
	}
	r.logger.WithField("note", q.Note).Debugf("sql: %s", q.Text)

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn, q)
}
