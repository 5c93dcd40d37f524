package service

import (
	"context"
	"errors"
	"fmt"

	"vulnsite/internal/domain"
	"vulnsite/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a session refers to a user that is no longer stored.
	ErrUserNotFound = errors.New("user not found")
)

// UserService describes user lifecycle operations.
type UserService interface {
	Authenticate(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password, profile string) error
	Profile(ctx context.Context, username string) (*domain.User, error)
	EnsureExists(ctx context.Context, username string) error
	Update(ctx context.Context, username, password, profile string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Authenticate succeeds when the credential query matches at least one row.
// Inputs reach the query untouched.
func (s *userService) Authenticate(ctx context.Context, username, password string) error {
	count, err := s.users.FindByCredentials(ctx, username, password)
	if err != nil {
		return fmt.Errorf("authenticate %q: %w", username, err)
	}
	if count == 0 {
		return ErrInvalidCredentials
	}
	return nil
}

// Register inserts a new user. The existence check and the insert are
// separate statements.
func (s *userService) Register(ctx context.Context, username, password, profile string) error {
	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username %q: %w", username, err)
	}
	if exists {
		return ErrUserAlreadyExists
	}

	user := &domain.User{
		Username: username,
		Password: password,
		Profile:  profile,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return fmt.Errorf("register %q: %w", username, err)
	}
	return nil
}

func (s *userService) Profile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load profile %q: %w", username, err)
	}
	return user, nil
}

func (s *userService) EnsureExists(ctx context.Context, username string) error {
	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username %q: %w", username, err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) Update(ctx context.Context, username, password, profile string) error {
	user := &domain.User{
		Username: username,
		Password: password,
		Profile:  profile,
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update %q: %w", username, err)
	}
	return nil
}
