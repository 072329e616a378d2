package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"warbler/internal/auth"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

// UserDefaults are the image URLs given to users who do not pick their own.
type UserDefaults struct {
	ImageURL       string
	HeaderImageURL string
}

// UserService handles business logic for user operations
type UserService struct {
	repo     repository.UserRepository
	hasher   *auth.PasswordHasher
	defaults UserDefaults
	logger   *zap.Logger
}

func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher, defaults UserDefaults, logger *zap.Logger) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		defaults: defaults,
		logger:   logger,
	}
}

// Signup hashes the password and creates the account. A taken username or
// email comes back as model.ErrUsernameTaken / model.ErrEmailTaken.
func (s *UserService) Signup(ctx context.Context, in model.SignupInput) (*model.User, error) {
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       hashed,
		ImageURL:       orDefault(in.ImageURL, s.defaults.ImageURL),
		HeaderImageURL: s.defaults.HeaderImageURL,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		metrics.RecordAuth("signup", false)
		if errors.Is(err, model.ErrUsernameTaken) || errors.Is(err, model.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.RecordAuth("signup", true)
	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks a username/password pair. An unknown username and a
// wrong password both yield (nil, false, nil); only infrastructure failures
// return an error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, bool, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if err := s.hasher.Verify(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return user, true, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile loads the user together with their message and relationship counters.
func (s *UserService) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetStats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.Profile{User: user, Stats: *stats}, nil
}

// List returns every user, or only those whose username contains query.
func (s *UserService) List(ctx context.Context, query string) ([]model.UserSummary, error) {
	return s.repo.List(ctx, query)
}

// UpdateProfile re-authenticates with the current password, then overwrites
// the editable fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in model.ProfileUpdate) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(user.Password, in.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	user.Username = in.Username
	user.Email = in.Email
	user.ImageURL = orDefault(in.ImageURL, s.defaults.ImageURL)
	user.HeaderImageURL = orDefault(in.HeaderImageURL, s.defaults.HeaderImageURL)
	user.Bio = optional(in.Bio)
	user.Location = optional(in.Location)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the account. Messages, follows and likes are removed by the
// database cascade.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
