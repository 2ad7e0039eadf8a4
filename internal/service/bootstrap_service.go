package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/runnerkit/hello-service/internal/domain"
	"github.com/runnerkit/hello-service/internal/repository"
)

// BootstrapService creates the initial administrative account.
type BootstrapService struct {
	repo   repository.UserRepository
	logger *zap.Logger
	cost   int
	now    func() time.Time
}

func NewBootstrapService(repo repository.UserRepository, logger *zap.Logger) *BootstrapService {
	return &BootstrapService{
		repo:   repo,
		logger: logger,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// EnsureSuperuser creates a superuser named username unless one already
// exists. It reports whether a row was written. Safe to call on every start.
func (s *BootstrapService) EnsureSuperuser(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: superuser username and password", domain.ErrConfigurationMissing)
	}

	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		s.logger.Debug("superuser already present", zap.String("username", username))
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("look up superuser: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsStaff:      true,
		IsSuperuser:  true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Another instance won the race.
		if errors.Is(err, domain.ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("create superuser: %w", err)
	}

	s.logger.Info("superuser created", zap.String("username", username), zap.Int64("id", u.ID))
	return true, nil
}
