package repository

import (
	"context"

	"github.com/runnerkit/hello-service/internal/domain"
)

// UserRepository defines persistence for administrative accounts.
// The pgx implementation is in pg_user_repo.go.
// Tests use a hand-written mock (mock_user_repo.go).
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
