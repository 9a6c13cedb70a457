package user

import (
	"context"
	"time"

	domain "factoryplan/internal/domain/user"
)

// Store persists dev backend users and the bearer tokens issued to them.
type Store interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Save(ctx context.Context, u domain.User) (int64, error)
	Count(ctx context.Context) (int, error)

	SaveToken(ctx context.Context, t domain.Token) error
	GetToken(ctx context.Context, token string) (domain.Token, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
