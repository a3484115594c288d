package sessions

import (
	"context"
	"time"

	"github.com/sara-git-hub/diabcare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, token string) (*models.Session, error)
	ExtendExpiry(ctx context.Context, token string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}
