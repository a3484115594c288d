package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/config"
	"github.com/sara-git-hub/diabcare/internal/server/models"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/repomanager"
)

// sessionTokenBytes is the entropy of a session token before hex
// encoding. 32 bytes make the token unguessable and collisions across
// live sessions vanishingly unlikely.
const sessionTokenBytes = 32

// SessionService manages the server-stored session tokens that gate every
// patient operation. A session is Active from issuance until its expiry,
// then implicitly Expired; an explicit Invalidate revokes it immediately.
// Both cases look identical to callers: ErrUnauthenticated.
type SessionService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	ttl            time.Duration
	slidingRenewal bool
	logger         logging.Logger

	// now is a test seam.
	now func() time.Time
}

// NewSessionService constructs a SessionService using repositories and
// server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:             db,
		repomanager:    m,
		ttl:            cfg.SessionTTL,
		slidingRenewal: cfg.SessionSlidingRenewal,
		logger:         logger.With("module", "sessions"),
		now:            time.Now,
	}
}

// Create issues a new session for userID: an opaque token from a
// cryptographically strong random source, stored with an expiry of
// now+TTL.
func (s *SessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return nil, common.ErrInternal
	}

	now := s.now()
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		s.logger.Error(ctx, "failed to store session", "error", err.Error())
		return nil, common.ErrInternal
	}

	return session, nil
}

// Validate resolves a token to the owning user id. An absent, unknown, or
// expired token fails with ErrUnauthenticated. Expiry is checked lazily
// here; an expired row is removed on sight. Validation does not extend
// the expiry unless sliding renewal is enabled in the config.
func (s *SessionService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrUnauthenticated
	}

	repo := s.repomanager.Sessions(s.db)

	session, err := repo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthenticated
		}
		return "", common.ErrInternal
	}

	now := s.now()
	if !now.Before(session.ExpiresAt) {
		// lazy cleanup, best effort
		if err := repo.Delete(ctx, token); err != nil {
			s.logger.Warn(ctx, "failed to remove expired session", "error", err.Error())
		}
		return "", common.ErrUnauthenticated
	}

	if s.slidingRenewal {
		if err := repo.ExtendExpiry(ctx, token, now.Add(s.ttl)); err != nil {
			// The session is still valid; renewal just did not happen.
			s.logger.Warn(ctx, "session renewal failed", "error", err.Error())
		}
	}

	return session.UserID, nil
}

// Invalidate revokes a session. It is idempotent: revoking an absent or
// already-expired token is not an error.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token); err != nil {
		s.logger.Error(ctx, "failed to delete session", "error", err.Error())
		return common.ErrInternal
	}
	return nil
}
