// Package services contains the server-side business logic. This file
// implements UserService, the credential store: it owns clinician identity
// and password verification, and nothing else — issuing sessions is
// SessionService's job.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/config"
	"github.com/sara-git-hub/diabcare/internal/server/models"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/repomanager"
)

// dummyHash is a valid bcrypt hash compared against when the username is
// unknown, so a lookup miss costs about as much as a password mismatch
// and the two stay indistinguishable to the caller.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService provides account operations:
//   - Register: create a clinician account with a salted bcrypt hash
//   - Verify: check a username/password pair against the stored hash
type UserService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	passwordMinLength int
	logger            logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                db,
		repomanager:       m,
		passwordMinLength: cfg.PasswordMinLength,
		logger:            logger.With("module", "users"),
	}
}

// Register creates a new clinician account. It fails with
// ErrDuplicateUsername when the username is taken and ErrWeakPassword when
// the password is shorter than the configured minimum. Only the bcrypt
// hash is stored, never the plaintext.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if len(password) < s.passwordMinLength {
		return nil, common.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// Verify checks the username/password pair and returns the user id on
// success. Unknown username and wrong password both yield
// ErrInvalidCredentials, so callers cannot enumerate accounts.
func (s *UserService) Verify(ctx context.Context, username, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", common.ErrInvalidCredentials
		}
		return "", common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", common.ErrInvalidCredentials
	}

	return user.ID, nil
}
