package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/dbx"
	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/config"
	"github.com/sara-git-hub/diabcare/internal/server/models"
	patientsrepo "github.com/sara-git-hub/diabcare/internal/server/repositories/patients"
	sessionsrepo "github.com/sara-git-hub/diabcare/internal/server/repositories/sessions"
	usersrepo "github.com/sara-git-hub/diabcare/internal/server/repositories/users"
)

// --- helpers shared by the service tests in this package ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	return &config.Config{
		PasswordMinLength: 8,
		SessionTTL:        30 * time.Minute,
	}
}

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeSessionsRepo struct {
	created   *models.Session
	createErr error

	findOut *models.Session
	findErr error

	extendedTo  time.Time
	extendCalls int
	extendErr   error

	deleted   []string
	deleteErr error
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = s
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeSessionsRepo) ExtendExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	f.extendCalls++
	f.extendedTo = expiresAt
	return f.extendErr
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

type fakePatientsRepo struct {
	created   *models.Patient
	createErr error

	listOut []*models.Patient
	listErr error
	gotOpts patientsrepo.ListOptions

	deletedOwner string
	deletedID    string
	deleteErr    error
}

func (f *fakePatientsRepo) Create(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = p
	return p, nil
}

func (f *fakePatientsRepo) ListByOwner(ctx context.Context, ownerID string, opts patientsrepo.ListOptions) ([]*models.Patient, error) {
	f.gotOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakePatientsRepo) Delete(ctx context.Context, ownerID, patientID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedOwner, f.deletedID = ownerID, patientID
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	p *fakePatientsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository { return m.s }
func (m *fakeRepoManager) Patients(db dbx.DBTX) patientsrepo.Repository { return m.p }

// --- UserService ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	user, err := svc.Register(context.Background(), "  dr.adams  ", "correct-horse")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if user.Username != "dr.adams" {
		t.Fatalf("username not trimmed: %q", user.Username)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatal("plaintext stored as hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if repo.created != user {
		t.Fatal("record not handed to repository")
	}
}

func TestRegister_EmptyUsername(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{}}, testConfig(), testLogger())

	_, err := svc.Register(context.Background(), "   ", "correct-horse")
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want common.ErrValidation, got %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	_, err := svc.Register(context.Background(), "dr.adams", "short")
	if !errors.Is(err, common.ErrWeakPassword) {
		t.Fatalf("want common.ErrWeakPassword, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("weak password must not reach the repository")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{createErr: common.ErrDuplicateUsername}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	_, err := svc.Register(context.Background(), "dr.adams", "correct-horse")
	if !errors.Is(err, common.ErrDuplicateUsername) {
		t.Fatalf("want common.ErrDuplicateUsername, got %v", err)
	}
}

func TestRegister_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{createErr: errors.New("db down")}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	_, err := svc.Register(context.Background(), "dr.adams", "correct-horse")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestVerify_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &fakeUsersRepo{getOut: &models.User{ID: "u-1", Username: "dr.adams", PasswordHash: string(hash)}}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	userID, err := svc.Verify(context.Background(), "dr.adams", "correct-horse")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("got user id %q, want u-1", userID)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &fakeUsersRepo{getOut: &models.User{ID: "u-1", PasswordHash: string(hash)}}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	_, err = svc.Verify(context.Background(), "dr.adams", "wrong-horse")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want common.ErrInvalidCredentials, got %v", err)
	}
}

func TestVerify_UnknownUsername(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{getErr: common.ErrNotFound}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	_, err := svc.Verify(context.Background(), "ghost", "whatever-pass")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want common.ErrInvalidCredentials, got %v", err)
	}
}

func TestVerify_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{getErr: errors.New("db down")}
	svc := NewUserService(db, &fakeRepoManager{u: repo}, testConfig(), testLogger())

	_, err := svc.Verify(context.Background(), "dr.adams", "correct-horse")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("want common.ErrInternal, got %v", err)
	}
}
