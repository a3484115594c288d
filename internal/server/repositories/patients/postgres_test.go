package patients

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func samplePatient() *models.Patient {
	return &models.Patient{
		ID:      "p-1",
		OwnerID: "u-1",
		Name:    "Jane Roe",
		Sex:     "F",
		Measurements: models.Measurements{
			Glucose:       148,
			BloodPressure: 72,
			BMI:           33.6,
			Pedigree:      0.627,
			Age:           50,
		},
		Label:      1,
		Confidence: 0.696,
	}
}

func patientColumns() []string {
	return []string{"id", "user_id", "name", "sex", "glucose", "blood_pressure", "bmi", "pedigree", "age", "label", "confidence", "created_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+patients\s*\(id,\s*user_id,\s*name,\s*sex,\s*glucose,\s*blood_pressure,\s*bmi,\s*pedigree,\s*age,\s*label,\s*confidence\)\s*VALUES.*RETURNING\s+created_at\s*$`

	p := samplePatient()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at"}).AddRow(now)
	mock.ExpectQuery(q).
		WithArgs(p.ID, p.OwnerID, p.Name, p.Sex, p.Glucose, p.BloodPressure, p.BMI, p.Pedigree, p.Age, p.Label, p.Confidence).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+patients`

	mock.ExpectQuery(q).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), samplePatient())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByOwner_DefaultOrder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s.+\sFROM\s+patients\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+ASC$`

	now := time.Now()
	rows := sqlmock.NewRows(patientColumns()).
		AddRow("p-1", "u-1", "Jane Roe", "F", 148.0, 72.0, 33.6, 0.627, 50, 1, 0.696, now).
		AddRow("p-2", "u-1", "John Roe", "M", 85.0, 66.0, 26.6, 0.351, 31, 0, 0.72, now.Add(time.Second))
	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "u-1", ListOptions{})
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-1" || got[1].Label != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestListByOwner_FiltersAndSort(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s.+\sFROM\s+patients\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+label\s*=\s*\$2\s+AND\s+age\s*>=\s*\$3\s+AND\s+glucose\s*>=\s*\$4\s+ORDER\s+BY\s+glucose\s+DESC$`

	label, minAge, minGlucose := 1, 40, 120.0
	rows := sqlmock.NewRows(patientColumns()).
		AddRow("p-1", "u-1", "Jane Roe", "F", 148.0, 72.0, 33.6, 0.627, 50, 1, 0.696, time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1", label, minAge, minGlucose).
		WillReturnRows(rows)

	opts := ListOptions{
		Filter:     Filter{Label: &label, MinAge: &minAge, MinGlucose: &minGlucose},
		SortKey:    "glucose",
		Descending: true,
	}
	got, err := repo.ListByOwner(context.Background(), "u-1", opts)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestListByOwner_UnknownSortKey(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.ListByOwner(context.Background(), "u-1", ListOptions{SortKey: "password_hash"})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want common.ErrValidation, got %v", err)
	}
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s.+\sFROM\s+patients\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+ASC$`

	mock.ExpectQuery(q).
		WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows(patientColumns()))

	got, err := repo.ListByOwner(context.Background(), "u-2", ListOptions{})
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+patients\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("p-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1", "p-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_WrongOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+patients\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("p-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u-2", "p-1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+patients`

	mock.ExpectExec(q).
		WithArgs("p-1", "u-1").
		WillReturnError(errors.New("db down"))

	err := repo.Delete(context.Background(), "u-1", "p-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
