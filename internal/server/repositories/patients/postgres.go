// Package patients provides a PostgreSQL-backed repository for patient
// records. Every query is scoped by the owning user id; ownership is the
// access boundary, not just a foreign key.
package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/dbx"
	"github.com/sara-git-hub/diabcare/internal/server/models"
)

// sortColumns whitelists the attributes a listing may be ordered by.
// Sort keys are mapped to column names here and never interpolated from
// caller input directly.
var sortColumns = map[string]string{
	"created_at":     "created_at",
	"name":           "name",
	"age":            "age",
	"glucose":        "glucose",
	"blood_pressure": "blood_pressure",
	"bmi":            "bmi",
	"pedigree":       "pedigree",
	"label":          "label",
	"confidence":     "confidence",
}

// PostgresRepository implements patient storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a complete patient record, measurements and frozen
// prediction together, in a single atomic write.
func (r *PostgresRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	query := `
		INSERT INTO patients (id, user_id, name, sex, glucose, blood_pressure, bmi, pedigree, age, label, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		patient.ID, patient.OwnerID, patient.Name, patient.Sex,
		patient.Glucose, patient.BloodPressure, patient.BMI, patient.Pedigree, patient.Age,
		patient.Label, patient.Confidence).Scan(&patient.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return patient, nil
}

// ListByOwner returns a snapshot of the records owned by ownerID, after
// applying the optional filter and sort. An unknown sort key yields
// common.ErrValidation. Default order is creation order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*models.Patient, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, name, sex, glucose, blood_pressure, bmi, pedigree, age, label, confidence, created_at FROM patients WHERE user_id = $1`)
	args := []any{ownerID}

	if opts.Filter.Label != nil {
		args = append(args, *opts.Filter.Label)
		fmt.Fprintf(&sb, " AND label = $%d", len(args))
	}
	if opts.Filter.MinAge != nil {
		args = append(args, *opts.Filter.MinAge)
		fmt.Fprintf(&sb, " AND age >= $%d", len(args))
	}
	if opts.Filter.MinGlucose != nil {
		args = append(args, *opts.Filter.MinGlucose)
		fmt.Fprintf(&sb, " AND glucose >= $%d", len(args))
	}

	sortKey := opts.SortKey
	if sortKey == "" {
		sortKey = "created_at"
	}
	column, ok := sortColumns[sortKey]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", common.ErrValidation, sortKey)
	}
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", column, direction)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Patient
	for rows.Next() {
		var item models.Patient
		if err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Name, &item.Sex,
			&item.Glucose, &item.BloodPressure, &item.BMI, &item.Pedigree, &item.Age,
			&item.Label, &item.Confidence, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete permanently removes the record with the given id if it belongs
// to ownerID. A missing record and an ownership mismatch are both
// common.ErrNotFound, so callers cannot probe for other owners' records.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, patientID string) error {
	query := `
		DELETE FROM patients
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, patientID, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
