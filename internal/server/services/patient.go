package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/models"
	"github.com/sara-git-hub/diabcare/internal/server/predictor"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/patients"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/repomanager"
)

// PatientStats summarizes an owner's records for the dashboard.
type PatientStats struct {
	Total           int
	Elevated        int
	ElevatedPercent float64
}

// PatientService owns the patient record lifecycle. Every operation is
// scoped to the owner id supplied by a previously validated session; the
// service performs no authentication of its own.
type PatientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	predictor   *predictor.Predictor
	logger      logging.Logger
}

// NewPatientService constructs a PatientService with an injected
// predictor.
func NewPatientService(db *sql.DB, m repomanager.RepositoryManager, p *predictor.Predictor, logger logging.Logger) *PatientService {
	return &PatientService{
		db:          db,
		repomanager: m,
		predictor:   p,
		logger:      logger.With("module", "patients"),
	}
}

// Create assesses the measurements and persists a new patient record with
// the returned label and confidence frozen into it. On any assessment
// failure no record is written. The stored prediction is never recomputed.
func (s *PatientService) Create(ctx context.Context, ownerID, name, sex string, m models.Measurements) (*models.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	sex = strings.ToUpper(strings.TrimSpace(sex))
	if sex != "M" && sex != "F" {
		return nil, fmt.Errorf("%w: sex must be M or F", common.ErrValidation)
	}

	result, err := s.predictor.Assess(ctx, m)
	if err != nil {
		return nil, err
	}

	patient := &models.Patient{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		Sex:          sex,
		Measurements: m,
		Label:        result.Label,
		Confidence:   result.Confidence,
	}

	created, err := s.repomanager.Patients(s.db).Create(ctx, patient)
	if err != nil {
		return nil, fmt.Errorf("error creating patient: %w", err)
	}

	s.logger.Info(ctx, "patient record created",
		"patient_id", created.ID, "label", created.Label)

	return created, nil
}

// List returns a snapshot of the owner's records after applying the
// optional filter and sort. Records of other owners are never visible.
func (s *PatientService) List(ctx context.Context, ownerID string, opts patients.ListOptions) ([]*models.Patient, error) {
	return s.repomanager.Patients(s.db).ListByOwner(ctx, ownerID, opts)
}

// Delete permanently removes one of the owner's records. A nonexistent id
// and an id owned by someone else both fail with ErrNotFound.
func (s *PatientService) Delete(ctx context.Context, ownerID, patientID string) error {
	if err := s.repomanager.Patients(s.db).Delete(ctx, ownerID, patientID); err != nil {
		return err
	}
	s.logger.Info(ctx, "patient record deleted", "patient_id", patientID)
	return nil
}

// Stats computes the owner's dashboard numbers over a full listing.
func (s *PatientService) Stats(ctx context.Context, ownerID string) (*PatientStats, error) {
	list, err := s.repomanager.Patients(s.db).ListByOwner(ctx, ownerID, patients.ListOptions{})
	if err != nil {
		return nil, err
	}

	stats := &PatientStats{Total: len(list)}
	for _, p := range list {
		if p.Label == 1 {
			stats.Elevated++
		}
	}
	if stats.Total > 0 {
		percent := float64(stats.Elevated) / float64(stats.Total) * 100
		stats.ElevatedPercent = math.Round(percent*10) / 10
	}
	return stats, nil
}
