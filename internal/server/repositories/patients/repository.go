package patients

import (
	"context"

	"github.com/sara-git-hub/diabcare/internal/server/models"
)

// Filter restricts a listing by predicates over clinical fields or the
// predicted label. Nil fields are not applied.
type Filter struct {
	Label      *int
	MinAge     *int
	MinGlucose *float64
}

// ListOptions bundles the filter and sort parameters of a listing. The
// zero value lists every owned record in creation order.
type ListOptions struct {
	Filter     Filter
	SortKey    string
	Descending bool
}

type Repository interface {
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*models.Patient, error)
	Delete(ctx context.Context, ownerID, patientID string) error
}
