package evaluation

import (
	"context"
	"time"
)

// Patch holds the fields a transition writes. Nil pointers are left
// untouched; Status is always written together with the compare-and-swap.
type Patch struct {
	Status           string
	SelfAssessment   *SelfAssessment
	ManagerReview    *ManagerReview
	FinalScore       *float64
	EvaluatorComment *string
}

type StoreAPI interface {
	Get(ctx context.Context, evaluationID string) (Evaluation, error)
	Insert(ctx context.Context, eval Evaluation) (Evaluation, error)
	// ConditionalUpdate applies the patch only while the record's status still
	// equals expectedStatus. A record whose status moved underneath the caller
	// yields ErrStaleState; a missing or soft-deleted record yields ErrNotFound.
	ConditionalUpdate(ctx context.Context, evaluationID, expectedStatus string, patch Patch) (Evaluation, error)
	ListForUser(ctx context.Context, userID, status string) ([]Evaluation, error)
	ListAll(ctx context.Context, status string) ([]Evaluation, error)
	ExistsForPeriod(ctx context.Context, employeeID, periodID string) (bool, error)
	SoftDelete(ctx context.Context, evaluationID string) error
	Restore(ctx context.Context, evaluationID string) error
	ListTrash(ctx context.Context) ([]Evaluation, error)
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	UserName(ctx context.Context, userID string) (string, error)
}
