package periods

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListPeriods(ctx context.Context) ([]Period, error)
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	CreatePeriod(ctx context.Context, p Period) (string, error)
	SetActive(ctx context.Context, periodID string, active bool) error
	DeletePeriod(ctx context.Context, periodID string) error
	PeriodsDueToOpen(ctx context.Context, now time.Time) ([]Period, error)
	MarkOpened(ctx context.Context, periodID string, evaluationsCreated int) error
	EligibleUserIDs(ctx context.Context, periodID string) ([]string, error)
	HasEvaluations(ctx context.Context, periodID string) (bool, error)
}
