package periods

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("period not found")
	ErrInvalidDates = errors.New("invalid period dates")
	ErrReferenced   = errors.New("period has evaluations")
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.store.ListPeriods(ctx)
}

func (s *Service) Get(ctx context.Context, periodID string) (Period, error) {
	return s.store.GetPeriod(ctx, periodID)
}

func (s *Service) Create(ctx context.Context, p Period) (string, error) {
	if p.EndDate.Before(p.StartDate) {
		return "", ErrInvalidDates
	}
	if p.SelfAssessmentDeadline.Before(p.StartDate) || p.SelfAssessmentDeadline.After(p.EndDate) {
		return "", ErrInvalidDates
	}
	if p.ApprovalDeadline.Before(p.SelfAssessmentDeadline) || p.ApprovalDeadline.After(p.EndDate) {
		return "", ErrInvalidDates
	}
	return s.store.CreatePeriod(ctx, p)
}

// Deactivate flips the active flag. Periods referenced by evaluations are
// never deleted, only deactivated.
func (s *Service) Deactivate(ctx context.Context, periodID string) error {
	return s.store.SetActive(ctx, periodID, false)
}

func (s *Service) Activate(ctx context.Context, periodID string) error {
	return s.store.SetActive(ctx, periodID, true)
}

// Delete removes a period outright. Periods referenced by evaluations must be
// deactivated instead, so referential integrity is checked first.
func (s *Service) Delete(ctx context.Context, periodID string) error {
	referenced, err := s.store.HasEvaluations(ctx, periodID)
	if err != nil {
		return err
	}
	if referenced {
		return ErrReferenced
	}
	return s.store.DeletePeriod(ctx, periodID)
}

func (s *Service) IsOpenForSelfAssessment(ctx context.Context, periodID string) (bool, error) {
	p, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return false, err
	}
	return p.OpenForSelfAssessment(s.now()), nil
}

func (s *Service) IsOpenForManagerReview(ctx context.Context, periodID string) (bool, error) {
	p, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return false, err
	}
	return p.OpenForManagerReview(s.now()), nil
}

func (s *Service) EligibleUserIDs(ctx context.Context, periodID string) ([]string, error) {
	return s.store.EligibleUserIDs(ctx, periodID)
}

func (s *Service) PeriodsDueToOpen(ctx context.Context) ([]Period, error) {
	return s.store.PeriodsDueToOpen(ctx, s.now())
}

func (s *Service) MarkOpened(ctx context.Context, periodID string, created int) error {
	return s.store.MarkOpened(ctx, periodID, created)
}
