package managers

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNoManager means no active mapping resolves for the collaborator.
// Evaluation creation must fail explicitly rather than guess an evaluator.
var ErrNoManager = errors.New("no manager configured for collaborator")

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Resolve returns the evaluator for a collaborator. A mapping scoped to
// periodID takes precedence over the global (nil period) mapping. When data
// integrity is violated and several active mappings compete for the same
// scope, the most recently updated one wins and a warning is logged.
func (s *Service) Resolve(ctx context.Context, collaboratorID, periodID string) (string, error) {
	mappings, err := s.store.ActiveMappings(ctx, collaboratorID, periodID)
	if err != nil {
		return "", err
	}
	if len(mappings) == 0 {
		return "", ErrNoManager
	}

	scoped := make([]Mapping, 0, len(mappings))
	global := make([]Mapping, 0, len(mappings))
	for _, m := range mappings {
		if m.PeriodID != nil {
			scoped = append(scoped, m)
		} else {
			global = append(global, m)
		}
	}

	candidates := scoped
	if len(candidates) == 0 {
		candidates = global
	}
	if len(candidates) > 1 {
		slog.Warn("multiple active manager mappings, using most recent",
			"collaboratorId", collaboratorID, "periodId", periodID, "count", len(candidates))
	}

	best := candidates[0]
	for _, m := range candidates[1:] {
		if m.UpdatedAt.After(best.UpdatedAt) {
			best = m
		}
	}
	return best.ManagerID, nil
}

func (s *Service) List(ctx context.Context, collaboratorID string) ([]Mapping, error) {
	return s.store.ListMappings(ctx, collaboratorID)
}

func (s *Service) Create(ctx context.Context, collaboratorID, managerID string, periodID *string) (string, error) {
	return s.store.CreateMapping(ctx, collaboratorID, managerID, periodID)
}

func (s *Service) Deactivate(ctx context.Context, mappingID string) error {
	return s.store.DeactivateMapping(ctx, mappingID)
}

// IsEvaluationManager reads the admin-facing eligibility toggle. The toggle
// filters whom an admin may assign as evaluator; Resolve never consults it.
// The mapping table is authoritative.
func (s *Service) IsEvaluationManager(ctx context.Context, userID string) (bool, error) {
	return s.store.IsEvaluationManager(ctx, userID)
}

func (s *Service) SetEvaluationManager(ctx context.Context, userID string, enabled bool) error {
	return s.store.SetEvaluationManager(ctx, userID, enabled)
}
