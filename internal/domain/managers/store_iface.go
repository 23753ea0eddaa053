package managers

import "context"

type StoreAPI interface {
	ActiveMappings(ctx context.Context, collaboratorID, periodID string) ([]Mapping, error)
	ListMappings(ctx context.Context, collaboratorID string) ([]Mapping, error)
	CreateMapping(ctx context.Context, collaboratorID, managerID string, periodID *string) (string, error)
	DeactivateMapping(ctx context.Context, mappingID string) error
	IsEvaluationManager(ctx context.Context, userID string) (bool, error)
	SetEvaluationManager(ctx context.Context, userID string, enabled bool) error
}
