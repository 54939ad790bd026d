package ports

import (
	"context"

	"gundash/domain/artifact"
	"gundash/domain/core"
)

// ModelRepository persists fitted intent model artifacts
type ModelRepository interface {
	Save(ctx context.Context, m *artifact.Model) error
	Get(ctx context.Context, id core.ModelID) (*artifact.Model, error)

	// Latest returns the most recently created model, core.ErrModelNotFound when empty
	Latest(ctx context.Context) (*artifact.Model, error)

	// FindByKey returns the newest model trained on the given dataset
	// fingerprint with the given inputs, core.ErrModelNotFound when absent
	FindByKey(ctx context.Context, fingerprint core.Hash, inputs artifact.Inputs) (*artifact.Model, error)

	List(ctx context.Context, limit int) ([]artifact.Summary, error)
	Delete(ctx context.Context, id core.ModelID) error
}
