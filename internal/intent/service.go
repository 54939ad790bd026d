package intent

import (
	"context"
	stderrors "errors"
	"log"

	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/domain/incident"
	"gundash/internal/config"
	"gundash/internal/errors"
	"gundash/ports"

	"golang.org/x/sync/semaphore"
)

// EventTrained is published after a new model is saved
const EventTrained = "model_trained"

// TableSource provides the current dataset; dataset.Cache satisfies it
type TableSource interface {
	Get(ctx context.Context) (*incident.Table, error)
}

// Service owns model artifacts: it reuses a stored model when one matches
// the dataset and inputs, otherwise trains one at a time and stores it
type Service struct {
	tables    TableSource
	repo      ports.ModelRepository
	cfg       config.ModelConfig
	publisher ports.EventPublisher
	sem       *semaphore.Weighted
}

// NewService wires the model service. publisher may be nil.
func NewService(tables TableSource, repo ports.ModelRepository, cfg config.ModelConfig, publisher ports.EventPublisher) *Service {
	return &Service{
		tables:    tables,
		repo:      repo,
		cfg:       cfg,
		publisher: publisher,
		sem:       semaphore.NewWeighted(1),
	}
}

// TrainResult is a model plus whether it came from the store
type TrainResult struct {
	Model  *artifact.Model
	Reused bool
}

// Ensure returns a model for the current dataset and inputs, training one
// when none is stored
func (s *Service) Ensure(ctx context.Context, inputs artifact.Inputs) (*TrainResult, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}
	table, err := s.tables.Get(ctx)
	if err != nil {
		return nil, err
	}
	if m, err := s.lookup(ctx, table, inputs); err != nil {
		return nil, err
	} else if m != nil {
		return &TrainResult{Model: m, Reused: true}, nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	// another request may have trained it while we waited
	if m, err := s.lookup(ctx, table, inputs); err != nil {
		return nil, err
	} else if m != nil {
		return &TrainResult{Model: m, Reused: true}, nil
	}

	m, err := s.train(ctx, table, inputs)
	if err != nil {
		return nil, err
	}
	return &TrainResult{Model: m}, nil
}

// Train always fits a fresh model and stores it
func (s *Service) Train(ctx context.Context, inputs artifact.Inputs) (*artifact.Model, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}
	table, err := s.tables.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.train(ctx, table, inputs)
}

// Predict scores a request against a stored model; an empty id uses the latest
func (s *Service) Predict(ctx context.Context, id core.ModelID, req PredictRequest) (*artifact.Model, *Prediction, error) {
	var (
		m   *artifact.Model
		err error
	)
	if id == "" {
		m, err = s.repo.Latest(ctx)
	} else {
		m, err = s.repo.Get(ctx, id)
	}
	if err != nil {
		return nil, nil, notFound(err)
	}
	p, err := Predict(m, req)
	if err != nil {
		return nil, nil, err
	}
	return m, p, nil
}

// Latest returns the newest stored model
func (s *Service) Latest(ctx context.Context) (*artifact.Model, error) {
	m, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// Delete removes a stored model. The next Ensure for its dataset and inputs
// trains again.
func (s *Service) Delete(ctx context.Context, id core.ModelID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

// List returns stored model summaries, newest first
func (s *Service) List(ctx context.Context, limit int) ([]artifact.Summary, error) {
	return s.repo.List(ctx, limit)
}

func (s *Service) lookup(ctx context.Context, table *incident.Table, inputs artifact.Inputs) (*artifact.Model, error) {
	if table.Fingerprint().IsEmpty() {
		return nil, nil
	}
	m, err := s.repo.FindByKey(ctx, table.Fingerprint(), inputs)
	if stderrors.Is(err, core.ErrModelNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "model lookup failed")
	}
	if m.MaxIter != s.cfg.MaxIter || m.Seed != s.cfg.Seed || m.BroadcastInputs != s.cfg.BroadcastInputs {
		return nil, nil
	}
	return m, nil
}

func (s *Service) train(ctx context.Context, table *incident.Table, inputs artifact.Inputs) (*artifact.Model, error) {
	model := NewModel(func(context.Context) (*incident.Table, error) { return table, nil }, s.cfg)
	if err := model.LoadData(ctx); err != nil {
		return nil, err
	}
	if err := model.PreprocessData(inputs.Age, inputs.Sex, inputs.Race); err != nil {
		return nil, err
	}
	if err := model.TrainModel(ctx); err != nil {
		return nil, err
	}
	art, err := model.Artifact()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, art); err != nil {
		return nil, errors.Wrap(err, "failed to store model")
	}
	log.Printf("[IntentService] stored model %s (accuracy %.4f, dataset %s)",
		art.ID, art.Accuracy, art.DatasetFingerprint.Short())

	if s.publisher != nil {
		s.publisher.Publish(EventTrained, map[string]any{
			"model_id": art.ID.String(),
			"accuracy": art.Accuracy,
			"inputs":   art.Inputs,
		})
	}
	return art, nil
}

func validateInputs(in artifact.Inputs) error {
	if in.Age < 0 || in.Age > 100 {
		return errors.ValidationError("age must be between 0 and 100")
	}
	if in.Sex == "" || in.Race == "" {
		return errors.InvalidInput("sex and race are required")
	}
	return nil
}

func notFound(err error) error {
	if core.IsNotFoundError(err) {
		return errors.WithCode(errors.CodeNotFound, err)
	}
	return err
}
