// Package memory provides in-process repositories used when no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/ports"
)

// modelRepository keeps artifacts as JSON so callers never share state with the store
type modelRepository struct {
	mu     sync.RWMutex
	models map[core.ModelID][]byte
	order  []core.ModelID
}

// NewModelRepository creates an empty in-memory model repository
func NewModelRepository() ports.ModelRepository {
	return &modelRepository{models: make(map[core.ModelID][]byte)}
}

func (r *modelRepository) Save(ctx context.Context, m *artifact.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[m.ID]; !exists {
		r.order = append(r.order, m.ID)
	}
	r.models[m.ID] = raw
	return nil
}

func (r *modelRepository) Get(ctx context.Context, id core.ModelID) (*artifact.Model, error) {
	r.mu.RLock()
	raw, ok := r.models[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrModelNotFound, id)
	}
	return decode(raw)
}

func (r *modelRepository) Latest(ctx context.Context) (*artifact.Model, error) {
	all, err := r.sorted()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, core.ErrModelNotFound
	}
	return all[0], nil
}

func (r *modelRepository) FindByKey(ctx context.Context, fingerprint core.Hash, inputs artifact.Inputs) (*artifact.Model, error) {
	all, err := r.sorted()
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		if m.DatasetFingerprint == fingerprint && m.Inputs == inputs {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: dataset %s inputs %s", core.ErrModelNotFound, fingerprint.Short(), inputs.Key())
}

func (r *modelRepository) List(ctx context.Context, limit int) ([]artifact.Summary, error) {
	all, err := r.sorted()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]artifact.Summary, len(all))
	for i, m := range all {
		out[i] = m.Summary()
	}
	return out, nil
}

func (r *modelRepository) Delete(ctx context.Context, id core.ModelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrModelNotFound, id)
	}
	delete(r.models, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// sorted decodes every model, newest first; insertion order breaks ties
func (r *modelRepository) sorted() ([]*artifact.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*artifact.Model, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		m, err := decode(r.models[r.order[i]])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func decode(raw []byte) (*artifact.Model, error) {
	var m artifact.Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	return &m, nil
}
