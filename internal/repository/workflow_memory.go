package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/soochol/flowboard/internal/flow"
	memstore "github.com/soochol/flowboard/internal/repository/memory"
)

// MemoryRepository is a thread-safe in-memory WorkflowRepository.
type MemoryRepository struct {
	store *memstore.Store[*flow.WorkflowDefinition]
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		store: memstore.New(func(w *flow.WorkflowDefinition) string { return w.Name }),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, wf *flow.WorkflowDefinition) error {
	return r.store.Set(ctx, clone(wf))
}

func (r *MemoryRepository) Get(ctx context.Context, name string) (*flow.WorkflowDefinition, error) {
	wf, err := r.store.Get(ctx, name)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return clone(wf), nil
}

// List returns the workflows ordered by name.
func (r *MemoryRepository) List(ctx context.Context) ([]*flow.WorkflowDefinition, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*flow.WorkflowDefinition, len(all))
	for i, wf := range all {
		out[i] = clone(wf)
	}
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, name string, wf *flow.WorkflowDefinition) error {
	if !r.store.Has(ctx, name) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if name != wf.Name {
		_ = r.store.Delete(ctx, name)
	}
	return r.store.Set(ctx, clone(wf))
}

// Delete is a no-op on missing names.
func (r *MemoryRepository) Delete(ctx context.Context, name string) error {
	_ = r.store.Delete(ctx, name)
	return nil
}
