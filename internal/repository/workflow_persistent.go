package repository

import (
	"context"
	"log/slog"

	"github.com/soochol/flowboard/internal/db"
	"github.com/soochol/flowboard/internal/flow"
)

// WorkflowDB is the slice of the database layer the persistent repository
// needs. *db.DB satisfies it.
type WorkflowDB interface {
	CreateWorkflow(ctx context.Context, wf *flow.WorkflowDefinition) (*db.WorkflowRow, error)
	GetWorkflow(ctx context.Context, name string) (*db.WorkflowRow, error)
	ListWorkflows(ctx context.Context) ([]db.WorkflowRow, error)
	UpdateWorkflow(ctx context.Context, name string, wf *flow.WorkflowDefinition) error
	DeleteWorkflow(ctx context.Context, name string) error
}

var _ WorkflowDB = (*db.DB)(nil)

// PersistentRepository wraps a MemoryRepository with a PostgreSQL backend.
// Writes go to both stores; a DB failure is logged and the in-memory copy
// still serves. Reads try memory first and fall back to the database.
type PersistentRepository struct {
	mem *MemoryRepository
	db  WorkflowDB
}

// NewPersistent creates a repository backed by both memory and the database.
func NewPersistent(mem *MemoryRepository, database WorkflowDB) *PersistentRepository {
	return &PersistentRepository{mem: mem, db: database}
}

func (r *PersistentRepository) Create(ctx context.Context, wf *flow.WorkflowDefinition) error {
	_ = r.mem.Create(ctx, wf)
	if _, err := r.db.CreateWorkflow(ctx, wf); err != nil {
		slog.Warn("db create workflow failed, in-memory only", "workflow", wf.Name, "err", err)
	}
	return nil
}

func (r *PersistentRepository) Get(ctx context.Context, name string) (*flow.WorkflowDefinition, error) {
	wf, err := r.mem.Get(ctx, name)
	if err == nil {
		return wf, nil
	}

	row, dbErr := r.db.GetWorkflow(ctx, name)
	if dbErr != nil {
		return nil, err
	}
	_ = r.mem.Create(ctx, &row.Definition)
	return &row.Definition, nil
}

func (r *PersistentRepository) List(ctx context.Context) ([]*flow.WorkflowDefinition, error) {
	rows, err := r.db.ListWorkflows(ctx)
	if err == nil {
		result := make([]*flow.WorkflowDefinition, len(rows))
		for i := range rows {
			result[i] = &rows[i].Definition
		}
		return result, nil
	}
	slog.Warn("db list workflows failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx)
}

// Update writes through to the database even when the workflow is only
// known there.
func (r *PersistentRepository) Update(ctx context.Context, name string, wf *flow.WorkflowDefinition) error {
	memErr := r.mem.Update(ctx, name, wf)
	dbErr := r.db.UpdateWorkflow(ctx, name, wf)
	if dbErr != nil {
		slog.Warn("db update workflow failed", "workflow", name, "err", dbErr)
	}
	if memErr != nil && dbErr != nil {
		return memErr
	}
	if memErr != nil {
		_ = r.mem.Create(ctx, wf)
	}
	return nil
}

func (r *PersistentRepository) Delete(ctx context.Context, name string) error {
	_ = r.mem.Delete(ctx, name)
	if err := r.db.DeleteWorkflow(ctx, name); err != nil {
		slog.Warn("db delete workflow failed", "workflow", name, "err", err)
	}
	return nil
}
