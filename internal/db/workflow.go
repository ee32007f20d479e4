package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soochol/flowboard/internal/flow"
)

// ErrNoWorkflow is returned when no row matches a workflow name.
var ErrNoWorkflow = errors.New("workflow not found")

// WorkflowRow is a stored workflow. The thumbnail lives in its own column
// so listings can skip decoding the definition body.
type WorkflowRow struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Version    int                     `json:"version"`
	Definition flow.WorkflowDefinition `json:"definition"`
	NodeCount  int                     `json:"node_count"`
	EdgeCount  int                     `json:"edge_count"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

const selectWorkflow = `SELECT id, name, version, definition, thumbnail, created_at, updated_at FROM workflows`

// marshalDefinition encodes wf without its thumbnail, which is stored
// separately.
func marshalDefinition(wf *flow.WorkflowDefinition) ([]byte, error) {
	body := *wf
	body.ThumbnailSVG = ""
	b, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	return b, nil
}

// CreateWorkflow stores wf, replacing any row with the same name.
func (d *DB) CreateWorkflow(ctx context.Context, wf *flow.WorkflowDefinition) (*WorkflowRow, error) {
	defJSON, err := marshalDefinition(wf)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	row := &WorkflowRow{
		ID:         flow.GenerateID("wf"),
		Name:       wf.Name,
		Version:    wf.Version,
		Definition: *wf,
		NodeCount:  len(wf.Nodes),
		EdgeCount:  len(wf.Edges),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO workflows (id, name, version, definition, thumbnail, node_count, edge_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (name) DO UPDATE SET definition = EXCLUDED.definition, version = EXCLUDED.version,
		   thumbnail = EXCLUDED.thumbnail, node_count = EXCLUDED.node_count, edge_count = EXCLUDED.edge_count,
		   updated_at = EXCLUDED.updated_at`,
		row.ID, row.Name, row.Version, defJSON, wf.ThumbnailSVG, row.NodeCount, row.EdgeCount, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return row, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(s scanner) (*WorkflowRow, error) {
	var (
		row       WorkflowRow
		defJSON   []byte
		thumbnail string
	)
	if err := s.Scan(&row.ID, &row.Name, &row.Version, &defJSON, &thumbnail, &row.CreatedAt, &row.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(defJSON, &row.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition %q: %w", row.Name, err)
	}
	row.Definition.ThumbnailSVG = thumbnail
	row.NodeCount = len(row.Definition.Nodes)
	row.EdgeCount = len(row.Definition.Edges)
	return &row, nil
}

// GetWorkflow retrieves a workflow by name.
func (d *DB) GetWorkflow(ctx context.Context, name string) (*WorkflowRow, error) {
	row, err := scanWorkflow(d.Pool.QueryRowContext(ctx, selectWorkflow+` WHERE name = $1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoWorkflow, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return row, nil
}

// ListWorkflows returns all workflows, most recently updated first.
func (d *DB) ListWorkflows(ctx context.Context) ([]WorkflowRow, error) {
	rows, err := d.Pool.QueryContext(ctx, selectWorkflow+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var result []WorkflowRow
	for rows.Next() {
		row, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		result = append(result, *row)
	}
	return result, rows.Err()
}

// UpdateWorkflow replaces the stored definition for name. wf.Name may
// differ from name to rename the workflow.
func (d *DB) UpdateWorkflow(ctx context.Context, name string, wf *flow.WorkflowDefinition) error {
	defJSON, err := marshalDefinition(wf)
	if err != nil {
		return err
	}

	res, err := d.Pool.ExecContext(ctx,
		`UPDATE workflows SET name = $1, definition = $2, version = $3, thumbnail = $4,
		   node_count = $5, edge_count = $6, updated_at = NOW()
		 WHERE name = $7`,
		wf.Name, defJSON, wf.Version, wf.ThumbnailSVG, len(wf.Nodes), len(wf.Edges), name,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNoWorkflow, name)
	}
	return nil
}

// DeleteWorkflow removes a workflow by name.
func (d *DB) DeleteWorkflow(ctx context.Context, name string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM workflows WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNoWorkflow, name)
	}
	return nil
}
