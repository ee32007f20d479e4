// Package repository stores workflow definitions behind one interface so
// callers need not know whether storage is in-memory, PostgreSQL, or both.
package repository

import (
	"context"
	"errors"

	"github.com/soochol/flowboard/internal/flow"
)

// ErrNotFound is returned when a requested workflow does not exist.
var ErrNotFound = errors.New("workflow not found")

// WorkflowRepository persists workflow definitions by name.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *flow.WorkflowDefinition) error
	Get(ctx context.Context, name string) (*flow.WorkflowDefinition, error)
	List(ctx context.Context) ([]*flow.WorkflowDefinition, error)
	Update(ctx context.Context, name string, wf *flow.WorkflowDefinition) error
	Delete(ctx context.Context, name string) error
}

// clone copies wf deeply enough that later edits by the caller do not
// reach stored values.
func clone(wf *flow.WorkflowDefinition) *flow.WorkflowDefinition {
	c := *wf
	c.Nodes = make([]flow.Node, len(wf.Nodes))
	for i, n := range wf.Nodes {
		if n.Config != nil {
			cfg := make(map[string]any, len(n.Config))
			for k, v := range n.Config {
				cfg[k] = v
			}
			n.Config = cfg
		}
		c.Nodes[i] = n
	}
	c.Edges = append([]flow.Edge(nil), wf.Edges...)
	return &c
}
