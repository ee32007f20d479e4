// Package services ties workflow storage to live canvases: opening stored
// workflows for editing, validating node configuration, and saving edits
// back with a fresh thumbnail.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/soochol/flowboard/internal/canvas"
	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/graph"
	"github.com/soochol/flowboard/internal/interaction"
	"github.com/soochol/flowboard/internal/render"
	"github.com/soochol/flowboard/internal/repository"
	"github.com/soochol/flowboard/internal/viewport"
)

var (
	// ErrNodeNotFound is returned when an edit names a node the canvas
	// does not hold.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidWorkflow wraps every reason a definition cannot be stored.
	ErrInvalidWorkflow = errors.New("invalid workflow")
)

// CanvasService owns the open canvases and the repository behind them.
type CanvasService struct {
	repo      repository.WorkflowRepository
	canvases  *canvas.Manager
	thumbnail geometry.Size
	opening   singleflight.Group
}

// NewCanvasService creates a service. thumbnail sizes the SVG stored on
// saved workflows.
func NewCanvasService(repo repository.WorkflowRepository, canvases *canvas.Manager, thumbnail geometry.Size) *CanvasService {
	return &CanvasService{repo: repo, canvases: canvases, thumbnail: thumbnail}
}

// Bus returns the event bus shared by all canvases.
func (s *CanvasService) Bus() *interaction.EventBus { return s.canvases.Bus() }

// Normalize validates wf and brings it into stored form: nodes laid out
// when they arrive without positions, and every node's configured flag
// recomputed from its config.
func Normalize(wf *flow.WorkflowDefinition) error {
	if wf.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidWorkflow)
	}
	g, err := graph.Build(wf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
	}
	g.ExportTo(wf)
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		configured, err := CheckNodeConfig(n.Kind, n.Config)
		if err != nil {
			return fmt.Errorf("%w: node %q: %w", ErrInvalidWorkflow, n.ID, err)
		}
		n.Configured = configured
	}
	if wf.Version == 0 {
		wf.Version = 1
	}
	return nil
}

// CreateWorkflow normalizes and stores a new workflow.
func (s *CanvasService) CreateWorkflow(ctx context.Context, wf *flow.WorkflowDefinition) error {
	if err := Normalize(wf); err != nil {
		return err
	}
	wf.ThumbnailSVG = render.Thumbnail(wf, s.thumbnail.Width, s.thumbnail.Height)
	return s.repo.Create(ctx, wf)
}

// UpdateWorkflow replaces a stored workflow. An open canvas on the old name
// is closed so the next open picks up the new definition.
func (s *CanvasService) UpdateWorkflow(ctx context.Context, name string, wf *flow.WorkflowDefinition) error {
	if wf.Name == "" {
		wf.Name = name
	}
	if err := Normalize(wf); err != nil {
		return err
	}
	wf.ThumbnailSVG = render.Thumbnail(wf, s.thumbnail.Width, s.thumbnail.Height)
	if err := s.repo.Update(ctx, name, wf); err != nil {
		return err
	}
	s.canvases.Close(name)
	return nil
}

func (s *CanvasService) GetWorkflow(ctx context.Context, name string) (*flow.WorkflowDefinition, error) {
	return s.repo.Get(ctx, name)
}

func (s *CanvasService) ListWorkflows(ctx context.Context) ([]*flow.WorkflowDefinition, error) {
	return s.repo.List(ctx)
}

// DeleteWorkflow removes a workflow and drops its canvas, unsaved edits
// included.
func (s *CanvasService) DeleteWorkflow(ctx context.Context, name string) error {
	s.canvases.Close(name)
	return s.repo.Delete(ctx, name)
}

// Open returns the canvas for a stored workflow, loading it on first use.
// Concurrent opens of the same workflow share one load.
func (s *CanvasService) Open(ctx context.Context, name string) (*canvas.Canvas, error) {
	if c, err := s.canvases.Get(name); err == nil {
		return c, nil
	}
	v, err, _ := s.opening.Do(name, func() (any, error) {
		wf, err := s.repo.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		c, err := s.canvases.Open(wf)
		if err != nil {
			return nil, fmt.Errorf("open canvas %q: %w", name, err)
		}
		slog.Info("canvas opened", "workflow", name, "nodes", len(wf.Nodes), "edges", len(wf.Edges))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*canvas.Canvas), nil
}

// Canvas returns an already open canvas.
func (s *CanvasService) Canvas(name string) (*canvas.Canvas, error) {
	return s.canvases.Get(name)
}

// OpenCanvases lists the names of open canvases.
func (s *CanvasService) OpenCanvases() []string { return s.canvases.Names() }

// ConfigureNode validates cfg for the node's kind and applies it. An
// incomplete but well-formed config is stored with configured=false.
func (s *CanvasService) ConfigureNode(name, nodeID, label string, cfg map[string]any) (flow.Node, error) {
	c, err := s.canvases.Get(name)
	if err != nil {
		return flow.Node{}, err
	}
	var (
		node   flow.Node
		result error
	)
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		n, ok := ctrl.Graph().Node(nodeID)
		if !ok {
			result = fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
			return
		}
		configured, err := CheckNodeConfig(n.Kind, cfg)
		if err != nil {
			result = err
			return
		}
		ctrl.ConfigureNode(nodeID, label, cfg, configured)
		node, _ = ctrl.Graph().Node(nodeID)
	})
	return node, result
}

// Save writes the canvas back to the repository with a fresh thumbnail and
// returns the stored definition. The canvas stays dirty when the write
// fails.
func (s *CanvasService) Save(ctx context.Context, name string) (*flow.WorkflowDefinition, error) {
	c, err := s.canvases.Get(name)
	if err != nil {
		return nil, err
	}
	wf, rev := c.Definition()
	wf.ThumbnailSVG = render.Thumbnail(wf, s.thumbnail.Width, s.thumbnail.Height)

	err = s.repo.Update(ctx, name, wf)
	if errors.Is(err, repository.ErrNotFound) {
		err = s.repo.Create(ctx, wf)
	}
	if err != nil {
		return nil, fmt.Errorf("save workflow %q: %w", name, err)
	}
	c.SetThumbnail(wf.ThumbnailSVG)
	c.MarkSaved(rev)
	slog.Info("canvas saved", "workflow", name, "nodes", len(wf.Nodes), "edges", len(wf.Edges))
	return wf, nil
}

// Close drops an open canvas, saving it first when save is set and it has
// unsaved edits.
func (s *CanvasService) Close(ctx context.Context, name string, save bool) error {
	c, err := s.canvases.Get(name)
	if err != nil {
		return err
	}
	if save && c.Dirty() {
		if _, err := s.Save(ctx, name); err != nil {
			return err
		}
	}
	s.canvases.Close(name)
	return nil
}
