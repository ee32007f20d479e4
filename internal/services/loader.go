package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/soochol/flowboard/internal/flow"
)

// ParseDefinition decodes a workflow definition from YAML. JSON documents
// are accepted too since YAML is a superset.
func ParseDefinition(data []byte) (*flow.WorkflowDefinition, error) {
	var wf flow.WorkflowDefinition
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	return &wf, nil
}

// ReadDefinition reads, parses and normalizes a workflow file.
func ReadDefinition(path string) (*flow.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	wf, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := Normalize(wf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// LoadFiles reads workflow files concurrently and stores each one. The
// first failure cancels the rest and is returned; files already stored
// stay stored.
func (s *CanvasService) LoadFiles(ctx context.Context, paths []string) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			wf, err := ReadDefinition(path)
			if err != nil {
				return err
			}
			if err := s.CreateWorkflow(gCtx, wf); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			slog.Info("workflow loaded", "path", path, "workflow", wf.Name, "nodes", len(wf.Nodes))
			return nil
		})
	}
	return g.Wait()
}
