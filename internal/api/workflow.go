package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/services"
)

const maxDefinitionBytes = 4 << 20

// decodeDefinition reads a workflow from a JSON body, or a YAML body when
// the content type says so.
func decodeDefinition(w http.ResponseWriter, r *http.Request) (*flow.WorkflowDefinition, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDefinitionBytes))
	if err != nil {
		return nil, err
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return services.ParseDefinition(data)
	}
	var wf flow.WorkflowDefinition
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := decodeDefinition(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if wf.Name != "" {
		if _, err := s.canvases.GetWorkflow(r.Context(), wf.Name); err == nil {
			http.Error(w, fmt.Sprintf("workflow %q already exists", wf.Name), http.StatusConflict)
			return
		}
	}
	if err := s.canvases.CreateWorkflow(r.Context(), wf); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	list, err := s.canvases.ListWorkflows(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*flow.WorkflowDefinition{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.canvases.GetWorkflow(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) updateWorkflow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	wf, err := decodeDefinition(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.canvases.UpdateWorkflow(r.Context(), name, wf); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.canvases.DeleteWorkflow(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
