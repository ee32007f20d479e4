// Package api exposes workflows and live canvases over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/flowboard/internal/canvas"
	"github.com/soochol/flowboard/internal/graph"
	"github.com/soochol/flowboard/internal/repository"
	"github.com/soochol/flowboard/internal/services"
)

type Server struct {
	canvases  *services.CanvasService
	staticDir string
}

func NewServer(canvases *services.CanvasService) *Server {
	return &Server{canvases: canvases}
}

// SetStaticDir serves a built frontend from dir for every non-API path.
func (s *Server) SetStaticDir(dir string) {
	s.staticDir = dir
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", s.createWorkflow)
			r.Get("/", s.listWorkflows)
			r.Get("/{name}", s.getWorkflow)
			r.Put("/{name}", s.updateWorkflow)
			r.Delete("/{name}", s.deleteWorkflow)
		})
		r.Route("/canvases", func(r chi.Router) {
			r.Get("/", s.listCanvases)
			r.Post("/{name}/open", s.openCanvas)
			r.Get("/{name}", s.getCanvas)
			r.Delete("/{name}", s.closeCanvas)
			r.Post("/{name}/nodes", s.addNode)
			r.Put("/{name}/nodes/{id}", s.configureNode)
			r.Delete("/{name}/nodes/{id}", s.removeNode)
			r.Post("/{name}/edges", s.addEdge)
			r.Delete("/{name}/edges/{id}", s.removeEdge)
			r.Post("/{name}/selection/delete", s.deleteSelection)
			r.Post("/{name}/pointer", s.pointer)
			r.Post("/{name}/viewport", s.changeViewport)
			r.Post("/{name}/minimap/click", s.miniMapClick)
			r.Post("/{name}/save", s.saveCanvas)
			r.Get("/{name}/svg", s.canvasSVG)
			r.Get("/{name}/events", s.streamCanvasEvents)
		})
	})

	if s.staticDir != "" {
		r.Handle("/*", StaticHandler(s.staticDir))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, canvas.ErrNotOpen),
		errors.Is(err, services.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrDuplicateEdge),
		errors.Is(err, graph.ErrDuplicateNode):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidConfig),
		errors.Is(err, services.ErrInvalidWorkflow),
		errors.Is(err, graph.ErrSelfLoop),
		errors.Is(err, graph.ErrUnknownNode),
		errors.Is(err, graph.ErrUnknownKind),
		errors.Is(err, errInvalidRequest):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}
