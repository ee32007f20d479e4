package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/flowboard/internal/canvas"
	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/interaction"
	"github.com/soochol/flowboard/internal/render"
	"github.com/soochol/flowboard/internal/viewport"
)

var errInvalidRequest = errors.New("invalid request")

// canvasFor resolves the open canvas named in the URL, writing the error
// response itself when there is none.
func (s *Server) canvasFor(w http.ResponseWriter, r *http.Request) (*canvas.Canvas, bool) {
	c, err := s.canvases.Canvas(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return c, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) listCanvases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.canvases.OpenCanvases())
}

func (s *Server) openCanvas(w http.ResponseWriter, r *http.Request) {
	c, err := s.canvases.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) getCanvas(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// closeCanvas drops the canvas. With ?save=true unsaved edits are written
// first.
func (s *Server) closeCanvas(w http.ResponseWriter, r *http.Request) {
	save := r.URL.Query().Get("save") == "true"
	if err := s.canvases.Close(r.Context(), chi.URLParam(r, "name"), save); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Kind flow.NodeKind `json:"kind"`
		X    float64       `json:"x"`
		Y    float64       `json:"y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		node flow.Node
		err  error
	)
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		var id string
		id, err = ctrl.AddNode(req.Kind, geometry.Point{X: req.X, Y: req.Y})
		if err == nil {
			node, _ = ctrl.Graph().Node(id)
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) configureNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label  string         `json:"label"`
		Config map[string]any `json:"config"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	node, err := s.canvases.ConfigureNode(chi.URLParam(r, "name"), chi.URLParam(r, "id"), req.Label, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var removed bool
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		removed = ctrl.RemoveNode(id)
	})
	if !removed {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	var req flow.Edge
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		edge flow.Edge
		err  error
	)
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		var id string
		id, err = ctrl.Connect(req.Source, req.Target, req.SourceHandle, req.TargetHandle)
		if err == nil {
			edge, _ = ctrl.Graph().Edge(id)
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var removed bool
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		removed = ctrl.RemoveEdge(id)
	})
	if !removed {
		http.Error(w, "edge not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSelection(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	var deleted bool
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		deleted = ctrl.DeleteSelection()
	})
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// pointerRequest carries one pointer event in screen pixels.
type pointerRequest struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta float64 `json:"delta"`
}

// pointer feeds one pointer event into the controller and returns the
// resulting snapshot.
func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	var req pointerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	at := geometry.Point{X: req.X, Y: req.Y}
	var err error
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		switch req.Type {
		case "down":
			ctrl.PointerDown(at)
		case "move":
			ctrl.PointerMove(at)
		case "up":
			ctrl.PointerUp(at)
		case "cancel":
			ctrl.Cancel()
		case "wheel":
			ctrl.Wheel(req.Delta, at)
		default:
			err = fmt.Errorf("%w: unknown pointer event %q", errInvalidRequest, req.Type)
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

type viewportRequest struct {
	Action string  `json:"action"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Zoom   float64 `json:"zoom"`
}

func (s *Server) changeViewport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	var req viewportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var apply func(v *viewport.Viewport)
	switch req.Action {
	case "reset":
		apply = (*viewport.Viewport).Reset
	case "zoom_in":
		apply = (*viewport.Viewport).ZoomIn
	case "zoom_out":
		apply = (*viewport.Viewport).ZoomOut
	case "zoom":
		apply = func(v *viewport.Viewport) { v.SetZoom(req.Zoom, v.Center()) }
	case "pan":
		apply = func(v *viewport.Viewport) { v.Pan(req.DX, req.DY) }
	case "resize":
		if req.Width <= 0 || req.Height <= 0 {
			writeError(w, fmt.Errorf("%w: resize needs a positive width and height", errInvalidRequest))
			return
		}
		apply = func(v *viewport.Viewport) { v.Resize(req.Width, req.Height) }
	default:
		writeError(w, fmt.Errorf("%w: unknown viewport action %q", errInvalidRequest, req.Action))
		return
	}
	writeJSON(w, http.StatusOK, c.ChangeViewport(apply))
}

func (s *Server) miniMapClick(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	var req geometry.Point
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, c.MiniMapClick(req))
}

func (s *Server) saveCanvas(w http.ResponseWriter, r *http.Request) {
	wf, err := s.canvases.Save(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) canvasSVG(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvasFor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprint(w, render.SVG(c.Snapshot()))
}
