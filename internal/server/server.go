// Package server exposes the local export control surface over HTTP: asset
// registration, export start/progress/cancel, and a websocket progress
// feed for the editor UI.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rendercut/internal/compile"
	"github.com/backmassage/rendercut/internal/config"
	"github.com/backmassage/rendercut/internal/media"
	"github.com/backmassage/rendercut/internal/session"
	"github.com/backmassage/rendercut/internal/timeline"
)

// ExportRequest is the body of POST /api/v1/export.
type ExportRequest struct {
	Tracks  []timeline.Track `json:"tracks"`
	Options compile.Options  `json:"options"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server wires the controller and registry into a chi router.
type Server struct {
	log      hclog.Logger
	cfg      *config.Config
	registry *media.MemoryRegistry
	control  *session.Controller
}

// New returns a Server ready to build its router.
func New(log hclog.Logger, cfg *config.Config, registry *media.MemoryRegistry, control *session.Controller) *Server {
	return &Server{
		log:      log.Named("http"),
		cfg:      cfg,
		registry: registry,
		control:  control,
	}
}

// Router builds the control-surface routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/assets", s.handleRegisterAsset)
		r.Post("/export", s.handleStartExport)
		r.Get("/export/progress", s.handleProgress)
		r.Post("/export/cancel", s.handleCancel)
		r.Get("/export/events", s.handleEvents)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegisterAsset(w http.ResponseWriter, r *http.Request) {
	var asset media.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed asset: " + err.Error()})
		return
	}
	if asset.ID == "" || asset.Path == "" || asset.Duration <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "asset needs id, path, and a positive duration"})
		return
	}
	s.registry.Register(asset)
	s.log.Debug("asset registered", "id", asset.ID, "path", asset.Path)
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleStartExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed export request: " + err.Error()})
		return
	}
	s.cfg.ApplyDefaults(&req.Options)

	res := s.control.StartExport(req.Tracks, req.Options)
	switch {
	case res.Accepted:
		writeJSON(w, http.StatusAccepted, res)
	case res.Reason == "an export is already in progress":
		writeJSON(w, http.StatusConflict, res)
	default:
		writeJSON(w, http.StatusBadRequest, res)
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.control.Progress())
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	res := s.control.CancelExport()
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
