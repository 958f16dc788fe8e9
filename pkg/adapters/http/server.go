// Package http exposes the template store, the graph tooling, and the
// submission intake over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvalim/lattice/internal/logging"
	"github.com/nvalim/lattice/internal/presentation/graph"
	"github.com/nvalim/lattice/internal/traversal"
	latticevalidator "github.com/nvalim/lattice/internal/validator"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/observability"
	"github.com/nvalim/lattice/pkg/ports"
)

// Version is reported by GET /info. The main package overwrites it at build
// time via ldflags.
var Version = "dev"

// Server wires the stores and collaborators into HTTP handlers.
type Server struct {
	templates ports.TemplateStore
	inventory ports.InventorySource
	sink      ports.SubmissionSink

	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	validate *validator.Validate
}

type Option func(*Server)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsRegistry mounts /metrics serving the given registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithMetrics reports submission intake outcomes to the given metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewHandler builds the full route tree.
func NewHandler(templates ports.TemplateStore, inventory ports.InventorySource, sink ports.SubmissionSink, opts ...Option) http.Handler {
	s := &Server{
		templates: templates,
		inventory: inventory,
		sink:      sink,
		logger:    logging.NewNop(),
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	if s.registry != nil {
		r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.listTemplates)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTemplate)
			r.Put("/", s.putTemplate)
			r.Get("/lint", s.lintTemplate)
			r.Get("/tree", s.getTree)
			r.Get("/mermaid", s.getMermaid)
		})
	})

	r.Get("/inventory/{formID}", s.getInventory)
	r.Post("/submissions", s.postSubmission)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "lattice-http",
		"version": strings.TrimSpace(Version),
	})
}

// templatePayload is the wire form of a template.
type templatePayload struct {
	Name  string                  `json:"name" validate:"required"`
	Root  string                  `json:"root"`
	Steps map[string]*domain.Step `json:"steps"`
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.templates.(interface {
		List(ctx context.Context) ([]string, error)
	})
	if !ok {
		http.Error(w, "Listing not supported by this store", http.StatusNotImplemented)
		return
	}
	ids, err := lister.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list templates", "err", err)
		http.Error(w, "Failed to list templates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"templates": ids})
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	payload := templatePayload{Name: tpl.Name}
	if tpl.Graph != nil {
		payload.Root = tpl.Graph.RootStepID
		payload.Steps = tpl.Graph.Steps
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) putTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid template payload", "err", err)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		http.Error(w, fmt.Sprintf("Invalid template: %v", err), http.StatusBadRequest)
		return
	}

	g := domain.NewFormGraph()
	g.RootStepID = payload.Root
	if payload.Steps != nil {
		g.Steps = payload.Steps
	}
	for stepID, step := range g.Steps {
		if step != nil && step.ID == "" {
			step.ID = stepID
		}
	}

	if err := s.templates.Save(r.Context(), id, &ports.Template{Name: payload.Name, Graph: g}); err != nil {
		s.logger.Error("failed to save template", "template", id, "err", err)
		http.Error(w, "Failed to save template", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lintTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}

	report := latticevalidator.Validate(tpl.Graph)
	type finding struct {
		Severity string `json:"severity"`
		StepID   string `json:"stepId,omitempty"`
		Message  string `json:"message"`
	}
	findings := make([]finding, len(report.Findings))
	for i, f := range report.Findings {
		findings[i] = finding{Severity: string(f.Severity), StepID: f.StepID, Message: f.Message}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       !report.HasErrors(),
		"findings": findings,
	})
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, traversal.BuildTree(tpl.Graph))
}

func (s *Server) getMermaid(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.loadTemplate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(tpl.Graph, nil))
}

func (s *Server) getInventory(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	statuses, err := s.inventory.FetchStatus(r.Context(), formID)
	if err != nil {
		s.logger.Error("failed to fetch inventory", "form", formID, "err", err)
		http.Error(w, "Failed to fetch inventory", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}

// submissionPayload is the wire form of a completed fill session.
type submissionPayload struct {
	ID            string          `json:"id"`
	FormID        string          `json:"formId" validate:"required"`
	CustomerName  string          `json:"customerName" validate:"required"`
	CustomerPhone string          `json:"customerPhone" validate:"required"`
	Answers       []domain.Answer `json:"answers"`
}

func (s *Server) postSubmission(w http.ResponseWriter, r *http.Request) {
	var payload submissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid submission payload", "err", err)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		http.Error(w, fmt.Sprintf("Invalid submission: %v", err), http.StatusBadRequest)
		return
	}

	sub := &domain.Submission{
		ID:            payload.ID,
		FormID:        payload.FormID,
		CustomerName:  payload.CustomerName,
		CustomerPhone: payload.CustomerPhone,
		Answers:       payload.Answers,
	}
	if err := s.sink.Submit(r.Context(), sub); err != nil {
		if s.metrics != nil {
			s.metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		}
		if domain.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.logger.Error("submission rejected by sink", "form", payload.FormID, "err", err)
		http.Error(w, "Failed to accept submission", http.StatusBadGateway)
		return
	}
	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": sub.ID})
}

func (s *Server) loadTemplate(w http.ResponseWriter, r *http.Request) (*ports.Template, bool) {
	id := chi.URLParam(r, "id")
	tpl, err := s.templates.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			http.Error(w, "Template not found", http.StatusNotFound)
			return nil, false
		}
		s.logger.Error("failed to load template", "template", id, "err", err)
		http.Error(w, "Failed to load template", http.StatusInternalServerError)
		return nil, false
	}
	return tpl, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
