// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/foliolabs/folio/internal/domain/model"
)

// defaultRecentLimit applies when GET /requests has no limit parameter.
const defaultRecentLimit = 20

// Service bundles the operations HTTP handlers need. Using an interface
// keeps the handler layer loosely coupled to the pipeline implementation.
type Service interface {
	// Submit accepts a request for asynchronous resolution.
	Submit(ctx context.Context, title, author, requester string) (model.Request, error)

	// Outcome returns the terminal outcome for a request id.
	Outcome(ctx context.Context, requestID string) (model.Outcome, error)

	// Recent returns up to n outcomes, newest first.
	Recent(ctx context.Context, n int) ([]model.Outcome, error)

	// Stats reports pipeline gauges.
	Stats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	requestsHandler *RequestsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(svc),
		requestsHandler: NewRequestsHandler(svc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/requests", MetricsMiddleware(s.requestsHandler.HandleRequests, "requests"))
	mux.HandleFunc("/requests/", MetricsMiddleware(s.requestsHandler.HandleGetRequest, "request"))
}

// submitRequest mirrors the schema for POST /requests.
type submitRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Requester string `json:"requester"`
}

func (r submitRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("missing title")
	}
	return nil
}

type ackResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// outcomeResponse mirrors the read shape returned by outcome queries.
type outcomeResponse struct {
	RequestID     string   `json:"request_id"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	Status        string   `json:"status"`
	Reason        string   `json:"reason,omitempty"`
	AuthorID      int64    `json:"author_id,omitempty"`
	AuthorName    string   `json:"author_name,omitempty"`
	BookID        int64    `json:"book_id,omitempty"`
	BookTitle     string   `json:"book_title,omitempty"`
	AuthorCreated bool     `json:"author_created,omitempty"`
	BookAdded     bool     `json:"book_added,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	CompletedAt   string   `json:"completed_at"`
}

func toOutcomeResponse(o model.Outcome) outcomeResponse {
	return outcomeResponse{
		RequestID:     o.RequestID,
		Title:         o.Title,
		Author:        o.Author,
		Status:        string(o.Status),
		Reason:        string(o.Reason),
		AuthorID:      o.AuthorID,
		AuthorName:    o.AuthorName,
		BookID:        o.BookID,
		BookTitle:     o.BookTitle,
		AuthorCreated: o.AuthorCreated,
		BookAdded:     o.BookAdded,
		Warnings:      o.Warnings,
		CompletedAt:   o.CompletedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
