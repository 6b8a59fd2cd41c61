package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/foliolabs/folio/internal/adapters/repository"
	"github.com/foliolabs/folio/internal/app"
)

// defaultMaxRecentLimit caps how many outcomes one listing may return.
const defaultMaxRecentLimit = 100

// RequestsHandler handles request submission and outcome queries.
type RequestsHandler struct {
	svc       Service
	maxRecent int
}

// NewRequestsHandler creates a new requests handler.
func NewRequestsHandler(svc Service) *RequestsHandler {
	return &RequestsHandler{svc: svc, maxRecent: defaultMaxRecentLimit}
}

// HandleRequests dispatches /requests by method: POST submits a request,
// GET lists recent outcomes.
func (h *RequestsHandler) HandleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.recent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// submit handles POST /requests. Accepted requests resolve asynchronously;
// the ack carries the id to poll.
func (h *RequestsHandler) submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", ErrBadRequest)
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	req, err := h.svc.Submit(r.Context(), body.Title, body.Author, body.Requester)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{ID: req.ID, Status: "accepted"})
	case errors.Is(err, app.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, app.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, app.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

// recent handles GET /requests?limit=N.
func (h *RequestsHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", ErrBadRequest)
			return
		}
		limit = n
	}
	if limit > h.maxRecent {
		limit = h.maxRecent
	}

	outcomes, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	out := make([]outcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, toOutcomeResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetRequest handles GET /requests/{id}. A request that has not
// reached a terminal state yet reports 404 with a pending hint.
func (h *RequestsHandler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/requests/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_id", ErrBadRequest)
		return
	}

	outcome, err := h.svc.Outcome(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toOutcomeResponse(outcome))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found",
			errors.New("no outcome for this id; the request is pending or unknown"))
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
