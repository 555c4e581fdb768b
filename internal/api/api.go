// Package api exposes the people listing and submission endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maloquacious/roster/internal/metrics"
	"github.com/maloquacious/roster/internal/people"
)

// maxBodyBytes bounds a POST /api/people body.
const maxBodyBytes = 64 << 10

const (
	msgInvalidJSON = "Invalid JSON payload"
	msgInternal    = "internal server error"
)

// PeopleStore is the part of the datastore the handlers need.
type PeopleStore interface {
	Insert(ctx context.Context, rec people.Record) (people.Person, error)
	ListAll(ctx context.Context) ([]people.Person, error)
}

// Handler serves /api/people.
type Handler struct {
	store   PeopleStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New constructs a Handler. A nil m disables metrics.
func New(store PeopleStore, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{store: store, metrics: m, logger: logger}
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/people", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
	})
}

type listResponse struct {
	People []people.Person `json:"people"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListAll(r.Context())
	if err != nil {
		h.storageFailure(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{People: list})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		h.logger.DebugContext(r.Context(), "rejecting malformed body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return
	}

	rec, err := people.Validate(fields)
	if err != nil {
		var verr *people.ValidationError
		if errors.As(err, &verr) {
			if h.metrics != nil {
				h.metrics.IncrementPeopleRejected(verr.Field)
			}
			h.logger.InfoContext(r.Context(), "person rejected", "field", verr.Field, "reason", verr.Reason)
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	person, err := h.store.Insert(r.Context(), rec)
	if err != nil {
		h.storageFailure(w, r, "insert", err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementPeopleCreated()
	}
	h.logger.InfoContext(r.Context(), "person created", "id", person.ID)
	writeJSON(w, http.StatusCreated, person)
}

// storageFailure logs the detail and answers with a generic message.
func (h *Handler) storageFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.metrics != nil {
		h.metrics.IncrementStorageFailures(op)
	}
	h.logger.ErrorContext(r.Context(), "storage failure", "op", op, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
}

// decodeFields reads a single JSON object from the body.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	// trailing bytes after the object fail here too
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("body is not a JSON object")
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
