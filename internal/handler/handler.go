// Package handler exposes the projection service over HTTP: a JSON API and server-rendered
// HTML forms.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/internal/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ProjectionService is the behaviour the handlers need from service.ProjectionService.
type ProjectionService interface {
	Project(ctx context.Context, req domain.ProjectionRequest) (domain.ProjectionResult, error)
	SavingsGoal(ctx context.Context, req domain.SavingsGoalRequest) (domain.SavingsGoalResult, error)
	AnnualSavings(ctx context.Context, in domain.AnnualSavingsInput) (domain.AnnualSavingsResult, error)
	FlagStatus(ctx context.Context) service.FlagStatus
	InflationEnabled(ctx context.Context) bool
}

type Handler struct {
	svc ProjectionService
	log logrus.FieldLogger
}

func NewHandler(svc ProjectionService, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Router registers every route. limiter may be nil to disable rate limiting.
func (h *Handler) Router(limiter *RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog(h.log), Recover(h.log))

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	if limiter != nil {
		api.Use(limiter.Middleware)
	}
	api.HandleFunc("/", h.Index).Methods(http.MethodGet)
	api.HandleFunc("/", h.SubmitProjection).Methods(http.MethodPost)
	api.HandleFunc("/annual-savings", h.AnnualSavingsForm).Methods(http.MethodGet)
	api.HandleFunc("/annual-savings", h.SubmitAnnualSavings).Methods(http.MethodPost)
	api.HandleFunc("/calculate", h.Calculate).Methods(http.MethodPost)
	api.HandleFunc("/savings-goal", h.SavingsGoal).Methods(http.MethodPost)
	api.HandleFunc("/check-feature-flag", h.CheckFeatureFlag).Methods(http.MethodGet)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// Calculate handles POST /calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.ProjectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.Project(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SavingsGoal handles POST /savings-goal.
func (h *Handler) SavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req domain.SavingsGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.SavingsGoal(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckFeatureFlag handles GET /check-feature-flag.
func (h *Handler) CheckFeatureFlag(w http.ResponseWriter, r *http.Request) {
	status := h.svc.FlagStatus(r.Context())
	code := http.StatusOK
	if status.Error != nil {
		entry(h.log, r).WithField("error", *status.Error).Error("feature flag check failed")
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, status)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps input errors to 400 and everything else to 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsInvalidInput(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	entry(h.log, r).WithError(err).Error("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// decodeJSON reads a single JSON document. Malformed bodies, including non-numeric values in
// numeric fields, are reported as invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &domain.InputError{Reason: "request body too large"}
		}
		if errors.Is(err, io.EOF) {
			return &domain.InputError{Reason: "request body is empty"}
		}
		return &domain.InputError{Reason: "malformed JSON: " + err.Error()}
	}
	return nil
}
