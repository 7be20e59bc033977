// Package handler wires the subscription endpoints to the subscription
// service. Responses carry status codes only; bodies stay empty so callers
// never depend on an error payload shape.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bulletin/internal/platform/middleware"
	dErrors "bulletin/pkg/domain-errors"
)

// Service defines the subscription operations the handler depends on.
type Service interface {
	Register(ctx context.Context, rawName, rawEmail string) error
	Confirm(ctx context.Context, token string) error
}

// Handler serves the public subscription endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a subscription handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the subscription endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health_check", h.HandleHealthCheck)
	r.Post("/subscriptions", h.HandleSubscribe)
	r.Get("/subscriptions/confirm", h.HandleConfirm)
}

// HandleHealthCheck handles GET /health_check requests.
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleSubscribe handles POST /subscriptions form submissions.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "malformed subscription form",
			"request_id", requestID,
			"error", err,
		)
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "malformed form data"))
		return
	}

	name := r.PostForm.Get("name")
	email := r.PostForm.Get("email")

	if err := h.service.Register(ctx, name, email); err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.WarnContext(ctx, "subscription rejected",
				"request_id", requestID,
				"error", err,
			)
		} else {
			h.logger.ErrorContext(ctx, "subscription failed",
				"request_id", requestID,
				"error", err,
			)
		}
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "new subscriber registered",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.WriteHeader(http.StatusOK)
}

// HandleConfirm handles GET /subscriptions/confirm requests.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	token := r.URL.Query().Get("subscription_token")

	if err := h.service.Confirm(ctx, token); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "confirmation rejected",
				"request_id", requestID,
				"error", err,
			)
		} else {
			h.logger.ErrorContext(ctx, "confirmation failed",
				"request_id", requestID,
				"error", err,
			)
		}
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "subscription confirmed",
		"request_id", requestID,
	)
	w.WriteHeader(http.StatusOK)
}

// writeError maps the error's code to a status and sends an empty body.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	w.WriteHeader(dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
}
