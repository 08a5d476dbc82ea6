package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"npi-gateway/internal/lookup/models"
	"npi-gateway/internal/lookup/upstream"
	dErrors "npi-gateway/pkg/domain-errors"
	"npi-gateway/pkg/platform/httputil"
	"npi-gateway/pkg/requestcontext"
)

// Service defines the interface for lookup operations.
type Service interface {
	Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error)
}

// Handler wires the lookup endpoint to the lookup service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a lookup handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts lookup endpoints on the router. The GET form exists for
// callers that predate the JSON body.
func (h *Handler) Register(r chi.Router) {
	r.Post("/check-npi", h.HandleCheckNPI)
	r.Get("/check-npi", h.HandleCheckNPIQuery)
}

// HandleCheckNPI handles POST /check-npi requests.
func (h *Handler) HandleCheckNPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeAndPrepare[CheckNPIRequest](r, h.logger, ctx, requestID)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.lookup(w, r, models.LookupRequest{
		Identifier: req.Identifier,
		Metadata:   req.Metadata,
	})
}

// HandleCheckNPIQuery handles GET /check-npi?number= requests.
func (h *Handler) HandleCheckNPIQuery(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, models.LookupRequest{
		Identifier: r.URL.Query().Get("number"),
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, req models.LookupRequest) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	result, err := h.service.Lookup(ctx, req)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.logger.InfoContext(ctx, "lookup completed",
		"request_id", requestID,
		"outcome", string(result.Outcome),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// writeFailure maps coded errors into the response envelope. The reason code
// lets callers distinguish input problems (do not retry) from upstream ones
// (safe to retry later).
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))

	var reason string
	switch {
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		reason = "invalid_input"
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		reason = string(upstream.ErrorTimeout)
	case dErrors.HasCode(err, dErrors.CodeUpstream):
		reason = string(upstream.CategoryOf(err))
	default:
		reason = string(dErrors.CodeInternal)
	}

	httputil.WriteJSON(w, status, errorResponse(reason))
}
