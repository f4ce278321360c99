// Package set implements the HTTP handler that replaces a member's
// relatives with a new list. Relations are transitively closed, so the
// submitted relatives also become related to each other.
package set

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/clubkasse/membership-tally/internal/http/response"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
)

// Request carries the new list of relatives.
type Request struct {
	RelativeIDs []int64 `json:"relative_ids" validate:"required"`
}

// Handler serves relative replacement requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the relations surface needed by the handler.
type Service interface {
	SetRelatives(ctx context.Context, memberID int64, relativeIDs []int64) error
}

// New creates a relatives set handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Replace a member's relatives
// @Description Drops the member's existing relations and relates the member to every id in the list. The family discount follows the new relations.
// @Tags Relations
// @Accept  json
// @Produce  json
// @Param id path int true "Member id"
// @Param request body Request true "New relatives"
// @Success 200 {object} map[string]any "Relatives replaced"
// @Failure 400 {object} response.ErrorResponse "Malformed id or JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Update failed"
// @Router /members/{id}/relatives [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.relations.set"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.SetRelatives(r.Context(), memberID, req.RelativeIDs); err != nil {
		log.Error("failed to set relatives", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set relatives"))
		return
	}

	log.Info("relatives replaced",
		slog.Int64("member_id", memberID),
		slog.Int("count", len(req.RelativeIDs)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"member_id":    memberID,
		"relative_ids": req.RelativeIDs,
	}))
}
