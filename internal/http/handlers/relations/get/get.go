// Package get implements the HTTP handler that lists a member's
// relatives.
package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/clubkasse/membership-tally/internal/http/response"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
)

// Handler serves relative listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the relations surface needed by the handler.
type Service interface {
	Relatives(ctx context.Context, memberID int64) ([]int64, error)
}

// New creates a relatives listing handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List a member's relatives
// @Description Returns the ids of all members related to the given one.
// @Tags Relations
// @Produce  json
// @Param id path int true "Member id"
// @Success 200 {object} map[string]any "Relative ids"
// @Failure 400 {object} response.ErrorResponse "Malformed id"
// @Failure 500 {object} response.ErrorResponse "Lookup failed"
// @Router /members/{id}/relatives [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.relations.get"

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

	relativeIDs, err := h.service.Relatives(r.Context(), memberID)
	if err != nil {
		log.Error("failed to list relatives", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list relatives"))
		return
	}

	log.Info("relatives listed", slog.Int64("member_id", memberID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"member_id":    memberID,
		"relative_ids": relativeIDs,
	}))
}
