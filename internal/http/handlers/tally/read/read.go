// Package read implements the HTTP handler that fetches one tally
// including its decompressed SEPA message.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/clubkasse/membership-tally/internal/http/response"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/models"
)

// Handler serves single-tally requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the tally surface needed by the handler.
type Service interface {
	Read(ctx context.Context, id int64) (*models.Tally, string, error)
}

// New creates a tally read handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Read one tally
// @Description Returns one tally with its serialized direct-debit message.
// @Tags Tallies
// @Produce  json
// @Param id path int true "Tally id"
// @Success 200 {object} map[string]any "Tally with contents"
// @Failure 400 {object} response.ErrorResponse "Malformed id"
// @Failure 404 {object} response.ErrorResponse "Tally not found"
// @Failure 500 {object} response.ErrorResponse "Read failed"
// @Router /tallies/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tally.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	tally, contents, err := h.service.Read(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrTallyNotFound):
		log.Error("tally not found", slog.Int64("tally_id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("tally not found"))
		return
	case err != nil:
		log.Error("failed to read tally", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read tally"))
		return
	}

	log.Info("tally read", slog.Int64("tally_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"tally_id":        tally.ID,
		"creation_time":   tally.CreationTime.Format(time.RFC3339),
		"collection_date": tally.CollectionDate.Format("2006-01-02"),
		"total_amount":    tally.TotalAmount.StringFixed(2),
		"contents":        contents,
	}))
}
