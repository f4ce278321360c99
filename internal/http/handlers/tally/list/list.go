// Package list implements the HTTP handler that lists the stored
// tallies, ordered by collection date, without their serialized
// contents.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/clubkasse/membership-tally/internal/http/response"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/models"
)

// Handler serves tally listing requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the tally surface needed by the handler.
type Service interface {
	List(ctx context.Context) ([]models.Tally, error)
}

// New creates a tally listing handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List tallies
// @Description Returns the stored tallies ordered by collection date, without contents.
// @Tags Tallies
// @Produce  json
// @Success 200 {object} map[string]any "Tally list"
// @Failure 500 {object} response.ErrorResponse "Listing failed"
// @Router /tallies [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tally.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tallies, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list tallies", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tallies"))
		return
	}

	items := make([]map[string]any, 0, len(tallies))
	for _, t := range tallies {
		items = append(items, map[string]any{
			"tally_id":        t.ID,
			"creation_time":   t.CreationTime.Format(time.RFC3339),
			"collection_date": t.CollectionDate.Format("2006-01-02"),
			"total_amount":    t.TotalAmount.StringFixed(2),
		})
	}

	log.Info("tallies listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"tallies": items,
	}))
}
