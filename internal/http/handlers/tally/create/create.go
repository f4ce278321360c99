// Package create implements the HTTP handler for assembling a new
// direct-debit tally.
//
// The handler takes the requested collection date, runs the tally
// assembly and returns the committed tally record. Creating a tally
// collects outstanding one-time fees, so repeating the request is not
// idempotent.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/clubkasse/membership-tally/internal/http/response"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/models"
)

// Request names the collection date of the new batch.
type Request struct {
	CollectionDate string `json:"collection_date" validate:"required,datetime=2006-01-02"`
}

// Handler serves tally creation requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the tally surface needed by the handler.
type Service interface {
	Create(ctx context.Context, collectionDate time.Time) (*models.Tally, error)
}

// New creates a tally creation handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Create a direct-debit tally
// @Description Computes every member's due, renders the SEPA message and commits the tally. Collected one-time fees are archived.
// @Tags Tallies
// @Accept  json
// @Produce  json
// @Param request body Request true "Collection date"
// @Success 200 {object} map[string]any "Committed tally"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failure or incomplete mandate"
// @Failure 500 {object} response.ErrorResponse "Assembly failed"
// @Router /tallies [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tally.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	collectionDate, _ := time.Parse("2006-01-02", req.CollectionDate)

	result, err := h.service.Create(r.Context(), collectionDate)
	switch {
	case errors.Is(err, models.ErrIncompleteMandate):
		log.Error("tally aborted on incomplete mandate", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, models.ErrOutputDirMissing):
		log.Error("tally output directory missing", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("tally output directory does not exist"))
		return
	case err != nil:
		log.Error("failed to create tally", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create tally"))
		return
	}

	log.Info("tally created", slog.Int64("tally_id", result.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"tally_id":        result.ID,
		"creation_time":   result.CreationTime.Format(time.RFC3339),
		"collection_date": result.CollectionDate.Format("2006-01-02"),
		"total_amount":    result.TotalAmount.StringFixed(2),
	}))
}
