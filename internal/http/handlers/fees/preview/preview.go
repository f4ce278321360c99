// Package preview implements the HTTP handler that previews one
// member's dues: the discounted monthly fee and the total including
// outstanding one-time fees.
package preview

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
	"github.com/shopspring/decimal"

	"github.com/clubkasse/membership-tally/internal/http/response"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/models"
)

// Handler serves fee preview requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the fee surface needed by the handler.
type Service interface {
	MonthlyFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error)
	TotalFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error)
}

// New creates a fee preview handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Preview a member's dues
// @Description Returns the member's discounted monthly fee and the total including outstanding one-time fees. The optional date query parameter (2006-01-02) selects the computation date; it defaults to today.
// @Tags Fees
// @Produce  json
// @Param id path int true "Member id"
// @Param date query string false "Computation date"
// @Success 200 {object} map[string]any "Fee preview"
// @Failure 400 {object} response.ErrorResponse "Malformed id or date"
// @Failure 404 {object} response.ErrorResponse "Member not found"
// @Failure 500 {object} response.ErrorResponse "Computation failed"
// @Router /members/{id}/fees [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fees.preview"

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

	at := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		at, err = time.Parse("2006-01-02", raw)
		if err != nil {
			log.Error("failed to parse date", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("date must be in format 2006-01-02"))
			return
		}
	}

	monthly, err := h.service.MonthlyFee(r.Context(), memberID, at)
	if err == nil {
		var total decimal.Decimal
		total, err = h.service.TotalFee(r.Context(), memberID, at)
		if err == nil {
			log.Info("fees previewed", slog.Int64("member_id", memberID))
			render.JSON(w, r, response.OKWithData(map[string]any{
				"member_id":   memberID,
				"date":        at.Format("2006-01-02"),
				"monthly_fee": monthly.StringFixed(2),
				"total_fee":   total.StringFixed(2),
			}))
			return
		}
	}

	if errors.Is(err, models.ErrMemberNotFound) {
		log.Error("member not found", slog.Int64("member_id", memberID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("member not found"))
		return
	}
	log.Error("failed to compute fees", sl.Err(err))
	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, response.Error("could not compute fees"))
}
