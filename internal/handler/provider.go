package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightscan/internal/mapper"
	"github.com/dharmasatrya/flightscan/internal/models"
	"github.com/dharmasatrya/flightscan/internal/providers"
	"github.com/dharmasatrya/flightscan/pkg/currency"
)

const checkOfferLimit = 50

// ProviderHandler serves a one-way, single-date search straight against the
// provider. It bypasses the orchestrator, cache and rate limiter and never books.
type ProviderHandler struct {
	provider providers.OfferProvider
	logger   *zap.Logger
}

func NewProviderHandler(provider providers.OfferProvider, logger *zap.Logger) *ProviderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderHandler{provider: provider, logger: logger}
}

// Check handles GET /duffel-test?origin=&destination=&departure=YYYY-MM-DD&passengers=.
func (h *ProviderHandler) Check(c echo.Context) error {
	var (
		origin, destination string
		departure           time.Time
		passengers          = 1
	)
	if err := echo.QueryParamsBinder(c).
		MustString("origin", &origin).
		MustString("destination", &destination).
		MustTime("departure", &departure, models.DateLayout).
		Int("passengers", &passengers).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "origin, destination and departure (YYYY-MM-DD) are required",
			Code:    http.StatusBadRequest,
		})
	}

	if !h.provider.Configured() {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "provider_not_configured",
			Message: h.provider.Name() + " is not configured",
			Code:    http.StatusInternalServerError,
		})
	}

	ctx := c.Request().Context()
	req := providers.OneWay(
		strings.ToUpper(strings.TrimSpace(origin)),
		strings.ToUpper(strings.TrimSpace(destination)),
		departure.Format(models.DateLayout),
		max(1, passengers),
		"BUSINESS",
	)

	id, err := h.provider.CreateOfferRequest(ctx, req)
	if err != nil {
		return h.providerError(c, err)
	}
	offers, err := h.provider.ListOffers(ctx, id, checkOfferLimit)
	if err != nil {
		return h.providerError(c, err)
	}

	summaries := make([]models.OfferSummary, len(offers))
	for i, o := range offers {
		code := o.TotalCurrency
		if code == "" {
			code = currency.DefaultCode
		}
		summaries[i] = models.OfferSummary{
			ID:          o.ID,
			Airline:     o.Owner.Name,
			AirlineCode: o.Owner.IATACode,
			Price:       mapper.ParsePrice(o.TotalAmount),
			Currency:    code,
		}
	}

	return c.JSON(http.StatusOK, models.ProviderCheckResponse{
		Status: models.StatusOK,
		Source: models.SourceProvider,
		Offers: summaries,
	})
}

func (h *ProviderHandler) providerError(c echo.Context, err error) error {
	h.logger.Warn("provider check failed", zap.String("provider", h.provider.Name()), zap.Error(err))

	status := http.StatusBadGateway
	if errors.Is(err, providers.ErrProviderUnavailable) {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, models.ErrorResponse{
		Error:   "provider_error",
		Message: err.Error(),
		Code:    status,
	})
}
