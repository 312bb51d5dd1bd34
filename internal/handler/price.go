package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"marketpulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPrice godoc
// @Summary      Get latest price snapshot
// @Description  Returns the current quote with 24h change and volume
// @Tags         prices
// @Produce      json
// @Param        ticker  path  string  true  "Asset ticker (e.g., BTC, ETH)"
// @Success      200  {object}  domain.PriceSnapshot
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/prices/{ticker} [get]
func (h *Handler) GetPrice(c *gin.Context) {
	if h.priceService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	snap, err := h.priceService.GetSnapshot(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedTicker) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "unsupported ticker: " + ticker,
				"supported_tickers": domain.SupportedTickers,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetPriceHistory godoc
// @Summary      Get stored price history
// @Description  Returns up to limit recent price samples, oldest first
// @Tags         prices
// @Produce      json
// @Param        ticker  path   string  true   "Asset ticker (e.g., BTC, ETH)"
// @Param        limit   query  int     false  "Number of samples (default 200, max 1000)"  default(200)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/prices/{ticker}/history [get]
func (h *Handler) GetPriceHistory(c *gin.Context) {
	if h.priceService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price-history")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	limit := 0
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}

	series, err := h.priceService.GetSeries(ctx, ticker, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedTicker) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "unsupported ticker: " + ticker,
				"supported_tickers": domain.SupportedTickers,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "samples": series})
}
