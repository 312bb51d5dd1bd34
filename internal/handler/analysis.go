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

type analyzeRequest struct {
	Mode     domain.AnalysisMode  `json:"mode"`
	Position *domain.UserPosition `json:"position"`
}

// AnalyzeTicker godoc
// @Summary      Run a market analysis
// @Description  Scores the ticker across trend, momentum, volatility and volume layers
// @Tags         analysis
// @Produce      json
// @Param        ticker     path   string  true   "Asset ticker (e.g., BTC, ETH)"
// @Param        mode       query  string  false  "Analysis mode (long_term, swing, day_trade)"  default(swing)
// @Param        narrative  query  bool    false  "Include an LLM-written narrative"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analysis/{ticker} [get]
func (h *Handler) AnalyzeTicker(c *gin.Context) {
	mode := domain.AnalysisMode(strings.ToLower(strings.TrimSpace(c.Query("mode"))))
	h.runAnalysis(c, mode, nil)
}

// AnalyzeWithPosition godoc
// @Summary      Run a position-aware market analysis
// @Description  Same scoring as GET, with the suggested action adjusted for the caller's holdings
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        ticker   path  string          true  "Asset ticker (e.g., BTC, ETH)"
// @Param        request  body  analyzeRequest  true  "Mode and optional position"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analysis/{ticker} [post]
func (h *Handler) AnalyzeWithPosition(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.runAnalysis(c, req.Mode, req.Position)
}

func (h *Handler) runAnalysis(c *gin.Context, mode domain.AnalysisMode, pos *domain.UserPosition) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker), attribute.String("mode", string(mode)))

	result, err := h.analysisService.Analyze(ctx, ticker, mode, pos)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedTicker):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "unsupported ticker: " + ticker,
				"supported_tickers": domain.SupportedTickers,
			})
		case errors.Is(err, domain.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be one of long_term, swing, day_trade"})
		case errors.Is(err, domain.ErrMissingData):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient market data for " + ticker})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if c.Query("narrative") == "true" && h.advisorService != nil && h.advisorService.Enabled() {
		if narrative, err := h.advisorService.Narrate(ctx, result); err == nil {
			result.Explanation = narrative
		}
	}

	c.JSON(http.StatusOK, result)
}

// ListAnalyses godoc
// @Summary      List stored analyses
// @Description  Returns recent analysis results, optionally filtered by ticker/mode/tier
// @Tags         analysis
// @Produce      json
// @Param        ticker  query  string  false  "Asset ticker (e.g., BTC, ETH)"
// @Param        mode    query  string  false  "Analysis mode (long_term, swing, day_trade)"
// @Param        tier    query  string  false  "Recommendation tier (strong_buy, buy, neutral, take_profit, strong_sell, high_risk_avoid)"
// @Param        limit   query  int     false  "Number of results (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analyses [get]
func (h *Handler) ListAnalyses(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-analyses")
	defer span.End()

	filter := domain.AnalysisFilter{
		Ticker: strings.ToUpper(strings.TrimSpace(c.Query("ticker"))),
		Mode:   domain.AnalysisMode(strings.ToLower(strings.TrimSpace(c.Query("mode")))),
		Tier:   domain.Tier(strings.ToLower(strings.TrimSpace(c.Query("tier")))),
	}
	if filter.Ticker != "" {
		span.SetAttributes(attribute.String("ticker", filter.Ticker))
	}
	if filter.Tier != "" && !filter.Tier.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier: " + string(filter.Tier)})
		return
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	analyses, err := h.analysisService.ListAnalyses(ctx, filter)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedTicker) || errors.Is(err, domain.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}
