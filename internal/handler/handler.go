package handler

import (
	"net/http"

	"marketpulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer          trace.Tracer
	priceService    *service.PriceService
	analysisService *service.AnalysisService
	advisorService  *service.AdvisorService
}

func New(
	tracer trace.Tracer,
	priceService *service.PriceService,
	analysisService *service.AnalysisService,
	advisorService *service.AdvisorService,
) *Handler {
	return &Handler{
		tracer:          tracer,
		priceService:    priceService,
		analysisService: analysisService,
		advisorService:  advisorService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/prices/:ticker", h.GetPrice)
	r.GET("/api/prices/:ticker/history", h.GetPriceHistory)
	r.GET("/api/analysis/:ticker", h.AnalyzeTicker)
	r.POST("/api/analysis/:ticker", h.AnalyzeWithPosition)
	r.GET("/api/analyses", h.ListAnalyses)
}

// Health godoc
// @Summary      Health check
// @Description  Returns service liveness
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
