package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/fmp-tool-server/internal/model"
	"github.com/yourorg/fmp-tool-server/internal/service"
	"github.com/yourorg/fmp-tool-server/internal/tools"
)

// FinancialHandler serves the financial data operations as JSON over HTTP
type FinancialHandler struct {
	data   tools.FinancialData
	logger *zap.Logger
}

// NewFinancialHandler creates a new financial data handler
func NewFinancialHandler(data tools.FinancialData, logger *zap.Logger) *FinancialHandler {
	return &FinancialHandler{
		data:   data,
		logger: logger,
	}
}

// RegisterRoutes mounts the handler on a router group
func (h *FinancialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	symbols := rg.Group("/symbols/:symbol")
	{
		symbols.GET("/eps-surprise", h.GetEPSSurprise)
		symbols.GET("/rsi", h.GetIndicator(model.IndicatorRSI, "RSI data"))
		symbols.GET("/sma", h.GetIndicator(model.IndicatorSMA, "SMA data"))
		symbols.GET("/price-targets", h.GetPriceTargets)
		symbols.GET("/insider-trading", h.GetInsiderTrading)
	}
	rg.GET("/earnings-calendar", h.GetEarningsCalendar)
}

// GetEPSSurprise handles retrieving earnings surprises for a symbol
// GET /api/v1/symbols/:symbol/eps-surprise
func (h *FinancialHandler) GetEPSSurprise(c *gin.Context) {
	records, err := h.data.GetEPSSurprise(c.Request.Context(), model.SymbolQuery{Symbol: c.Param("symbol")})
	if err != nil {
		h.sendError(c, service.OpEPSSurprise, "EPS surprise data", c.Param("symbol"), err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetIndicator handles retrieving a technical indicator series for a symbol
// GET /api/v1/symbols/:symbol/rsi
// GET /api/v1/symbols/:symbol/sma
func (h *FinancialHandler) GetIndicator(indicator, description string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := model.NewIndicatorQuery(c.Param("symbol"), indicator)
		if err := c.ShouldBindQuery(&req); err != nil {
			h.sendError(c, "get_"+indicator, description, c.Param("symbol"), &model.InputError{Err: err})
			return
		}
		// The path decides the indicator, not the query
		req.Symbol, req.Indicator = c.Param("symbol"), indicator

		series, err := h.data.GetTechnicalIndicator(c.Request.Context(), req)
		if err != nil {
			h.sendError(c, "get_"+indicator, description, req.Symbol, err)
			return
		}
		c.JSON(http.StatusOK, series)
	}
}

// GetPriceTargets handles retrieving the analyst consensus for a symbol
// GET /api/v1/symbols/:symbol/price-targets
func (h *FinancialHandler) GetPriceTargets(c *gin.Context) {
	consensus, err := h.data.GetPriceTargets(c.Request.Context(), model.SymbolQuery{Symbol: c.Param("symbol")})
	if err != nil {
		h.sendError(c, service.OpPriceTargets, "price target data", c.Param("symbol"), err)
		return
	}
	c.JSON(http.StatusOK, consensus)
}

// GetInsiderTrading handles retrieving insider transactions for a symbol
// GET /api/v1/symbols/:symbol/insider-trading
func (h *FinancialHandler) GetInsiderTrading(c *gin.Context) {
	req := model.NewInsiderTradingQuery(c.Param("symbol"))
	if err := c.ShouldBindQuery(&req); err != nil {
		h.sendError(c, service.OpInsiderTrading, "insider trading data", c.Param("symbol"), &model.InputError{Err: err})
		return
	}
	req.Symbol = c.Param("symbol")

	records, err := h.data.GetInsiderTrading(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, service.OpInsiderTrading, "insider trading data", req.Symbol, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetEarningsCalendar handles retrieving earnings events
// GET /api/v1/earnings-calendar
func (h *FinancialHandler) GetEarningsCalendar(c *gin.Context) {
	var req model.EarningsCalendarQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		h.sendError(c, service.OpEarningsCalendar, "earnings calendar data", c.Query("symbol"), &model.InputError{Err: err})
		return
	}

	events, err := h.data.GetEarningsCalendar(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, service.OpEarningsCalendar, "earnings calendar data", req.Symbol, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *FinancialHandler) sendError(c *gin.Context, operation, description, symbol string, err error) {
	resp := model.NewErrorResponse(description, err)
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("symbol", symbol),
		zap.String("path", c.FullPath()),
		zap.Int("status", resp.Status),
		zap.Error(err),
	}
	if resp.Status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Warn("Request rejected", fields...)
	}
	c.JSON(resp.Status, resp)
}
