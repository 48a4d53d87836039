package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yourorg/fmp-tool-server/internal/model"
	"github.com/yourorg/fmp-tool-server/internal/service"
)

const (
	ServerName    = "FMP MCP Server"
	ServerVersion = "1.0.0"
)

// FinancialData is the set of operations exposed as tools
type FinancialData interface {
	GetEPSSurprise(ctx context.Context, req model.SymbolQuery) ([]model.EarningsSurpriseRecord, error)
	GetTechnicalIndicator(ctx context.Context, req model.IndicatorQuery) (*model.IndicatorSeries, error)
	GetPriceTargets(ctx context.Context, req model.SymbolQuery) (*model.PriceTargetConsensus, error)
	GetInsiderTrading(ctx context.Context, req model.InsiderTradingQuery) ([]model.InsiderActivityRecord, error)
	GetEarningsCalendar(ctx context.Context, req model.EarningsCalendarQuery) ([]model.EarningsCalendarEvent, error)
}

var _ FinancialData = (*service.FinancialDataService)(nil)

// Registry binds financial data operations to MCP tools
type Registry struct {
	data   FinancialData
	logger *zap.Logger
}

// NewRegistry creates a new tool registry
func NewRegistry(data FinancialData, logger *zap.Logger) *Registry {
	return &Registry{
		data:   data,
		logger: logger,
	}
}

// NewServer creates an MCP server with every tool registered
func NewServer(r *Registry, opts ...server.ServerOption) *server.MCPServer {
	opts = append([]server.ServerOption{server.WithToolCapabilities(true)}, opts...)
	s := server.NewMCPServer(ServerName, ServerVersion, opts...)
	r.Register(s)
	return s
}

// Register adds the tools to an MCP server
func (r *Registry) Register(s *server.MCPServer) {
	s.AddTool(epsSurpriseTool(), r.handleEPSSurprise)
	s.AddTool(rsiTool(), r.handleIndicator(model.IndicatorRSI, "RSI data"))
	s.AddTool(smaTool(), r.handleIndicator(model.IndicatorSMA, "SMA data"))
	s.AddTool(priceTargetsTool(), r.handlePriceTargets)
	s.AddTool(insiderTradingTool(), r.handleInsiderTrading)
	s.AddTool(earningsCalendarTool(), r.handleEarningsCalendar)
}

func (r *Registry) handleEPSSurprise(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := model.SymbolQuery{Symbol: request.GetString("symbol", "")}
	records, err := r.data.GetEPSSurprise(ctx, req)
	return r.respond(service.OpEPSSurprise, "EPS surprise data", req.Symbol, records, err)
}

func (r *Registry) handleIndicator(indicator, description string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := model.NewIndicatorQuery(request.GetString("symbol", ""), indicator)
		req.TimePeriod = request.GetInt("time_period", req.TimePeriod)
		req.FromDate = request.GetString("from_date", "")
		req.ToDate = request.GetString("to_date", "")

		series, err := r.data.GetTechnicalIndicator(ctx, req)
		return r.respond("get_"+indicator, description, req.Symbol, series, err)
	}
}

func (r *Registry) handlePriceTargets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := model.SymbolQuery{Symbol: request.GetString("symbol", "")}
	consensus, err := r.data.GetPriceTargets(ctx, req)
	return r.respond(service.OpPriceTargets, "price target data", req.Symbol, consensus, err)
}

func (r *Registry) handleInsiderTrading(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := model.NewInsiderTradingQuery(request.GetString("symbol", ""))
	req.Page = request.GetInt("page", req.Page)
	req.Limit = request.GetInt("limit", req.Limit)

	records, err := r.data.GetInsiderTrading(ctx, req)
	return r.respond(service.OpInsiderTrading, "insider trading data", req.Symbol, records, err)
}

func (r *Registry) handleEarningsCalendar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := model.EarningsCalendarQuery{
		FromDate: request.GetString("from_date", ""),
		ToDate:   request.GetString("to_date", ""),
		Symbol:   request.GetString("symbol", ""),
	}
	events, err := r.data.GetEarningsCalendar(ctx, req)
	return r.respond(service.OpEarningsCalendar, "earnings calendar data", req.Symbol, events, err)
}

// respond renders a result as JSON text, or the uniform error body on failure.
// Operation failures are tool results, not protocol errors.
func (r *Registry) respond(operation, description, symbol string, result interface{}, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		resp := model.NewErrorResponse(description, err)
		r.logger.Error("Tool call failed",
			zap.String("operation", operation),
			zap.String("symbol", symbol),
			zap.Int("status", resp.Status),
			zap.Error(err))
		body, _ := json.Marshal(resp)
		return mcp.NewToolResultError(string(body)), nil
	}

	body, err := json.Marshal(result)
	if err != nil {
		r.logger.Error("Failed to encode tool result", zap.String("operation", operation), zap.String("symbol", symbol), zap.Error(err))
		body, _ = json.Marshal(model.NewErrorResponse(description, err))
		return mcp.NewToolResultError(string(body)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
