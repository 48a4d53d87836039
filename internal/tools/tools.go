package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yourorg/fmp-tool-server/internal/model"
	"github.com/yourorg/fmp-tool-server/internal/service"
)

func epsSurpriseTool() mcp.Tool {
	return mcp.NewTool(service.OpEPSSurprise,
		mcp.WithDescription("Get earnings surprise data for a symbol. Returns actual vs. estimated EPS and surprise percentage per reported quarter. Critical for post-earnings-announcement drift (PEAD) strategies."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("The stock symbol to fetch earnings surprise data for"),
		),
	)
}

func indicatorTool(name, label string, defaultPeriod int) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription("Get "+label+" data for a symbol. Returns values over the requested date range, oldest first. Useful for technical analysis and backtesting."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("The stock symbol to fetch "+label+" data for"),
		),
		mcp.WithNumber("time_period",
			mcp.Description("Time period for the calculation"),
			mcp.DefaultNumber(float64(defaultPeriod)),
			mcp.Min(1),
		),
		mcp.WithString("from_date",
			mcp.Description("Start date in YYYY-MM-DD format (default: 100 days before to_date)"),
		),
		mcp.WithString("to_date",
			mcp.Description("End date in YYYY-MM-DD format (default: today)"),
		),
	)
}

func rsiTool() mcp.Tool {
	return indicatorTool(service.OpRSI, "Relative Strength Index (RSI)", model.DefaultRSIPeriod)
}

func smaTool() mcp.Tool {
	return indicatorTool(service.OpSMA, "Simple Moving Average (SMA)", model.DefaultSMAPeriod)
}

func priceTargetsTool() mcp.Tool {
	return mcp.NewTool(service.OpPriceTargets,
		mcp.WithDescription("Get analyst price target consensus for a symbol. Returns consensus, high and low targets, the number of analysts and, when available, individual analyst ratings. Important for long-term risk filters and analyst extreme detection."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("The stock symbol to fetch price targets for"),
		),
	)
}

func insiderTradingTool() mcp.Tool {
	return mcp.NewTool(service.OpInsiderTrading,
		mcp.WithDescription("Get insider trading data for a symbol. Returns recent insider transactions including type, price and value. Useful for news-halt heuristics on large insider sales."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("The stock symbol to fetch insider trading data for"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination"),
			mcp.DefaultNumber(model.DefaultInsiderPage),
			mcp.Min(0),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of results per page"),
			mcp.DefaultNumber(model.DefaultInsiderLimit),
			mcp.Min(1),
		),
	)
}

func earningsCalendarTool() mcp.Tool {
	return mcp.NewTool(service.OpEarningsCalendar,
		mcp.WithDescription("Get earnings calendar events. Returns earnings events in the requested date range, optionally for a single symbol. Useful for PEAD strategies and volatility forecasting."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("from_date",
			mcp.Description("Start date in YYYY-MM-DD format (default: today)"),
		),
		mcp.WithString("to_date",
			mcp.Description("End date in YYYY-MM-DD format (default: 30 days from today)"),
		),
		mcp.WithString("symbol",
			mcp.Description("Filter by specific symbol"),
		),
	)
}
