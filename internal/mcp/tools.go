package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, prices PriceReader, analyses AnalysisReaderWriter) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "prices_get_by_ticker",
		Description: "Get the latest market snapshot for one ticker",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in pricesGetByTickerInput) (*mcp.CallToolResult, pricesGetByTickerOutput, error) {
		if prices == nil {
			return nil, pricesGetByTickerOutput{}, fmt.Errorf("price service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, pricesGetByTickerOutput{}, err
		}
		result, err := prices.GetSnapshot(ctx, ticker)
		if err != nil {
			return nil, pricesGetByTickerOutput{}, err
		}
		return nil, pricesGetByTickerOutput{Price: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "prices_history",
		Description: "Get stored hourly price samples for a ticker, oldest first",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in pricesHistoryInput) (*mcp.CallToolResult, pricesHistoryOutput, error) {
		if prices == nil {
			return nil, pricesHistoryOutput{}, fmt.Errorf("price service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, pricesHistoryOutput{}, err
		}
		limit := normalizeSeriesLimit(in.Limit)

		series, err := prices.GetSeries(ctx, ticker, limit)
		if err != nil {
			return nil, pricesHistoryOutput{}, err
		}
		return nil, pricesHistoryOutput{Ticker: ticker, Samples: series}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_ticker",
		Description: "Run the multi-factor scoring engine for a ticker and persist the result",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analyzeTickerInput) (*mcp.CallToolResult, analyzeTickerOutput, error) {
		if analyses == nil {
			return nil, analyzeTickerOutput{}, fmt.Errorf("analysis service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}
		mode, err := normalizeMode(in.Mode)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}

		result, err := analyses.Analyze(ctx, ticker, mode, in.Position)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}
		return nil, analyzeTickerOutput{Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyses_list",
		Description: "Get stored analyses with optional ticker, mode, and tier filters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analysesListInput) (*mcp.CallToolResult, analysesListOutput, error) {
		if analyses == nil {
			return nil, analysesListOutput{}, fmt.Errorf("analysis service unavailable")
		}
		filter, err := normalizeAnalysisFilter(in)
		if err != nil {
			return nil, analysesListOutput{}, err
		}
		result, err := analyses.ListAnalyses(ctx, filter)
		if err != nil {
			return nil, analysesListOutput{}, err
		}
		return nil, analysesListOutput{Analyses: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analysis_latest",
		Description: "Get the most recent stored analysis for a ticker and mode",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analysisLatestInput) (*mcp.CallToolResult, analysisLatestOutput, error) {
		if analyses == nil {
			return nil, analysisLatestOutput{}, fmt.Errorf("analysis service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, analysisLatestOutput{}, err
		}
		mode, err := normalizeMode(in.Mode)
		if err != nil {
			return nil, analysisLatestOutput{}, err
		}

		result, err := analyses.LatestAnalysis(ctx, ticker, mode)
		if err != nil {
			return nil, analysisLatestOutput{}, err
		}
		if result == nil {
			return nil, analysisLatestOutput{}, fmt.Errorf("no stored analysis for %s in %s mode", ticker, mode)
		}
		return nil, analysisLatestOutput{Result: result}, nil
	})
}
