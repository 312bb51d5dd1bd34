package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"marketpulse/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, prices PriceReader, analyses AnalysisReaderWriter) {
	server.AddResource(&mcp.Resource{
		URI:         "market://supported-tickers",
		Name:        "supported-tickers",
		Description: "List of tickers supported by the service",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedTickers)
	})

	server.AddResource(&mcp.Resource{
		URI:         "market://analysis-modes",
		Name:        "analysis-modes",
		Description: "List of analysis modes supported by the scoring engine",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedModes)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "prices://ticker/{ticker}",
		Name:        "price-by-ticker",
		Description: "Latest price snapshot for a specific ticker",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if prices == nil {
			return nil, fmt.Errorf("price service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "prices" || parsed.Host != "ticker" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		ticker := strings.Trim(strings.TrimSpace(parsed.Path), "/")
		ticker, err = normalizeTicker(ticker)
		if err != nil {
			return nil, err
		}

		snapshot, err := prices.GetSnapshot(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, pricesGetByTickerOutput{Price: snapshot})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "prices://history/{ticker}{?limit}",
		Name:        "price-history-by-ticker",
		Description: "Stored hourly price samples for a ticker; optional limit query param",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if prices == nil {
			return nil, fmt.Errorf("price service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "prices" || parsed.Host != "history" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		ticker, err := normalizeTicker(strings.Trim(strings.TrimSpace(parsed.Path), "/"))
		if err != nil {
			return nil, err
		}

		limit := defaultSeriesLimit
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			limit = normalizeSeriesLimit(n)
		}

		series, err := prices.GetSeries(ctx, ticker, limit)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, pricesHistoryOutput{Ticker: ticker, Samples: series})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "analyses://latest{?ticker,mode,tier,limit}",
		Name:        "analyses-latest",
		Description: "Recent stored analyses with optional ticker/mode/tier/limit query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if analyses == nil {
			return nil, fmt.Errorf("analysis service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "analyses" || parsed.Host != "latest" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		input := analysesListInput{
			Ticker: parsed.Query().Get("ticker"),
			Mode:   parsed.Query().Get("mode"),
			Tier:   parsed.Query().Get("tier"),
			Limit:  defaultAnalysisLimit,
		}
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			input.Limit = n
		}

		filter, err := normalizeAnalysisFilter(input)
		if err != nil {
			return nil, err
		}
		list, err := analyses.ListAnalyses(ctx, filter)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, analysesListOutput{Analyses: list})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
