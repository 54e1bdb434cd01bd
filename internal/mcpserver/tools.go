package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"financegateway/internal/finance"
)

func (s *Server) handleQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbols, err := requireSymbols(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Quotes(ctx, symbols)
	if err != nil {
		return errorResult(err), nil
	}
	return aggregateResult(finance.SummarizeKeyed(result), result)
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbols, err := requireSymbols(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.History(ctx, symbols, finance.HistoryParams{
		Period:   req.GetString("period", finance.DefaultPeriod),
		Interval: req.GetString("interval", finance.DefaultInterval),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return aggregateResult(finance.SummarizeOrdered(result), result)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Search(ctx, query, finance.SearchParams{
		QuotesCount: req.GetInt("quotesCount", 0),
		NewsCount:   req.GetInt("newsCount", 0),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleTrending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	regions, err := finance.ParseRegions(req.GetString("regions", "US"))
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Trending(ctx, regions, req.GetInt("count", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return aggregateResult(finance.SummarizeKeyed(result), result)
}

func (s *Server) handleRecommendations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbols, err := requireSymbols(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Recommendations(ctx, symbols)
	if err != nil {
		return errorResult(err), nil
	}
	return aggregateResult(finance.SummarizeKeyed(result), result)
}

func (s *Server) handleInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbols, err := requireSymbols(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Insights(ctx, symbols)
	if err != nil {
		return errorResult(err), nil
	}
	return aggregateResult(finance.SummarizeKeyed(result), result)
}

func (s *Server) handleScreener(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scrType, err := req.RequireString("type")
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Screener(ctx, scrType, req.GetInt("count", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result)
}

func requireSymbols(req mcp.CallToolRequest) ([]string, error) {
	raw, err := req.RequireString("symbols")
	if err != nil {
		return nil, err
	}
	return finance.ParseSymbols(raw)
}
