// Package mcpserver exposes the gateway operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"financegateway/internal/finance"
)

const serverName = "financegateway"

// Server registers the gateway tools on an MCP server.
type Server struct {
	svc    *finance.Service
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New creates the MCP server and registers every tool.
func New(svc *finance.Service, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc: svc,
		mcp: server.NewMCPServer(serverName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		logger: logger,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// HTTPHandler returns a streamable HTTP transport for mounting under path.
func (s *Server) HTTPHandler(path string) http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(path))
}

// ServeStdio serves JSON-RPC over in and out until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("serving MCP over stdio")
	return stdio.Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("get_quote",
		mcp.WithDescription("Get real-time quotes for one or more ticker symbols. Symbols that fail are reported with an error entry."),
		mcp.WithString("symbols",
			mcp.Required(),
			mcp.Description("Comma separated ticker symbols, e.g. AAPL,MSFT"),
		),
	), s.handleQuote)

	s.mcp.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Get historical price candles for one or more symbols, in the order given."),
		mcp.WithString("symbols",
			mcp.Required(),
			mcp.Description("Comma separated ticker symbols"),
		),
		mcp.WithString("period",
			mcp.Description("Lookback period"),
			mcp.Enum(finance.Periods...),
			mcp.DefaultString(finance.DefaultPeriod),
		),
		mcp.WithString("interval",
			mcp.Description("Candle interval"),
			mcp.Enum(finance.Intervals...),
			mcp.DefaultString(finance.DefaultInterval),
		),
	), s.handleHistory)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search for symbols and related news."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text, e.g. a company name"),
		),
		mcp.WithNumber("quotesCount",
			mcp.Description("Maximum symbol matches"),
			mcp.DefaultNumber(finance.DefaultSearchQuotes),
		),
		mcp.WithNumber("newsCount",
			mcp.Description("Maximum news items"),
			mcp.DefaultNumber(finance.DefaultSearchNews),
		),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("get_trending",
		mcp.WithDescription("Get trending symbols for one or more regions."),
		mcp.WithString("regions",
			mcp.Description("Comma separated region codes, e.g. US,GB"),
			mcp.DefaultString("US"),
		),
		mcp.WithNumber("count",
			mcp.Description("Symbols per region"),
			mcp.DefaultNumber(finance.DefaultTrendingCount),
		),
	), s.handleTrending)

	s.mcp.AddTool(mcp.NewTool("get_recommendations",
		mcp.WithDescription("Get symbols similar to each of the given symbols."),
		mcp.WithString("symbols",
			mcp.Required(),
			mcp.Description("Comma separated ticker symbols"),
		),
	), s.handleRecommendations)

	s.mcp.AddTool(mcp.NewTool("get_insights",
		mcp.WithDescription("Get research insights (outlook, valuation, significant developments) for symbols."),
		mcp.WithString("symbols",
			mcp.Required(),
			mcp.Description("Comma separated ticker symbols"),
		),
	), s.handleInsights)

	s.mcp.AddTool(mcp.NewTool("run_screener",
		mcp.WithDescription("Run a predefined stock screener."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Screener type"),
			mcp.Enum(finance.ScreenerTypes...),
		),
		mcp.WithNumber("count",
			mcp.Description("Maximum results"),
			mcp.DefaultNumber(finance.DefaultScreenerCount),
		),
	), s.handleScreener)
}

// aggregateResult renders an aggregate as JSON text. When every key failed
// the result is flagged as an error but still carries the per-key messages.
func aggregateResult(summary finance.Summary, body any) (*mcp.CallToolResult, error) {
	res, err := jsonResult(body)
	if err != nil {
		return nil, err
	}
	res.IsError = summary.AllFailed()
	return res, nil
}

func jsonResult(body any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
