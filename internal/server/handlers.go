package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"financegateway/internal/finance"
)

type handlers struct {
	svc *finance.Service
}

// queryInt parses an optional integer query parameter. Missing means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// quotes returns a quote per symbol.
//
//	@Summary		Get quotes
//	@Description	Real-time quotes for a comma separated list of symbols. Failed symbols carry an error entry.
//	@Tags			Market
//	@Produce		json
//	@Param			symbols	path		string	true	"Comma separated symbols, e.g. AAPL,MSFT"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	map[string]any	"Every symbol failed"
//	@Router			/quote/{symbols} [get]
func (h *handlers) quotes(c *gin.Context) {
	symbols, err := finance.ParseSymbols(c.Param("symbols"))
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Quotes(c.Request.Context(), symbols)
	if err != nil {
		writeError(c, err)
		return
	}
	writeAggregate(c, finance.SummarizeKeyed(result), result)
}

// history returns price history per symbol in request order.
//
//	@Summary		Get price history
//	@Description	Historical candles per symbol, in the order the symbols were given.
//	@Tags			Market
//	@Produce		json
//	@Param			symbols		path		string	true	"Comma separated symbols"
//	@Param			period		query		string	false	"1d,5d,1mo,3mo,6mo,1y,2y,5y,10y,ytd,max"	default(1mo)
//	@Param			interval	query		string	false	"1m,2m,5m,15m,30m,60m,90m,1h,1d,5d,1wk,1mo,3mo"	default(1d)
//	@Success		200			{array}		object
//	@Failure		400			{object}	ErrorResponse
//	@Failure		502			{array}		object	"Every symbol failed"
//	@Router			/history/{symbols} [get]
func (h *handlers) history(c *gin.Context) {
	symbols, err := finance.ParseSymbols(c.Param("symbols"))
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.History(c.Request.Context(), symbols, finance.HistoryParams{
		Period:   c.Query("period"),
		Interval: c.Query("interval"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeAggregate(c, finance.SummarizeOrdered(result), result)
}

// search looks up symbols and news.
//
//	@Summary		Search
//	@Tags			Market
//	@Produce		json
//	@Param			query		path		string	true	"Search text"
//	@Param			quotesCount	query		int		false	"Maximum symbol matches"	default(6)
//	@Param			newsCount	query		int		false	"Maximum news items"		default(4)
//	@Success		200			{object}	provider.SearchResult
//	@Failure		400			{object}	ErrorResponse
//	@Failure		502			{object}	ErrorResponse
//	@Router			/search/{query} [get]
func (h *handlers) search(c *gin.Context) {
	quotesCount, err := queryInt(c, "quotesCount")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	newsCount, err := queryInt(c, "newsCount")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.svc.Search(c.Request.Context(), c.Param("query"), finance.SearchParams{
		QuotesCount: quotesCount,
		NewsCount:   newsCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// trending returns trending symbols per region.
//
//	@Summary		Get trending symbols
//	@Tags			Market
//	@Produce		json
//	@Param			regions	path		string	true	"Comma separated region codes, e.g. US,GB"
//	@Param			count	query		int		false	"Symbols per region"	default(10)
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	map[string]any	"Every region failed"
//	@Router			/trending/{regions} [get]
func (h *handlers) trending(c *gin.Context) {
	regions, err := finance.ParseRegions(c.Param("regions"))
	if err != nil {
		writeError(c, err)
		return
	}
	count, err := queryInt(c, "count")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.svc.Trending(c.Request.Context(), regions, count)
	if err != nil {
		writeError(c, err)
		return
	}
	writeAggregate(c, finance.SummarizeKeyed(result), result)
}

// recommendations returns similar symbols per symbol.
//
//	@Summary		Get recommendations
//	@Tags			Research
//	@Produce		json
//	@Param			symbols	path		string	true	"Comma separated symbols"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	map[string]any	"Every symbol failed"
//	@Router			/recommendations/{symbols} [get]
func (h *handlers) recommendations(c *gin.Context) {
	symbols, err := finance.ParseSymbols(c.Param("symbols"))
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Recommendations(c.Request.Context(), symbols)
	if err != nil {
		writeError(c, err)
		return
	}
	writeAggregate(c, finance.SummarizeKeyed(result), result)
}

// insights returns research insights per symbol.
//
//	@Summary		Get insights
//	@Tags			Research
//	@Produce		json
//	@Param			symbols	path		string	true	"Comma separated symbols"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	map[string]any	"Every symbol failed"
//	@Router			/insights/{symbols} [get]
func (h *handlers) insights(c *gin.Context) {
	symbols, err := finance.ParseSymbols(c.Param("symbols"))
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Insights(c.Request.Context(), symbols)
	if err != nil {
		writeError(c, err)
		return
	}
	writeAggregate(c, finance.SummarizeKeyed(result), result)
}

// screener runs a predefined screener.
//
//	@Summary		Run screener
//	@Tags			Market
//	@Produce		json
//	@Param			type	path		string	true	"Screener type, e.g. day_gainers"
//	@Param			count	query		int		false	"Maximum results"	default(25)
//	@Success		200		{object}	provider.ScreenerResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/screener/{type} [get]
func (h *handlers) screener(c *gin.Context) {
	count, err := queryInt(c, "count")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.svc.Screener(c.Request.Context(), c.Param("type"), count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
