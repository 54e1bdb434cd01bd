// Package provider defines the upstream financial-data capability the gateway fans out to.
package provider

import (
	"context"
	"encoding/json"
	"time"
)

// Provider is the upstream data source. Every call is independent and may fail on its own.
// Implementations are expected to bound their own call duration.
type Provider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
	Chart(ctx context.Context, symbol string, opts ChartOptions) (Chart, error)
	Search(ctx context.Context, query string, opts SearchOptions) (SearchResult, error)
	TrendingSymbols(ctx context.Context, region string, opts TrendingOptions) (Trending, error)
	RecommendationsBySymbol(ctx context.Context, symbol string) (Recommendations, error)
	Insights(ctx context.Context, symbol string) (Insights, error)
	Screener(ctx context.Context, opts ScreenerOptions) (ScreenerResult, error)
}

// Quote is a real-time quote snapshot.
type Quote struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName,omitempty"`
	LongName                   string  `json:"longName,omitempty"`
	QuoteType                  string  `json:"quoteType,omitempty"`
	Currency                   string  `json:"currency,omitempty"`
	Exchange                   string  `json:"exchange,omitempty"`
	MarketState                string  `json:"marketState,omitempty"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	RegularMarketOpen          float64 `json:"regularMarketOpen,omitempty"`
	RegularMarketDayHigh       float64 `json:"regularMarketDayHigh,omitempty"`
	RegularMarketDayLow        float64 `json:"regularMarketDayLow,omitempty"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose,omitempty"`
	RegularMarketVolume        int64   `json:"regularMarketVolume,omitempty"`
	RegularMarketTime          int64   `json:"regularMarketTime,omitempty"` // unix seconds
	MarketCap                  int64   `json:"marketCap,omitempty"`
	FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow,omitempty"`
	TrailingPE                 float64 `json:"trailingPE,omitempty"`
}

// ChartOptions selects the history window.
type ChartOptions struct {
	Period1  time.Time
	Period2  time.Time
	Interval string
}

// Chart is a price history series.
type Chart struct {
	Meta   ChartMeta `json:"meta"`
	Quotes []Candle  `json:"quotes"`
}

// ChartMeta describes the instrument a Chart belongs to.
type ChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency,omitempty"`
	ExchangeName       string  `json:"exchangeName,omitempty"`
	InstrumentType     string  `json:"instrumentType,omitempty"`
	RegularMarketPrice float64 `json:"regularMarketPrice,omitempty"`
	DataGranularity    string  `json:"dataGranularity,omitempty"`
}

// Candle is one bar. Upstream leaves gaps as nulls, so fields are pointers.
type Candle struct {
	Date     time.Time `json:"date"`
	Open     *float64  `json:"open"`
	High     *float64  `json:"high"`
	Low      *float64  `json:"low"`
	Close    *float64  `json:"close"`
	AdjClose *float64  `json:"adjclose,omitempty"`
	Volume   *int64    `json:"volume"`
}

// SearchOptions bounds the size of a search response.
type SearchOptions struct {
	QuotesCount int
	NewsCount   int
}

// SearchResult holds symbol matches and related news.
type SearchResult struct {
	Quotes []SearchQuote `json:"quotes"`
	News   []NewsItem    `json:"news"`
}

// SearchQuote is a symbol match.
type SearchQuote struct {
	Symbol    string  `json:"symbol"`
	ShortName string  `json:"shortname,omitempty"`
	LongName  string  `json:"longname,omitempty"`
	Exchange  string  `json:"exchange,omitempty"`
	QuoteType string  `json:"quoteType,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// NewsItem is a news headline.
type NewsItem struct {
	UUID                string   `json:"uuid"`
	Title               string   `json:"title"`
	Publisher           string   `json:"publisher,omitempty"`
	Link                string   `json:"link,omitempty"`
	ProviderPublishTime int64    `json:"providerPublishTime,omitempty"`
	RelatedTickers      []string `json:"relatedTickers,omitempty"`
}

// TrendingOptions bounds the trending list.
type TrendingOptions struct {
	Count int
}

// Trending is the list of trending symbols in a region.
type Trending struct {
	Count  int              `json:"count"`
	Quotes []TrendingSymbol `json:"quotes"`
}

// TrendingSymbol is one trending entry.
type TrendingSymbol struct {
	Symbol string `json:"symbol"`
}

// Recommendations lists symbols similar to Symbol.
type Recommendations struct {
	Symbol             string              `json:"symbol"`
	RecommendedSymbols []RecommendedSymbol `json:"recommendedSymbols"`
}

// RecommendedSymbol is a scored recommendation.
type RecommendedSymbol struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

// Insights carries research insights. Sections are forwarded without interpretation.
type Insights struct {
	Symbol          string          `json:"symbol"`
	InstrumentInfo  json.RawMessage `json:"instrumentInfo,omitempty"`
	CompanySnapshot json.RawMessage `json:"companySnapshot,omitempty"`
	Recommendation  json.RawMessage `json:"recommendation,omitempty"`
	Events          json.RawMessage `json:"events,omitempty"`
	Reports         json.RawMessage `json:"reports,omitempty"`
	SigDevs         json.RawMessage `json:"sigDevs,omitempty"`
}

// ScreenerOptions selects a predefined screener.
type ScreenerOptions struct {
	ScrID string
	Count int
}

// ScreenerResult is the output of a predefined screener.
type ScreenerResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Total       int     `json:"total"`
	Quotes      []Quote `json:"quotes"`
}
