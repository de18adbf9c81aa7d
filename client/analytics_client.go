package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"yanalysis/middleware"
	"yanalysis/model"

	"github.com/go-resty/resty/v2"
)

// AnalyticsClient wraps the Y-Analysis REST backend. Each method issues
// exactly one request. There is no retry or cache, and no timeout beyond
// the caller's context.
type AnalyticsClient struct {
	client *resty.Client
}

func NewAnalyticsClient(baseURL string) *AnalyticsClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	client.OnAfterResponse(middleware.DecompressMiddleware)

	return &AnalyticsClient{
		client: client,
	}
}

// HTTPError is returned for every response with status >= 300.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Status
}

// ServerMessage is the backend's optional `error` or `message` field.
func (e *HTTPError) ServerMessage() string {
	return e.Message
}

func newHTTPError(resp *resty.Response) *HTTPError {
	status := resp.Status()
	if status == "" {
		status = strconv.Itoa(resp.StatusCode())
	}
	httpErr := &HTTPError{StatusCode: resp.StatusCode(), Status: status}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		httpErr.Message = body.Error
		if httpErr.Message == "" {
			httpErr.Message = body.Message
		}
	}
	return httpErr
}

func (c *AnalyticsClient) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	return checkResponse(endpoint, resp, err)
}

func (c *AnalyticsClient) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	return checkResponse(endpoint, resp, err)
}

func (c *AnalyticsClient) del(ctx context.Context, endpoint string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(endpoint)
	_, err = checkResponse(endpoint, resp, err)
	return err
}

func checkResponse(endpoint string, resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, fmt.Errorf("analytics request %s failed: %w", endpoint, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, newHTTPError(resp)
	}
	return resp.Body(), nil
}

// unwrap decodes body into out. When body is an object holding key, the
// value under key is decoded instead, which absorbs the backend's older
// {"historical_data": [...]} style envelopes.
func unwrap(body []byte, key string, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if inner, ok := envelope[key]; ok {
				trimmed = inner
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}

func raw(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(body)
}

func tickerPath(format, ticker string) string {
	return fmt.Sprintf(format, url.PathEscape(ticker))
}

// --- Tickers ---

func (c *AnalyticsClient) GetTickerInfo(ctx context.Context, ticker string) (json.RawMessage, error) {
	body, err := c.get(ctx, tickerPath("/tickers/info/%s", ticker), nil)
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) GetQuote(ctx context.Context, ticker string) (json.RawMessage, error) {
	body, err := c.get(ctx, tickerPath("/tickers/quotes/%s", ticker), nil)
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) GetRealTimePrice(ctx context.Context, ticker, exchange string) (*model.PriceQuote, error) {
	body, err := c.get(ctx, tickerPath("/tickers/real-time-price/%s", ticker), map[string]string{
		"exchange": exchange,
	})
	if err != nil {
		return nil, err
	}
	var quote model.PriceQuote
	if err := unwrap(body, "stock_data", &quote); err != nil {
		return nil, fmt.Errorf("real-time price decode error: %w", err)
	}
	return &quote, nil
}

func (c *AnalyticsClient) GetHistoricalData(ctx context.Context, ticker string, period model.Period) (*model.HistoricalPrices, error) {
	body, err := c.get(ctx, tickerPath("/tickers/historical-data/%s", ticker), map[string]string{
		"period": string(period),
	})
	if err != nil {
		return nil, err
	}
	data := make([]model.HistoricalPrice, 0)
	if err := unwrap(body, "historical_data", &data); err != nil {
		return nil, fmt.Errorf("historical data decode error: %w", err)
	}
	if data == nil {
		data = []model.HistoricalPrice{}
	}
	return &model.HistoricalPrices{Data: data, Period: period}, nil
}

func (c *AnalyticsClient) GetVolatility(ctx context.Context, ticker string, period model.Period, interval string) (*model.Volatility, error) {
	body, err := c.get(ctx, tickerPath("/tickers/volatility/%s", ticker), map[string]string{
		"period":   string(period),
		"interval": interval,
	})
	if err != nil {
		return nil, err
	}
	var vol model.Volatility
	if err := json.Unmarshal(body, &vol); err != nil {
		return nil, fmt.Errorf("volatility decode error: %w", err)
	}
	return &vol, nil
}

func (c *AnalyticsClient) GetNewsSentiment(ctx context.Context, ticker string) (json.RawMessage, error) {
	body, err := c.get(ctx, tickerPath("/tickers/news-sentiment/%s", ticker), nil)
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

// --- Technical analysis ---

func (c *AnalyticsClient) GetTechnicalAnalysisTV(ctx context.Context, ticker, exchange, screener, interval string, ai bool) (json.RawMessage, error) {
	body, err := c.get(ctx, tickerPath("/technical-analysis/tv/%s", ticker), map[string]string{
		"exchange": exchange,
		"screener": screener,
		"interval": interval,
		"ai":       strconv.FormatBool(ai),
	})
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) GetTechnicalAnalysisTA(ctx context.Context, ticker, interval string) (*model.TechnicalAnalysis, error) {
	body, err := c.get(ctx, tickerPath("/technical-analysis/ta/%s", ticker), map[string]string{
		"interval": interval,
	})
	if err != nil {
		return nil, err
	}
	var ta model.TechnicalAnalysis
	if err := json.Unmarshal(body, &ta); err != nil {
		return nil, fmt.Errorf("technical analysis decode error: %w", err)
	}
	return &ta, nil
}

func (c *AnalyticsClient) GetMACD(ctx context.Context, ticker string, period model.Period) (json.RawMessage, error) {
	body, err := c.post(ctx, "/ta-macd-data", map[string]string{
		"ticker": ticker,
		"period": string(period),
	})
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

// --- AI ---

func (c *AnalyticsClient) GetMarketAI(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/ai/market", nil)
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) Chat(ctx context.Context, message string, chatContext map[string]any) (*model.ChatReply, error) {
	body, err := c.post(ctx, "/ai/chat", model.ChatRequest{Message: message, Context: chatContext})
	if err != nil {
		return nil, err
	}
	var reply model.ChatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("chat reply decode error: %w", err)
	}
	return &reply, nil
}

func (c *AnalyticsClient) ResetChat(ctx context.Context) error {
	return c.del(ctx, "/ai/chat/reset")
}

// --- Universes & insider trading ---

func (c *AnalyticsClient) GetUniverses(ctx context.Context) ([]model.Universe, error) {
	body, err := c.get(ctx, "/universes", nil)
	if err != nil {
		return nil, err
	}
	universes := make([]model.Universe, 0)
	if err := json.Unmarshal(body, &universes); err != nil {
		return nil, fmt.Errorf("universes decode error: %w", err)
	}
	return universes, nil
}

func (c *AnalyticsClient) GetInsiderTradingTicker(ctx context.Context, ticker string, kind model.InsiderType) (json.RawMessage, error) {
	body, err := c.get(ctx, tickerPath("/insider-trading/ticker/%s", ticker), map[string]string{
		"type": string(kind),
	})
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) GetInsiderTradingUniverse(ctx context.Context, universeID string, kind model.InsiderType) (json.RawMessage, error) {
	body, err := c.get(ctx, tickerPath("/insider-trading/universe/%s", universeID), map[string]string{
		"type": string(kind),
	})
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) BuildPortfolio(ctx context.Context, criteria model.ScreenCriteria) (*model.Portfolio, error) {
	body, err := c.post(ctx, "/build_portfolio", criteria)
	if err != nil {
		return nil, err
	}
	var portfolio model.Portfolio
	if err := json.Unmarshal(body, &portfolio); err != nil {
		return nil, fmt.Errorf("portfolio decode error: %w", err)
	}
	if portfolio.Tickers == nil {
		portfolio.Tickers = []model.PortfolioTicker{}
	}
	return &portfolio, nil
}

// --- Market ---

func (c *AnalyticsClient) GetFearAndGreed(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/market/fear-and-greed", nil)
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

func (c *AnalyticsClient) GetNasdaqStatus(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/market/status/nasdaq", nil)
	if err != nil {
		return nil, err
	}
	return raw(body), nil
}

// GetFmpQuote returns the daily quote used by the ticker rotator.
func (c *AnalyticsClient) GetFmpQuote(ctx context.Context, ticker string) (*model.FmpQuote, error) {
	body, err := c.post(ctx, "/fmp-quote", map[string]string{"ticker": ticker})
	if err != nil {
		return nil, err
	}
	var quote model.FmpQuote
	if err := unwrap(body, "fmp_quote", &quote); err != nil {
		return nil, fmt.Errorf("fmp quote decode error: %w", err)
	}
	return &quote, nil
}
