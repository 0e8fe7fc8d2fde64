package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
)

const maxErrorBody = 512

// Client issues calls to a CoinGecko-compatible market-data API
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	timeout         time.Duration
	maxRetries      int
	retryDelay      time.Duration
	defaultCurrency string
	logger          *zap.Logger
}

var _ repositories.MarketDataProvider = (*Client)(nil)

// NewClient creates a new upstream client
func NewClient(cfg config.CoinGeckoConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		httpClient:      &http.Client{Timeout: timeout},
		timeout:         timeout,
		maxRetries:      cfg.MaxRetries,
		retryDelay:      cfg.RetryDelay,
		defaultCurrency: entities.NormalizeCurrency(cfg.DefaultCurrency),
		logger:          logger,
	}
}

// ListCoins returns the full coin catalog
func (c *Client) ListCoins(ctx context.Context) ([]entities.CoinListEntry, error) {
	var coins []entities.CoinListEntry
	if err := c.get(ctx, "/coins/list", nil, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// GetMarketPage fetches a single page of market rows. Out-of-range paging is clamped.
func (c *Client) GetMarketPage(ctx context.Context, params entities.MarketPageParams) ([]entities.MarketRow, error) {
	params = params.Normalize(c.defaultCurrency)

	q := url.Values{}
	q.Set("vs_currency", params.Currency)
	q.Set("order", params.Order)
	q.Set("per_page", strconv.Itoa(params.PerPage))
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("sparkline", "false")
	if len(params.PriceChangeWindows) > 0 {
		q.Set("price_change_percentage", strings.Join(params.PriceChangeWindows, ","))
	}

	var rows []entities.MarketRow
	if err := c.get(ctx, "/coins/markets", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCoinsByIDs fetches market rows for a specific set of coins.
// The provider caps a page at MaxPerPage rows, so larger sets are requested in batches.
func (c *Client) GetCoinsByIDs(ctx context.Context, coinIDs []string, currency string) ([]entities.MarketRow, error) {
	ids := entities.NormalizeCoinIDs(coinIDs)
	if len(ids) == 0 {
		return []entities.MarketRow{}, nil
	}

	rows := make([]entities.MarketRow, 0, len(ids))
	for _, batch := range lo.Chunk(ids, entities.MaxPerPage) {
		q := url.Values{}
		q.Set("vs_currency", c.currency(currency))
		q.Set("ids", strings.Join(batch, ","))
		q.Set("order", entities.DefaultOrder)
		q.Set("per_page", strconv.Itoa(entities.MaxPerPage))
		q.Set("page", "1")
		q.Set("sparkline", "false")
		q.Set("price_change_percentage", "24h,7d")

		var page []entities.MarketRow
		if err := c.get(ctx, "/coins/markets", q, &page); err != nil {
			return nil, err
		}
		rows = append(rows, page...)
	}
	return rows, nil
}

// GetCoinDetail fetches a single coin; an unknown coin yields a NotFoundError
func (c *Client) GetCoinDetail(ctx context.Context, coinID string) (*entities.CoinDetail, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if coinID == "" {
		return nil, apperrors.NewValidationError("coin_id", "must not be empty")
	}

	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")

	var raw coinDetailResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), q, &raw); err != nil {
		return nil, notFoundAs(err, coinID)
	}
	if raw.Error != "" || raw.ID == "" {
		return nil, &apperrors.NotFoundError{CoinID: coinID}
	}
	return raw.toEntity(), nil
}

// GetCoinByContract resolves a token contract address on a platform to a coin
func (c *Client) GetCoinByContract(ctx context.Context, platform, address string) (*entities.CoinDetail, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		return nil, apperrors.NewValidationError("platform", "must not be empty")
	}
	if !isValidContractAddress(address) {
		return nil, apperrors.NewValidationError("address", "must be a 20-byte hex address")
	}
	address = normalizeContractAddress(address)

	var raw coinDetailResponse
	path := fmt.Sprintf("/coins/%s/contract/%s", url.PathEscape(platform), address)
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, notFoundAs(err, platform+":"+address)
	}
	if raw.Error != "" || raw.ID == "" {
		return nil, &apperrors.NotFoundError{CoinID: platform + ":" + address}
	}
	return raw.toEntity(), nil
}

// GetSimplePrices batches every coin into one call. Empty coinIDs never reaches the network.
func (c *Client) GetSimplePrices(ctx context.Context, coinIDs, currencies []string) (map[string]map[string]float64, error) {
	ids := entities.NormalizeCoinIDs(coinIDs)
	if len(ids) == 0 {
		return map[string]map[string]float64{}, nil
	}

	vs := entities.NormalizeCoinIDs(currencies)
	if len(vs) == 0 {
		vs = []string{c.defaultCurrency}
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.Join(vs, ","))

	// {"bitcoin":{"usd":65000},"ethereum":{"usd":3000}}
	var raw map[string]map[string]*float64
	if err := c.get(ctx, "/simple/price", q, &raw); err != nil {
		return nil, err
	}

	prices := make(map[string]map[string]float64, len(raw))
	for coin, byCurrency := range raw {
		inner := make(map[string]float64, len(byCurrency))
		for cur, p := range byCurrency {
			if p == nil || *p < 0 {
				continue
			}
			inner[cur] = *p
		}
		prices[coin] = inner
	}
	return prices, nil
}

// GetHistory fetches a price series: hourly points for a day or less, daily beyond that
func (c *Client) GetHistory(ctx context.Context, coinID, currency string, days int) ([]entities.HistoryPoint, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if coinID == "" {
		return nil, apperrors.NewValidationError("coin_id", "must not be empty")
	}
	days = entities.ClampHistoryDays(days)

	q := url.Values{}
	q.Set("vs_currency", c.currency(currency))
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", HistoryInterval(days))

	var raw marketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", q, &raw); err != nil {
		return nil, notFoundAs(err, coinID)
	}
	return raw.toPoints(), nil
}

// Search finds coins by name or symbol. Short queries return nothing without a request.
func (c *Client) Search(ctx context.Context, query string) ([]entities.CoinMatch, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < entities.MinSearchLength {
		return []entities.CoinMatch{}, nil
	}

	q := url.Values{}
	q.Set("query", query)

	var raw searchResponse
	if err := c.get(ctx, "/search", q, &raw); err != nil {
		return nil, err
	}

	matches := make([]entities.CoinMatch, 0, len(raw.Coins))
	for _, coin := range raw.Coins {
		matches = append(matches, entities.CoinMatch{
			ID:            coin.ID,
			Symbol:        coin.Symbol,
			Name:          coin.Name,
			MarketCapRank: coin.MarketCapRank,
			Thumb:         coin.Thumb,
			Large:         coin.Large,
		})
	}
	return matches, nil
}

// GetTrending returns the provider's trending coins
func (c *Client) GetTrending(ctx context.Context) ([]entities.CoinMatch, error) {
	var raw trendingResponse
	if err := c.get(ctx, "/search/trending", nil, &raw); err != nil {
		return nil, err
	}

	matches := make([]entities.CoinMatch, 0, len(raw.Coins))
	for _, wrapped := range raw.Coins {
		item := wrapped.Item
		matches = append(matches, entities.CoinMatch{
			ID:            item.ID,
			Symbol:        item.Symbol,
			Name:          item.Name,
			MarketCapRank: item.MarketCapRank,
			Thumb:         item.Thumb,
			Large:         item.Large,
			Score:         item.Score,
			PriceBTC:      item.PriceBTC,
		})
	}
	return matches, nil
}

// GetGlobalStats returns market-wide aggregates
func (c *Client) GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error) {
	var raw struct {
		Data entities.GlobalStats `json:"data"`
	}
	if err := c.get(ctx, "/global", nil, &raw); err != nil {
		return nil, err
	}
	return &raw.Data, nil
}

// HistoryInterval picks the sampling granularity for a history window
func HistoryInterval(days int) string {
	if days <= 1 {
		return "hourly"
	}
	return "daily"
}

func (c *Client) currency(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return c.defaultCurrency
	}
	return entities.NormalizeCurrency(currency)
}

// get performs a GET against the provider and decodes the JSON body into dest.
// The request is detached from the caller's cancellation and bounded by the client timeout,
// so a shared in-flight fetch runs to completion or timeout.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, dest interface{}) error {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	metricEndpoint := endpointLabel(endpoint)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-reqCtx.Done():
				return c.fail(metricEndpoint, 0, reqCtx.Err(), start)
			case <-time.After(delay):
			}
		}

		body, status, err := c.do(reqCtx, target)
		if err != nil {
			return c.fail(metricEndpoint, 0, err, start)
		}

		if status >= 200 && status < 300 {
			if err := json.Unmarshal(body, dest); err != nil {
				return c.fail(metricEndpoint, status, fmt.Errorf("failed to decode response: %w", err), start)
			}
			observeUpstream(metricEndpoint, strconv.Itoa(status), time.Since(start))
			return nil
		}

		lastErr = fmt.Errorf("HTTP %d: %s", status, truncate(body))
		if status != http.StatusTooManyRequests {
			return c.fail(metricEndpoint, status, lastErr, start)
		}

		c.logger.Warn("Upstream rate limited",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.maxRetries+1),
		)
	}

	return c.fail(metricEndpoint, http.StatusTooManyRequests, lastErr, start)
}

func (c *Client) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) fail(endpoint string, status int, cause error, start time.Time) error {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	observeUpstream(endpoint, label, time.Since(start))

	return &apperrors.UpstreamError{
		Endpoint:   endpoint,
		StatusCode: status,
		Cause:      cause,
	}
}

// notFoundAs turns an upstream 404 into a NotFoundError for the requested coin
func notFoundAs(err error, coinID string) error {
	var upstream *apperrors.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
		return &apperrors.NotFoundError{CoinID: coinID}
	}
	return err
}

// endpointLabel collapses coin-specific paths to keep metric cardinality bounded
func endpointLabel(path string) string {
	switch {
	case strings.HasSuffix(path, "/market_chart"):
		return "/coins/{id}/market_chart"
	case strings.Contains(path, "/contract/"):
		return "/coins/{platform}/contract/{address}"
	case strings.HasPrefix(path, "/coins/") && path != "/coins/list" && path != "/coins/markets":
		return "/coins/{id}"
	default:
		return path
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
