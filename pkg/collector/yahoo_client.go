package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"StrengthRadar/pkg/model"
)

const (
	// DefaultYahooBaseURL Yahoo Finance 图表接口
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	// DefaultYahooTimeout 单次HTTP超时
	DefaultYahooTimeout = 10 * time.Second
	// DefaultYahooRateLimit 每秒请求数
	DefaultYahooRateLimit = 10
)

// taipei 台湾交易所时区，K线日期以此为准
var taipei = time.FixedZone("CST", 8*60*60)

// YahooClient Yahoo Finance 图表API客户端
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// YahooOption 客户端选项
type YahooOption func(*YahooClient)

// WithBaseURL 自定义接口地址
func WithBaseURL(baseURL string) YahooOption {
	return func(c *YahooClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient 自定义HTTP客户端
func WithHTTPClient(httpClient *http.Client) YahooOption {
	return func(c *YahooClient) {
		c.httpClient = httpClient
	}
}

// WithTimeout 自定义HTTP超时
func WithTimeout(timeout time.Duration) YahooOption {
	return func(c *YahooClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger arbor.ILogger) YahooOption {
	return func(c *YahooClient) {
		c.logger = logger
	}
}

// WithRateLimit 自定义限速（每秒请求数）
func WithRateLimit(requestsPerSecond int) YahooOption {
	return func(c *YahooClient) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewYahooClient 创建新的Yahoo客户端
func NewYahooClient(opts ...YahooOption) *YahooClient {
	c := &YahooClient{
		baseURL: DefaultYahooBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultYahooTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultYahooRateLimit), DefaultYahooRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError 接口返回的错误
type APIError struct {
	StatusCode int
	Symbol     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API错误: %s (status %d, symbol %s)", e.Message, e.StatusCode, e.Symbol)
}

// FetchChart 获取最近 days 个日历日的日K线
func (c *YahooClient) FetchChart(ctx context.Context, symbol string, days int) (model.Series, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限速失败: %w", err)
	}

	params := url.Values{}
	params.Set("range", fmt.Sprintf("%dd", days))
	params.Set("interval", "1d")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; StrengthRadar/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "chart.error.description").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Symbol: symbol, Message: msg}
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("解析响应失败: 非法JSON (%s)", symbol)
	}
	if e := gjson.GetBytes(body, "chart.error"); e.Exists() && e.Type != gjson.Null {
		return nil, &APIError{StatusCode: resp.StatusCode, Symbol: symbol, Message: e.Get("description").String()}
	}

	return parseChart(body), nil
}

// parseChart 将图表响应转换为K线序列，null 价格记为 0
func parseChart(body []byte) model.Series {
	result := gjson.GetBytes(body, "chart.result.0")
	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	at := func(values []gjson.Result, i int) gjson.Result {
		if i < len(values) {
			return values[i]
		}
		return gjson.Result{}
	}

	series := make(model.Series, 0, len(timestamps))
	for i, ts := range timestamps {
		series = append(series, model.Bar{
			Date:   dateOf(ts.Int()),
			Open:   at(opens, i).Float(),
			High:   at(highs, i).Float(),
			Low:    at(lows, i).Float(),
			Close:  at(closes, i).Float(),
			Volume: at(volumes, i).Int(),
		})
	}
	return series
}

func dateOf(unix int64) time.Time {
	t := time.Unix(unix, 0).In(taipei)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, taipei)
}
