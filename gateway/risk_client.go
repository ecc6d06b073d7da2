package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"risk-engine-go/backtest"
	"risk-engine-go/internal/service"
	"risk-engine-go/montecarlo"
	"risk-engine-go/risk"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPDoer 便于在测试中注入 httptest 客户端。
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// APIError 风控服务返回的错误信封。
type APIError struct {
	Status  int
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("risk api status %d: %s", e.Status, e.Message)
}

// RiskClient 风控服务 REST 客户端，可选令牌桶限速。
type RiskClient struct {
	BaseURL    string
	HTTPClient HTTPDoer
	Limiter    RateLimiter
}

// NewRiskClient 默认 10s 超时、20 rps 限速。
func NewRiskClient(baseURL string) *RiskClient {
	return &RiskClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: NewDefaultHTTPClient(),
		Limiter:    NewTokenBucketLimiter(20, 40),
	}
}

func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *RiskClient) Health(ctx context.Context) (service.HealthResponse, error) {
	var out service.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *RiskClient) Evaluate(ctx context.Context, req service.EvaluateRequest) (service.EvaluateResponse, error) {
	var out service.EvaluateResponse
	err := c.do(ctx, http.MethodPost, "/risk/evaluate", req, &out)
	return out, err
}

func (c *RiskClient) ValidateTrade(ctx context.Context, req service.ValidateRequest) (service.ValidateResponse, error) {
	var out service.ValidateResponse
	err := c.do(ctx, http.MethodPost, "/risk/validate", req, &out)
	return out, err
}

func (c *RiskClient) StressTest(ctx context.Context, req service.StressRequest) (service.StressResponse, error) {
	var out service.StressResponse
	err := c.do(ctx, http.MethodPost, "/risk/stress", req, &out)
	return out, err
}

func (c *RiskClient) State(ctx context.Context) (risk.State, error) {
	var out risk.State
	err := c.do(ctx, http.MethodGet, "/risk/state", nil, &out)
	return out, err
}

func (c *RiskClient) ComputeMonteCarloVaR(ctx context.Context, req montecarlo.Request) (service.MonteCarloResponse, error) {
	var out service.MonteCarloResponse
	err := c.do(ctx, http.MethodPost, "/risk/mc_var", req, &out)
	return out, err
}

func (c *RiskClient) RunBacktest(ctx context.Context, req backtest.Request) (service.BacktestResponse, error) {
	var out service.BacktestResponse
	err := c.do(ctx, http.MethodPost, "/backtest/run", req, &out)
	return out, err
}

func (c *RiskClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit %s: %w", path, err)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
