package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/metrics"
)

// RequestOptions 单次请求的可选参数
type RequestOptions struct {
	Method  string
	Body    interface{}
	Headers map[string]string
}

// Client 把类型化的资源操作转换成一次HTTP请求
type Client struct {
	baseURL string
	http    *resty.Client
	logger  config.Logger
}

// New 创建API客户端，baseURL在构造时固定
func New(baseURL string, logger config.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &Client{
		baseURL: baseURL,
		http:    resty.New().SetBaseURL(baseURL),
		logger:  logger.With(zap.String("component", "apiclient")),
	}
}

// BaseURL 返回客户端使用的基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request 发送请求并把JSON响应体解析为T
func Request[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var out T

	body, err := c.do(ctx, endpoint, opts)
	if err != nil {
		return out, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("解析 %s 响应失败: %w", endpoint, err)
	}

	return out, nil
}

// do 执行请求并返回原始响应体，非2xx状态不解析响应体
func (c *Client) do(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error) {
	resp, err := c.execute(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, newAPIError(resp)
	}

	return resp.Body(), nil
}

// execute 发送请求，只把传输层失败视为错误
func (c *Client) execute(ctx context.Context, endpoint string, opts RequestOptions) (*resty.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req := c.http.R().SetContext(ctx)
	req.SetHeaders(opts.Headers)
	// Content-Type始终为JSON，调用方的同名头不会覆盖它
	req.SetHeader("Content-Type", "application/json")
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	c.logger.Debug("API请求", zap.String("method", method), zap.String("endpoint", endpoint))

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		metrics.RecordAPIRequest(method, endpoint, "transport")
		c.logger.Warn("API请求未完成", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}

	if !resp.IsSuccess() {
		metrics.RecordAPIRequest(method, endpoint, "http_"+strconv.Itoa(resp.StatusCode()))
		c.logger.Warn("API响应错误", zap.String("method", method), zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode()))
		return resp, nil
	}

	metrics.RecordAPIRequest(method, endpoint, "ok")
	c.logger.Debug("API响应", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode()))
	return resp, nil
}

// newAPIError 用状态码和状态文本构造APIError
func newAPIError(resp *resty.Response) *APIError {
	code := resp.StatusCode()
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	return &APIError{StatusCode: code, StatusText: text}
}
