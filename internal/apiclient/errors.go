package apiclient

import (
	"errors"
	"fmt"
	"net/url"
)

// APIError 表示远端返回了非2xx状态码，请求本身已完成
type APIError struct {
	StatusCode int
	StatusText string
	// Message 仅在调用方显式解析了错误响应体时填充
	Message string
}

// Error 实现error接口
func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.StatusCode, e.StatusText)
}

// TransportError 表示请求未能完成（连接失败、超时、上下文取消等）
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

// Error 实现error接口
func (e *TransportError) Error() string {
	return fmt.Sprintf("请求 %s %s 失败: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap 返回底层错误
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Sent 请求是否已经发出。net/http把发送阶段的失败统一包装为*url.Error，
// 其他错误发生在构造请求阶段（如请求体序列化失败）
func (e *TransportError) Sent() bool {
	var urlErr *url.Error
	return errors.As(e.Err, &urlErr)
}

// IsStatus 判断err是否为指定状态码的APIError
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
