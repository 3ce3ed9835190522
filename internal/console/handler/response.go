// Package handler 控制台HTTP接口的处理器
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hewenyu/eripotter-console/internal/apiclient"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/validation"
)

// 返回成功响应
func successResponse(code int, message string, data interface{}) *model.ApiResponse {
	return &model.ApiResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// 返回错误响应
func errorResponse(code int, message string, data interface{}) *model.ApiResponse {
	return &model.ApiResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func ok(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, successResponse(http.StatusOK, message, data))
}

func fail(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, errorResponse(status, message, data))
}

// badRequest 请求体无法解析
func badRequest(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "请求参数错误", nil)
}

// invalidForm 表单校验失败，逐字段返回错误
func invalidForm(c echo.Context, errs validation.FieldErrors) error {
	return fail(c, http.StatusBadRequest, "表单校验失败", map[string]interface{}{
		"errors": errs,
	})
}

// upstreamStatus 远端的4xx原样返回，其他远端失败映射为网关类状态码
func upstreamStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}

	var transportErr *apiclient.TransportError
	if errors.As(err, &transportErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
