package gateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
)

// 路径保持不变转发的微服务前缀
var microservicePrefixes = []string{
	"assessment",
	"auth",
	"chatbot",
	"monitoring",
	"report",
	"request",
	"response",
}

// rewrites 需要改写路径的转发规则
var rewrites = map[string]string{
	"/api/login":  "/login",
	"/api/signup": "/signup",
}

// 原样转发的固定路径
var passthroughPaths = []string{"/health", "/docs"}

// CORSConfig 转发路由上附加的CORS头
var CORSConfig = middleware.CORSConfig{
	AllowOrigins:     []string{"*"},
	AllowCredentials: true,
	AllowMethods: []string{
		http.MethodGet,
		http.MethodDelete,
		http.MethodPatch,
		http.MethodPost,
		http.MethodPut,
	},
	AllowHeaders: []string{
		"X-CSRF-Token",
		"X-Requested-With",
		"Accept",
		"Accept-Version",
		"Content-Length",
		"Content-MD5",
		"Content-Type",
		"Date",
		"X-Api-Version",
	},
}

// Balancer 把Resolver适配为echo的代理负载均衡器
type Balancer struct {
	resolver Resolver
	logger   config.Logger
}

// NewBalancer 创建负载均衡器
func NewBalancer(resolver Resolver, logger config.Logger) *Balancer {
	if logger == nil {
		logger = config.NewNopLogger()
	}
	return &Balancer{
		resolver: resolver,
		logger:   logger.With(zap.String("component", "gateway")),
	}
}

// AddTarget 目标由Resolver决定，不支持手动添加
func (b *Balancer) AddTarget(*middleware.ProxyTarget) bool {
	return false
}

// RemoveTarget 不支持手动删除
func (b *Balancer) RemoveTarget(string) bool {
	return false
}

// Next 返回下一个目标，解析失败时返回nil
func (b *Balancer) Next(c echo.Context) *middleware.ProxyTarget {
	t, _ := b.NextTarget(c)
	return t
}

// NextTarget 解析当前网关地址，失败时返回502
func (b *Balancer) NextTarget(c echo.Context) (*middleware.ProxyTarget, error) {
	target, err := b.resolver.Resolve(c.Request().Context())
	if err != nil {
		b.logger.Error("解析网关地址失败", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusBadGateway, "gateway unavailable").SetInternal(err)
	}
	return &middleware.ProxyTarget{Name: "gateway", URL: target}, nil
}

// hostTransport 转发时把Host头改为目标主机
type hostTransport struct {
	base http.RoundTripper
}

func (t *hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Host = req.URL.Host
	return t.base.RoundTrip(req)
}

// Register 在echo上注册全部网关转发路由
func Register(e *echo.Echo, balancer middleware.ProxyBalancer) {
	proxy := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer:  balancer,
		Rewrite:   rewrites,
		Transport: &hostTransport{base: http.DefaultTransport},
	})
	cors := middleware.CORSWithConfig(CORSConfig)

	// 代理中间件直接写响应，不会调用路由处理函数
	unreachable := func(c echo.Context) error {
		return echo.ErrNotFound
	}

	for path := range rewrites {
		e.Any(path, unreachable, cors, proxy)
	}
	for _, path := range passthroughPaths {
		e.Any(path, unreachable, cors, proxy)
	}
	for _, prefix := range microservicePrefixes {
		e.Any("/"+prefix, unreachable, cors, proxy)
		e.Any("/"+prefix+"/*", unreachable, cors, proxy)
	}
}
