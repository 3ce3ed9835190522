// Package console 控制台HTTP服务，把状态仓库和页面流程以JSON接口暴露，同时承载网关转发路由
package console

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/account"
	"github.com/hewenyu/eripotter-console/internal/chat"
	"github.com/hewenyu/eripotter-console/internal/command"
	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/console/handler"
	"github.com/hewenyu/eripotter-console/internal/gateway"
	"github.com/hewenyu/eripotter-console/internal/metrics"
	"github.com/hewenyu/eripotter-console/internal/registration"
	"github.com/hewenyu/eripotter-console/internal/store"
)

// Deps 控制台服务依赖的组件，由组合根创建
type Deps struct {
	Store        *store.Store
	Account      account.Service
	Registration registration.Service
	Chats        *chat.Manager
	Commands     *command.Dispatcher
	// Gateway 为nil时不注册网关转发路由
	Gateway middleware.ProxyBalancer
}

// Server 表示控制台HTTP服务
type Server struct {
	e      *echo.Echo
	host   string
	port   int
	logger config.Logger
}

// NewServer 创建控制台HTTP服务
func NewServer(deps Deps, cfg *config.Config, logger config.Logger) *Server {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(metrics.Middleware())

	api := e.Group("/console")
	api.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "eripotter-console",
		})
	})

	handler.NewStoreHandler(deps.Store).RegisterRoutes(api)
	handler.NewFlowHandler(deps.Account, deps.Registration, deps.Chats, deps.Commands).RegisterRoutes(api)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	if deps.Gateway != nil {
		gateway.Register(e, deps.Gateway)
	}

	return &Server{
		e:      e,
		host:   cfg.Server.ListenAddress,
		port:   cfg.Server.Port,
		logger: logger.With(zap.String("component", "console")),
	}
}

// requestLogger 用zap记录每个请求
func requestLogger(logger config.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("请求失败", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("请求完成", fields...)
			return nil
		},
	})
}

// Echo 返回底层echo实例
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// Address 返回监听地址
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// Start 启动服务（非阻塞）
func (s *Server) Start() error {
	addr := s.Address()
	s.logger.Info("控制台服务启动", zap.String("address", addr))

	go func() {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Error("控制台服务启动失败", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown 关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("正在关闭控制台服务...")
	return s.e.Shutdown(ctx)
}
