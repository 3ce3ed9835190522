package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/account"
	"github.com/hewenyu/eripotter-console/internal/apiclient"
	"github.com/hewenyu/eripotter-console/internal/chat"
	"github.com/hewenyu/eripotter-console/internal/command"
	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/console"
	"github.com/hewenyu/eripotter-console/internal/gateway"
	"github.com/hewenyu/eripotter-console/internal/kv"
	"github.com/hewenyu/eripotter-console/internal/registration"
	"github.com/hewenyu/eripotter-console/internal/store"
)

var (
	logger     config.Logger
	configFile string
	appConfig  *config.Config
)

func init() {
	// 解析命令行参数
	flag.StringVar(&configFile, "config", "", "配置文件路径")
}

func main() {
	flag.Parse()

	if configFile == "" {
		configFile = config.GetDefaultConfigPath()
	}

	// 加载配置
	var err error
	appConfig, err = config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger, err = config.NewLogger(appConfig.Log.Level, appConfig.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Eripotter Console Starting...",
		zap.String("version", "0.1.0"),
		zap.String("api_base_url", appConfig.API.BaseURL),
		zap.String("gateway_url", appConfig.Gateway.URL),
		zap.String("storage", appConfig.Storage.Backend),
		zap.Int("port", appConfig.Server.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, closeStorage, err := openStorage(ctx, appConfig, logger)
	if err != nil {
		logger.Error("初始化存储失败", zap.Error(err))
		os.Exit(1)
	}
	defer closeStorage()

	resolver, err := newResolver(appConfig, logger)
	if err != nil {
		logger.Error("初始化网关解析失败", zap.Error(err))
		os.Exit(1)
	}

	apiClient := apiclient.New(appConfig.API.BaseURL, logger)
	// 聊天接口固定走网关地址
	gatewayClient := apiclient.New(appConfig.Gateway.URL, logger)

	st := store.New(apiClient, storage, logger)
	st.StartHealthPoller(ctx, appConfig.Console.HealthPollInterval)

	server := console.NewServer(console.Deps{
		Store:        st,
		Account:      account.NewService(apiClient, storage, logger),
		Registration: registration.NewService(apiClient, storage, logger),
		Chats:        chat.NewManager(gatewayClient, storage, logger),
		Commands:     command.NewDispatcher(st, logger),
		Gateway:      gateway.NewBalancer(resolver, logger),
	}, appConfig, logger)

	if err := server.Start(); err != nil {
		logger.Error("启动控制台服务失败", zap.Error(err))
		os.Exit(1)
	}

	// 等待信号以优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("接收到关闭信号，正在优雅关闭...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭控制台服务失败", zap.Error(err))
	}
}

// openStorage 按配置选择本地持久化后端
func openStorage(ctx context.Context, cfg *config.Config, logger config.Logger) (kv.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return kv.NewMemoryStorage(), func() {}, nil
	case "etcd":
		etcdStorage, err := kv.NewEtcdStorage(cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := etcdStorage.Ping(pingCtx); err != nil {
			etcdStorage.Close()
			return nil, nil, fmt.Errorf("etcd健康检查失败: %w", err)
		}
		logger.Info("etcd连接成功并通过健康检查")

		return etcdStorage, func() { etcdStorage.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("不支持的存储后端: %s", cfg.Storage.Backend)
	}
}

// newResolver 配置了DNS服务器和SRV名称时通过SRV发现网关，否则使用固定地址
func newResolver(cfg *config.Config, logger config.Logger) (gateway.Resolver, error) {
	if cfg.Gateway.DNSServer != "" && cfg.Gateway.SRVName != "" {
		return gateway.NewSRVResolver(cfg.Gateway.DNSServer, cfg.Gateway.SRVName, cfg.Gateway.Scheme, cfg.Gateway.CacheTTL, logger), nil
	}
	resolver, err := gateway.NewStaticResolver(cfg.Gateway.URL)
	if err != nil {
		return nil, err
	}
	return resolver, nil
}
