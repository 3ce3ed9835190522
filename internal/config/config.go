package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultGatewayURL 未设置网关地址时使用的生产网关
	DefaultGatewayURL = "https://api.eripotter.com"
	// DefaultAPIURL 未设置API地址时使用的默认地址
	DefaultAPIURL = "http://localhost:8000"
)

// Config 控制台配置结构
type Config struct {
	// 远端网关配置
	Gateway struct {
		URL string `mapstructure:"url"`
		// 通过DNS SRV解析网关地址，留空则直接使用URL
		DNSServer string        `mapstructure:"dns_server"`
		SRVName   string        `mapstructure:"srv_name"`
		Scheme    string        `mapstructure:"scheme"`
		CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"gateway"`

	// API客户端配置
	API struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"api"`

	// 控制台HTTP服务配置
	Server struct {
		ListenAddress string `mapstructure:"listen_address"`
		Port          int    `mapstructure:"port"`
	} `mapstructure:"server"`

	// 控制台运行配置
	Console struct {
		HealthPollInterval time.Duration `mapstructure:"health_poll_interval"`
	} `mapstructure:"console"`

	// 本地持久化配置
	Storage struct {
		Backend string `mapstructure:"backend"` // "memory" 或 "etcd"
		Prefix  string `mapstructure:"prefix"`
	} `mapstructure:"storage"`

	// etcd配置
	Etcd struct {
		Endpoints   []string      `mapstructure:"endpoints"`
		Username    string        `mapstructure:"username"`
		Password    string        `mapstructure:"password"`
		DialTimeout time.Duration `mapstructure:"dial_timeout"`
	} `mapstructure:"etcd"`

	// 日志配置
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

// LoadConfig 从文件和环境变量加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.eripotter-console")
		v.AddConfigPath("/etc/eripotter-console")
	}

	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时使用默认值，其他错误直接返回
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件错误: %w", err)
		}
	}

	v.SetEnvPrefix("ERIPOTTER_CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVariables(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置错误: %w", err)
	}

	// 空字符串环境变量视为未设置
	if config.Gateway.URL == "" {
		config.Gateway.URL = DefaultGatewayURL
	}
	if config.API.BaseURL == "" {
		config.API.BaseURL = DefaultAPIURL
	}

	return &config, nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.url", DefaultGatewayURL)
	v.SetDefault("gateway.dns_server", "")
	v.SetDefault("gateway.srv_name", "")
	v.SetDefault("gateway.scheme", "http")
	v.SetDefault("gateway.cache_ttl", 60*time.Second)

	v.SetDefault("api.base_url", DefaultAPIURL)

	v.SetDefault("server.listen_address", "0.0.0.0")
	v.SetDefault("server.port", 3000)

	v.SetDefault("console.health_poll_interval", time.Duration(0))

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.prefix", "/eripotter-console/")

	v.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.username", "")
	v.SetDefault("etcd.password", "")
	v.SetDefault("etcd.dial_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)
}

// bindEnvVariables 绑定前端沿用的环境变量名
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("gateway.url", "ERIPOTTER_CONSOLE_GATEWAY_URL", "NEXT_PUBLIC_GATEWAY_URL")
	v.BindEnv("api.base_url", "ERIPOTTER_CONSOLE_API_BASE_URL", "NEXT_PUBLIC_API_URL")
	v.BindEnv("server.port", "ERIPOTTER_CONSOLE_PORT")
	v.BindEnv("etcd.endpoints", "ERIPOTTER_CONSOLE_ETCD_ENDPOINTS")
}

// GetDefaultConfigPath 返回默认配置文件路径
func GetDefaultConfigPath() string {
	paths := []string{
		"./config.yaml",
		"./configs/config.yaml",
		os.Getenv("HOME") + "/.eripotter-console/config.yaml",
		"/etc/eripotter-console/config.yaml",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
