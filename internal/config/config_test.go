package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err, "无法加载默认配置")
	require.NotNil(t, config, "配置不应为nil")

	// 验证默认值
	assert.Equal(t, DefaultGatewayURL, config.Gateway.URL, "网关地址应为默认值")
	assert.Equal(t, DefaultAPIURL, config.API.BaseURL, "API地址应为默认值")
	assert.Equal(t, 3000, config.Server.Port, "控制台端口应为3000")
	assert.Equal(t, "memory", config.Storage.Backend, "默认存储应为memory")
	assert.Equal(t, 60*time.Second, config.Gateway.CacheTTL, "SRV缓存TTL应为60秒")
	assert.Equal(t, time.Duration(0), config.Console.HealthPollInterval, "默认不轮询健康状态")
	assert.Equal(t, []string{"localhost:2379"}, config.Etcd.Endpoints)
}

func TestLoadConfigFromFrontendEnvVars(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_GATEWAY_URL", "https://gw.example.com")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://api.example.com:8080")

	config, err := LoadConfig("")
	require.NoError(t, err, "无法加载配置")

	assert.Equal(t, "https://gw.example.com", config.Gateway.URL, "应使用前端网关环境变量")
	assert.Equal(t, "http://api.example.com:8080", config.API.BaseURL, "应使用前端API环境变量")
	assert.Equal(t, 3000, config.Server.Port, "端口不应受影响")
}

func TestLoadConfigPrefixedEnvWins(t *testing.T) {
	t.Setenv("ERIPOTTER_CONSOLE_GATEWAY_URL", "https://primary.example.com")
	t.Setenv("NEXT_PUBLIC_GATEWAY_URL", "https://fallback.example.com")
	t.Setenv("ERIPOTTER_CONSOLE_PORT", "9090")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://primary.example.com", config.Gateway.URL)
	assert.Equal(t, 9090, config.Server.Port)
}

func TestLoadConfigEmptyEnvFallsBack(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_API_URL", "")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, config.API.BaseURL, "空环境变量应回退到默认地址")
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	content := []byte(`
gateway:
  url: https://file.example.com
  dns_server: 127.0.0.1:6553
  srv_name: _gateway._tcp.service.discovery
storage:
  backend: etcd
console:
  health_poll_interval: 15s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", config.Gateway.URL)
	assert.Equal(t, "127.0.0.1:6553", config.Gateway.DNSServer)
	assert.Equal(t, "_gateway._tcp.service.discovery", config.Gateway.SRVName)
	assert.Equal(t, "etcd", config.Storage.Backend)
	assert.Equal(t, 15*time.Second, config.Console.HealthPollInterval)
}

func TestLoadConfigWithMissingFile(t *testing.T) {
	config, err := LoadConfig("non_existent_file.yaml")

	assert.Error(t, err, "从不存在的文件加载配置应该失败")
	assert.Nil(t, config, "加载不存在的配置文件应该返回nil配置")
}
