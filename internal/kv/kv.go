// Package kv 提供替代浏览器本地存储的键值持久化能力
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// 持久化键，与前端本地存储的键名保持一致
const (
	KeyAuthToken    = "auth_token"
	KeyLoggedIn     = "loggedIn"
	KeyRememberUser = "rememberUser"
	KeyCompanies    = "companies"
	KeyUser         = "user"
)

// Storage 定义键值持久化接口
type Storage interface {
	// Get 读取键值，键不存在时ok为false
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入键值
	Set(ctx context.Context, key, value string) error

	// Remove 删除键，键不存在时不返回错误
	Remove(ctx context.Context, key string) error
}

// GetJSON 读取键值并解析为JSON，键不存在时ok为false
func GetJSON(ctx context.Context, s Storage, key string, out interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("解析键 %s 失败: %w", key, err)
	}
	return true, nil
}

// SetJSON 把值序列化为JSON后写入
func SetJSON(ctx context.Context, s Storage, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化键 %s 失败: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
