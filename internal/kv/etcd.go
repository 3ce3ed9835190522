package kv

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
)

// etcd操作的超时时间
const etcdTimeout = 5 * time.Second

// EtcdStorage 把键值保存在etcd的指定前缀下
type EtcdStorage struct {
	client *clientv3.Client
	prefix string
	logger config.Logger
}

// NewEtcdStorage 连接etcd并返回存储
func NewEtcdStorage(cfg *config.Config, logger config.Logger) (*EtcdStorage, error) {
	logger.Info("连接到etcd集群", zap.Strings("endpoints", cfg.Etcd.Endpoints))

	dialTimeout := cfg.Etcd.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: dialTimeout,
		Username:    cfg.Etcd.Username,
		Password:    cfg.Etcd.Password,
	})
	if err != nil {
		logger.Error("连接etcd失败", zap.Error(err))
		return nil, fmt.Errorf("连接etcd失败: %w", err)
	}

	return NewEtcdStorageWithClient(client, cfg.Storage.Prefix, logger), nil
}

// NewEtcdStorageWithClient 使用已有etcd客户端创建存储
func NewEtcdStorageWithClient(client *clientv3.Client, prefix string, logger config.Logger) *EtcdStorage {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &EtcdStorage{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (e *EtcdStorage) key(key string) string {
	return e.prefix + key
}

// Ping 检查etcd集群状态
func (e *EtcdStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, etcdTimeout)
	defer cancel()

	endpoints := e.client.Endpoints()
	if len(endpoints) == 0 {
		return fmt.Errorf("etcd未配置endpoint")
	}
	if _, err := e.client.Status(ctx, endpoints[0]); err != nil {
		return fmt.Errorf("etcd健康检查失败: %w", err)
	}
	return nil
}

// Get 读取键值
func (e *EtcdStorage) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, etcdTimeout)
	defer cancel()

	resp, err := e.client.Get(ctx, e.key(key))
	if err != nil {
		e.logger.Error("从etcd获取数据失败", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("etcd获取键值失败 [%s]: %w", key, err)
	}

	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// Set 写入键值
func (e *EtcdStorage) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, etcdTimeout)
	defer cancel()

	if _, err := e.client.Put(ctx, e.key(key), value); err != nil {
		return fmt.Errorf("etcd设置键值失败 [%s]: %w", key, err)
	}
	return nil
}

// Remove 删除键
func (e *EtcdStorage) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, etcdTimeout)
	defer cancel()

	if _, err := e.client.Delete(ctx, e.key(key)); err != nil {
		return fmt.Errorf("etcd删除键值失败 [%s]: %w", key, err)
	}
	return nil
}

// Close 关闭etcd连接
func (e *EtcdStorage) Close() error {
	e.logger.Info("关闭etcd连接")
	return e.client.Close()
}
