// Package gateway 把网关路径转发到远端网关，网关地址可以固定也可以通过DNS SRV解析
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
)

const (
	defaultCacheTTL = 60 * time.Second
	queryTimeout    = 5 * time.Second
	// 不带点的服务名按该后缀展开为SRV查询名
	defaultSRVSuffix = "._tcp.service.discovery"
)

// Resolver 返回当前应转发到的网关地址
type Resolver interface {
	Resolve(ctx context.Context) (*url.URL, error)
}

// StaticResolver 固定网关地址
type StaticResolver struct {
	target *url.URL
}

// NewStaticResolver 解析固定网关地址，只接受带scheme和host的绝对地址
func NewStaticResolver(rawURL string) (*StaticResolver, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("解析网关地址失败: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("网关地址[%s]必须包含scheme和host", rawURL)
	}
	return &StaticResolver{target: u}, nil
}

// Resolve 返回固定地址
func (r *StaticResolver) Resolve(ctx context.Context) (*url.URL, error) {
	return r.target, nil
}

// SRVResolver 通过DNS SRV记录解析网关地址，结果按TTL缓存
type SRVResolver struct {
	dnsServer string
	queryName string
	scheme    string
	cacheTTL  time.Duration
	client    *dns.Client
	logger    config.Logger
	now       func() time.Time

	mu         sync.RWMutex
	targets    []*net.SRV
	expiration time.Time
}

// NewSRVResolver 创建SRV解析器
func NewSRVResolver(dnsServer, serviceName, scheme string, cacheTTL time.Duration, logger config.Logger) *SRVResolver {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if scheme == "" {
		scheme = "http"
	}
	if logger == nil {
		logger = config.NewNopLogger()
	}

	queryName := serviceName
	if !strings.Contains(serviceName, ".") {
		queryName = "_" + serviceName + defaultSRVSuffix
	}

	return &SRVResolver{
		dnsServer: dnsServer,
		queryName: dns.Fqdn(queryName),
		scheme:    scheme,
		cacheTTL:  cacheTTL,
		client:    &dns.Client{Timeout: queryTimeout},
		logger:    logger.With(zap.String("component", "gateway-resolver")),
		now:       time.Now,
	}
}

// Resolve 按权重选出一个SRV目标。查询失败但存在过期缓存时继续使用旧结果
func (r *SRVResolver) Resolve(ctx context.Context) (*url.URL, error) {
	if srv := r.cached(false); srv != nil {
		return r.toURL(srv), nil
	}

	srvs, err := r.lookup(ctx)
	if err != nil {
		if stale := r.cached(true); stale != nil {
			r.logger.Warn("SRV查询失败，使用过期缓存", zap.String("query", r.queryName), zap.Error(err))
			return r.toURL(stale), nil
		}
		return nil, err
	}

	r.mu.Lock()
	r.targets = srvs
	r.expiration = r.now().Add(r.cacheTTL)
	r.mu.Unlock()

	r.logger.Debug("SRV解析结果", zap.String("query", r.queryName), zap.Int("records", len(srvs)))
	return r.toURL(selectSRVByWeight(srvs)), nil
}

func (r *SRVResolver) cached(allowStale bool) *net.SRV {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.targets) == 0 {
		return nil
	}
	if !allowStale && !r.now().Before(r.expiration) {
		return nil
	}
	return selectSRVByWeight(r.targets)
}

func (r *SRVResolver) lookup(ctx context.Context) ([]*net.SRV, error) {
	ctx, cancel := context.WithTimeout(ctx, r.client.Timeout)
	defer cancel()

	m := new(dns.Msg)
	m.SetQuestion(r.queryName, dns.TypeSRV)
	m.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, m, r.dnsServer)
	if err != nil {
		return nil, fmt.Errorf("解析SRV记录[%s]失败: %w", r.queryName, err)
	}
	if resp == nil || resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("未找到网关[%s]的SRV记录", r.queryName)
	}

	var srvs []*net.SRV
	for _, rr := range resp.Answer {
		if srv, ok := rr.(*dns.SRV); ok {
			srvs = append(srvs, &net.SRV{
				Target:   srv.Target,
				Port:     srv.Port,
				Priority: srv.Priority,
				Weight:   srv.Weight,
			})
		}
	}
	if len(srvs) == 0 {
		return nil, fmt.Errorf("未找到网关[%s]的SRV记录", r.queryName)
	}
	return srvs, nil
}

func (r *SRVResolver) toURL(srv *net.SRV) *url.URL {
	host := strings.TrimSuffix(srv.Target, ".")
	return &url.URL{
		Scheme: r.scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(int(srv.Port))),
	}
}

// selectSRVByWeight 在最高优先级（数值最小）的记录中按权重随机选择
func selectSRVByWeight(srvs []*net.SRV) *net.SRV {
	if len(srvs) == 0 {
		return nil
	}

	best := srvs[0].Priority
	for _, srv := range srvs[1:] {
		if srv.Priority < best {
			best = srv.Priority
		}
	}

	var candidates []*net.SRV
	totalWeight := 0
	for _, srv := range srvs {
		if srv.Priority == best {
			candidates = append(candidates, srv)
			totalWeight += int(srv.Weight)
		}
	}

	if len(candidates) == 1 {
		return candidates[0]
	}
	if totalWeight == 0 {
		return candidates[rand.Intn(len(candidates))]
	}

	n := rand.Intn(totalWeight)
	for _, srv := range candidates {
		n -= int(srv.Weight)
		if n < 0 {
			return srv
		}
	}
	return candidates[0]
}
