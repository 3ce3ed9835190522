package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDNSServer 启动进程内DNS服务器，为queryName返回一条指向127.0.0.1:port的SRV记录
func startDNSServer(t *testing.T, queryName string, port uint16) (addr string, queries *int32, stop func()) {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	var count int32
	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		atomic.AddInt32(&count, 1)
		m := new(dns.Msg)
		m.SetReply(r)
		if len(r.Question) == 1 && r.Question[0].Name == dns.Fqdn(queryName) && r.Question[0].Qtype == dns.TypeSRV {
			m.Answer = append(m.Answer, &dns.SRV{
				Hdr:      dns.RR_Header{Name: r.Question[0].Name, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 60},
				Priority: 10,
				Weight:   100,
				Port:     port,
				Target:   "127.0.0.1.",
			})
		} else {
			m.Rcode = dns.RcodeNameError
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = server.ActivateAndServe() }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("DNS服务器启动超时")
	}

	return pc.LocalAddr().String(), &count, func() { _ = server.Shutdown() }
}

func TestStaticResolver(t *testing.T) {
	r, err := NewStaticResolver("https://api.eripotter.com/")
	require.NoError(t, err)

	u, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://api.eripotter.com", u.String())

	_, err = NewStaticResolver("api.eripotter.com")
	assert.Error(t, err, "缺少scheme的地址应被拒绝")
}

func TestSRVResolverResolvesAndCaches(t *testing.T) {
	addr, queries, stop := startDNSServer(t, "_gateway._tcp.service.discovery", 8080)
	defer stop()

	r := NewSRVResolver(addr, "gateway", "http", time.Minute, nil)
	ctx := context.Background()

	u, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", u.String())

	_, err = r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(queries), "TTL内应使用缓存")
}

func TestSRVResolverUsesStaleCacheOnFailure(t *testing.T) {
	addr, _, stop := startDNSServer(t, "gw.eripotter.local", 9000)

	r := NewSRVResolver(addr, "gw.eripotter.local", "https", time.Second, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	stop()
	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	r.client.Timeout = 200 * time.Millisecond

	u, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://127.0.0.1:9000", u.String())
}

func TestSRVResolverUnknownName(t *testing.T) {
	addr, _, stop := startDNSServer(t, "gw.eripotter.local", 9000)
	defer stop()

	r := NewSRVResolver(addr, "other.eripotter.local", "http", time.Second, nil)
	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}

func TestSelectSRVByWeightPrefersLowestPriority(t *testing.T) {
	srvs := []*net.SRV{
		{Target: "backup.", Port: 1, Priority: 20, Weight: 100},
		{Target: "primary.", Port: 2, Priority: 10, Weight: 0},
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "primary.", selectSRVByWeight(srvs).Target)
	}
	assert.Nil(t, selectSRVByWeight(nil))
}

type upstreamRequest struct {
	path  string
	query string
	host  string
}

func newProxyServer(t *testing.T) (*echo.Echo, chan upstreamRequest, *url.URL) {
	t.Helper()

	seen := make(chan upstreamRequest, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- upstreamRequest{path: r.URL.Path, query: r.URL.RawQuery, host: r.Host}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(upstream.Close)

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	resolver, err := NewStaticResolver(upstream.URL)
	require.NoError(t, err)

	e := echo.New()
	Register(e, NewBalancer(resolver, nil))
	return e, seen, target
}

func TestProxyRewritesAndForwards(t *testing.T) {
	e, seen, target := newProxyServer(t)

	cases := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/api/login", "/login"},
		{http.MethodPost, "/api/signup", "/signup"},
		{http.MethodGet, "/health", "/health"},
		{http.MethodGet, "/docs", "/docs"},
		{http.MethodGet, "/assessment/forms/1", "/assessment/forms/1"},
		{http.MethodPost, "/chatbot/send", "/chatbot/send"},
		{http.MethodGet, "/report", "/report"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			got := <-seen
			assert.Equal(t, tc.want, got.path)
			assert.Equal(t, target.Host, got.host, "转发时Host应为网关主机")
		})
	}
}

func TestProxyKeepsQueryString(t *testing.T) {
	e, seen, _ := newProxyServer(t)

	req := httptest.NewRequest(http.MethodGet, "/monitoring/metrics?range=1h", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "range=1h", (<-seen).query)
}

func TestProxyUnknownPathNotForwarded(t *testing.T) {
	e, seen, _ := newProxyServer(t)

	req := httptest.NewRequest(http.MethodGet, "/billing/invoices", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, seen)
}

func TestProxyCORSHeaders(t *testing.T) {
	e, seen, _ := newProxyServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	<-seen

	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestProxyCORSPreflight(t *testing.T) {
	e, seen, _ := newProxyServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/chatbot/send", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET,DELETE,PATCH,POST,PUT", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "X-CSRF-Token")
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "X-Api-Version")
	assert.Empty(t, seen, "预检请求不应转发")
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context) (*url.URL, error) {
	return nil, errors.New("no records")
}

func TestProxyResolverFailureReturnsBadGateway(t *testing.T) {
	e := echo.New()
	Register(e, NewBalancer(failingResolver{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSRVBalancedProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer upstream.Close()

	u, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	addr, _, stop := startDNSServer(t, "_gateway._tcp.service.discovery", uint16(port))
	defer stop()

	e := echo.New()
	Register(e, NewBalancer(NewSRVResolver(addr, "gateway", "http", time.Minute, nil), nil))

	req := httptest.NewRequest(http.MethodPost, "/api/signup", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/signup", rec.Body.String())
}
