// Package store 保存最近一次成功获取的资源集合，并提供统一的动作协议
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/kv"
)

// Concern 表示一类独立的加载状态
type Concern string

const (
	ConcernHealth   Concern = "health"
	ConcernServices Concern = "services"
	ConcernUsers    Concern = "users"
	ConcernOrders   Concern = "orders"
	ConcernProducts Concern = "products"
	ConcernAuth     Concern = "auth"
)

// Loading 每类资源独立的加载标志
type Loading struct {
	Health   bool `json:"health"`
	Services bool `json:"services"`
	Users    bool `json:"users"`
	Orders   bool `json:"orders"`
	Products bool `json:"products"`
	Auth     bool `json:"auth"`
}

// Any 任一资源正在加载时返回true
func (l Loading) Any() bool {
	return l.Health || l.Services || l.Users || l.Orders || l.Products || l.Auth
}

// State 仓库状态快照。集合总是被整体替换，快照之间共享底层切片，调用方不得原地修改
type State struct {
	Health   *model.HealthResponse `json:"health"`
	Services []model.ServiceInfo   `json:"services"`
	Users    []model.User          `json:"users"`
	Orders   []model.Order         `json:"orders"`
	Products []model.Product       `json:"products"`

	Loading Loading `json:"loading"`
	// Error 所有资源共用的错误信息，新错误覆盖旧错误
	Error string `json:"error"`

	IsLoggedIn bool               `json:"is_logged_in"`
	User       *model.CurrentUser `json:"user"`
}

// Listener 状态变化回调
type Listener func(State)

// API 仓库依赖的远端操作
type API interface {
	GetHealth(ctx context.Context) (*model.HealthResponse, error)
	GetServices(ctx context.Context) ([]model.ServiceInfo, error)
	RegisterService(ctx context.Context, info model.ServiceRegistration) (*model.ServiceInfo, error)

	GetUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, in model.UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error

	GetOrders(ctx context.Context) ([]model.Order, error)
	CreateOrder(ctx context.Context, in model.OrderInput) (*model.Order, error)
	UpdateOrder(ctx context.Context, id string, patch model.OrderPatch) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error

	GetProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	Login(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error)
}

// Store 应用状态仓库，由组合根创建并注入，不存在全局单例
type Store struct {
	api     API
	storage kv.Storage
	logger  config.Logger

	mu    sync.Mutex
	state State
	// 同一资源可能有多个请求同时进行，计数归零时加载标志才清除
	inflight map[Concern]int

	// notifyMu 串行化状态变更与通知，快照按变更顺序送达监听者
	notifyMu    sync.Mutex
	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// New 创建状态仓库
func New(api API, storage kv.Storage, logger config.Logger) *Store {
	if logger == nil {
		logger = config.NewNopLogger()
	}
	return &Store{
		api:       api,
		storage:   storage,
		logger:    logger.With(zap.String("component", "store")),
		inflight:  make(map[Concern]int),
		listeners: make(map[int]Listener),
	}
}

// Snapshot 返回当前状态
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe 注册状态监听，返回取消函数
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// SetError 直接写入共享错误槽，空字符串表示清除
func (s *Store) SetError(msg string) {
	s.update(func(st *State) {
		st.Error = msg
	})
}

// update 在锁内原子地执行一步状态变更，释放状态锁后按变更顺序通知监听者。
// 监听者可以读取快照，但不得在回调中修改状态
func (s *Store) update(step func(*State)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	step(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) notify(snapshot State) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// setLoading 根据在途计数刷新加载标志，调用方持有锁
func (s *Store) setLoading(st *State, c Concern) {
	on := s.inflight[c] > 0
	switch c {
	case ConcernHealth:
		st.Loading.Health = on
	case ConcernServices:
		st.Loading.Services = on
	case ConcernUsers:
		st.Loading.Users = on
	case ConcernOrders:
		st.Loading.Orders = on
	case ConcernProducts:
		st.Loading.Products = on
	case ConcernAuth:
		st.Loading.Auth = on
	}
}

// begin 动作开始：置加载标志并清空错误槽
func (s *Store) begin(c Concern) {
	s.update(func(st *State) {
		s.inflight[c]++
		s.setLoading(st, c)
		st.Error = ""
	})
}

// end 动作结束：应用结果并无条件清除本次的加载计数
func (s *Store) end(c Concern, apply func(*State)) {
	s.update(func(st *State) {
		if apply != nil {
			apply(st)
		}
		if s.inflight[c] > 0 {
			s.inflight[c]--
		}
		s.setLoading(st, c)
	})
}

// StartHealthPoller 按固定间隔刷新健康状态，ctx取消后退出
func (s *Store) StartHealthPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("启动健康状态轮询", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("停止健康状态轮询")
				return
			case <-ticker.C:
				if err := s.FetchHealth(ctx); err != nil {
					s.logger.Warn("轮询健康状态失败", zap.Error(err))
				}
			}
		}
	}()
}
