package store

import (
	"context"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/metrics"
)

// 错误没有可读信息时使用的固定提示
var fallbackMessages = map[Concern]string{
	ConcernHealth:   "시스템 상태를 불러오지 못했습니다.",
	ConcernServices: "서비스 목록을 불러오지 못했습니다.",
	ConcernUsers:    "사용자 데이터를 처리하지 못했습니다.",
	ConcernOrders:   "주문 데이터를 처리하지 못했습니다.",
	ConcernProducts: "상품 데이터를 처리하지 못했습니다.",
	ConcernAuth:     "로그인에 실패했습니다",
}

// MutationOutcome 写操作的结果。写成功后仓库总会重新读取一次对应集合，
// Applied表示远端接受了写入，Refreshed表示随后的重新读取是否成功
type MutationOutcome struct {
	Concern   Concern `json:"concern"`
	Applied   bool    `json:"applied"`
	Refreshed bool    `json:"refreshed"`
}

func errorMessage(err error, c Concern) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessages[c]
}

// fetch 读操作：成功时原样保存响应，失败时保留旧数据并写入错误槽
func fetch[T any](ctx context.Context, s *Store, c Concern, call func(context.Context) (T, error), apply func(*State, T)) error {
	s.begin(c)

	v, err := call(ctx)

	s.end(c, func(st *State) {
		if err != nil {
			st.Error = errorMessage(err, c)
			return
		}
		apply(st, v)
	})

	metrics.RecordStoreAction(string(c), err == nil)
	if err != nil {
		s.logger.Warn("读取资源失败", zap.String("concern", string(c)), zap.Error(err))
	}
	return err
}

// mutate 写操作：丢弃直接返回值，成功后调用refresh重新读取整个集合
func mutate(ctx context.Context, s *Store, c Concern, call func(context.Context) error, refresh func(context.Context) error) (MutationOutcome, error) {
	outcome := MutationOutcome{Concern: c}
	s.begin(c)

	if err := call(ctx); err != nil {
		s.end(c, func(st *State) {
			st.Error = errorMessage(err, c)
		})
		metrics.RecordStoreAction(string(c), false)
		s.logger.Warn("写入资源失败", zap.String("concern", string(c)), zap.Error(err))
		return outcome, err
	}

	outcome.Applied = true
	metrics.RecordStoreAction(string(c), true)

	err := refresh(ctx)
	s.end(c, nil)

	outcome.Refreshed = err == nil
	return outcome, err
}

// discard 把带返回值的写调用转换为只关心错误的形式
func discard[T any](call func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := call(ctx)
		return err
	}
}

// FetchHealth 刷新网关健康状态
func (s *Store) FetchHealth(ctx context.Context) error {
	return fetch(ctx, s, ConcernHealth, s.api.GetHealth, func(st *State, v *model.HealthResponse) {
		st.Health = v
	})
}

// FetchServices 刷新服务列表
func (s *Store) FetchServices(ctx context.Context) error {
	return fetch(ctx, s, ConcernServices, s.api.GetServices, func(st *State, v []model.ServiceInfo) {
		st.Services = v
	})
}

// RegisterService 注册服务后重新读取服务列表
func (s *Store) RegisterService(ctx context.Context, info model.ServiceRegistration) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernServices, discard(func(ctx context.Context) (*model.ServiceInfo, error) {
		return s.api.RegisterService(ctx, info)
	}), s.FetchServices)
}

// FetchUsers 刷新用户列表
func (s *Store) FetchUsers(ctx context.Context) error {
	return fetch(ctx, s, ConcernUsers, s.api.GetUsers, func(st *State, v []model.User) {
		st.Users = v
	})
}

// CreateUser 创建用户后重新读取用户列表
func (s *Store) CreateUser(ctx context.Context, in model.UserInput) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernUsers, discard(func(ctx context.Context) (*model.User, error) {
		return s.api.CreateUser(ctx, in)
	}), s.FetchUsers)
}

// UpdateUser 更新用户后重新读取用户列表
func (s *Store) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernUsers, discard(func(ctx context.Context) (*model.User, error) {
		return s.api.UpdateUser(ctx, id, patch)
	}), s.FetchUsers)
}

// DeleteUser 删除用户后重新读取用户列表
func (s *Store) DeleteUser(ctx context.Context, id string) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernUsers, func(ctx context.Context) error {
		return s.api.DeleteUser(ctx, id)
	}, s.FetchUsers)
}

// FetchOrders 刷新订单列表
func (s *Store) FetchOrders(ctx context.Context) error {
	return fetch(ctx, s, ConcernOrders, s.api.GetOrders, func(st *State, v []model.Order) {
		st.Orders = v
	})
}

// CreateOrder 创建订单后重新读取订单列表
func (s *Store) CreateOrder(ctx context.Context, in model.OrderInput) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernOrders, discard(func(ctx context.Context) (*model.Order, error) {
		return s.api.CreateOrder(ctx, in)
	}), s.FetchOrders)
}

// UpdateOrder 更新订单后重新读取订单列表
func (s *Store) UpdateOrder(ctx context.Context, id string, patch model.OrderPatch) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernOrders, discard(func(ctx context.Context) (*model.Order, error) {
		return s.api.UpdateOrder(ctx, id, patch)
	}), s.FetchOrders)
}

// DeleteOrder 删除订单后重新读取订单列表
func (s *Store) DeleteOrder(ctx context.Context, id string) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernOrders, func(ctx context.Context) error {
		return s.api.DeleteOrder(ctx, id)
	}, s.FetchOrders)
}

// FetchProducts 刷新商品列表
func (s *Store) FetchProducts(ctx context.Context) error {
	return fetch(ctx, s, ConcernProducts, s.api.GetProducts, func(st *State, v []model.Product) {
		st.Products = v
	})
}

// CreateProduct 创建商品后重新读取商品列表
func (s *Store) CreateProduct(ctx context.Context, in model.ProductInput) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernProducts, discard(func(ctx context.Context) (*model.Product, error) {
		return s.api.CreateProduct(ctx, in)
	}), s.FetchProducts)
}

// UpdateProduct 更新商品后重新读取商品列表
func (s *Store) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernProducts, discard(func(ctx context.Context) (*model.Product, error) {
		return s.api.UpdateProduct(ctx, id, patch)
	}), s.FetchProducts)
}

// DeleteProduct 删除商品后重新读取商品列表
func (s *Store) DeleteProduct(ctx context.Context, id string) (MutationOutcome, error) {
	return mutate(ctx, s, ConcernProducts, func(ctx context.Context) error {
		return s.api.DeleteProduct(ctx, id)
	}, s.FetchProducts)
}

// RefreshAll 并发刷新全部资源，等待所有请求结束。各自的失败只体现在错误槽中
func (s *Store) RefreshAll(ctx context.Context) {
	var wg conc.WaitGroup
	wg.Go(func() { _ = s.FetchHealth(ctx) })
	wg.Go(func() { _ = s.FetchServices(ctx) })
	wg.Go(func() { _ = s.FetchUsers(ctx) })
	wg.Go(func() { _ = s.FetchOrders(ctx) })
	wg.Go(func() { _ = s.FetchProducts(ctx) })
	wg.Wait()
}
