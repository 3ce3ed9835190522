package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/store"
)

// StoreHandler 暴露状态仓库的读取与写入动作
type StoreHandler struct {
	store *store.Store
}

// NewStoreHandler 创建状态仓库处理器
func NewStoreHandler(s *store.Store) *StoreHandler {
	return &StoreHandler{
		store: s,
	}
}

// RegisterRoutes 注册API路由
func (h *StoreHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/state", h.getState)
	g.POST("/refresh", h.refreshAll)
	g.POST("/fetch/:resource", h.fetch)

	g.GET("/services", h.list(func(st store.State) interface{} { return st.Services }))
	g.POST("/services", h.registerService)

	g.GET("/users", h.list(func(st store.State) interface{} { return st.Users }))
	g.POST("/users", create(h, h.store.CreateUser))
	g.PUT("/users/:id", update(h, h.store.UpdateUser))
	g.DELETE("/users/:id", remove(h, h.store.DeleteUser))

	g.GET("/orders", h.list(func(st store.State) interface{} { return st.Orders }))
	g.POST("/orders", create(h, h.store.CreateOrder))
	g.PUT("/orders/:id", update(h, h.store.UpdateOrder))
	g.DELETE("/orders/:id", remove(h, h.store.DeleteOrder))

	g.GET("/products", h.list(func(st store.State) interface{} { return st.Products }))
	g.POST("/products", create(h, h.store.CreateProduct))
	g.PUT("/products/:id", update(h, h.store.UpdateProduct))
	g.DELETE("/products/:id", remove(h, h.store.DeleteProduct))

	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
}

// getState 返回仓库当前快照
func (h *StoreHandler) getState(c echo.Context) error {
	return ok(c, "查询成功", h.store.Snapshot())
}

// refreshAll 并发刷新全部资源，部分失败体现在快照的error字段中
func (h *StoreHandler) refreshAll(c echo.Context) error {
	h.store.RefreshAll(c.Request().Context())
	return ok(c, "刷新完成", h.store.Snapshot())
}

// fetch 刷新单类资源
func (h *StoreHandler) fetch(c echo.Context) error {
	fetchers := map[string]func(context.Context) error{
		string(store.ConcernHealth):   h.store.FetchHealth,
		string(store.ConcernServices): h.store.FetchServices,
		string(store.ConcernUsers):    h.store.FetchUsers,
		string(store.ConcernOrders):   h.store.FetchOrders,
		string(store.ConcernProducts): h.store.FetchProducts,
	}

	resource := c.Param("resource")
	fn, found := fetchers[resource]
	if !found {
		return fail(c, http.StatusNotFound, "未知资源: "+resource, nil)
	}

	if err := fn(c.Request().Context()); err != nil {
		return h.storeFailure(c, err)
	}
	return ok(c, "刷新成功", h.store.Snapshot())
}

// list 返回仓库中缓存的集合，不发起远端请求
func (h *StoreHandler) list(pick func(store.State) interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		return ok(c, "查询成功", pick(h.store.Snapshot()))
	}
}

// registerService 注册服务
func (h *StoreHandler) registerService(c echo.Context) error {
	var req model.ServiceRegistration
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	return h.mutation(c, func(ctx context.Context) (store.MutationOutcome, error) {
		return h.store.RegisterService(ctx, req)
	})
}

// login 网关登录
func (h *StoreHandler) login(c echo.Context) error {
	var creds model.Credentials
	if err := c.Bind(&creds); err != nil {
		return badRequest(c)
	}

	if err := h.store.Login(c.Request().Context(), creds.Email, creds.Password); err != nil {
		return h.storeFailure(c, err)
	}
	return ok(c, "登录成功", h.store.Snapshot().User)
}

// logout 退出登录
func (h *StoreHandler) logout(c echo.Context) error {
	if err := h.store.Logout(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "退出登录失败: "+err.Error(), nil)
	}
	return ok(c, "已退出登录", nil)
}

func (h *StoreHandler) mutation(c echo.Context, fn func(context.Context) (store.MutationOutcome, error)) error {
	outcome, err := fn(c.Request().Context())
	if !outcome.Applied {
		return h.storeFailure(c, err)
	}
	if err != nil {
		return ok(c, "操作成功，刷新列表失败: "+h.store.Snapshot().Error, outcome)
	}
	return ok(c, "操作成功", outcome)
}

// storeFailure 使用仓库错误槽中的提示作为响应信息
func (h *StoreHandler) storeFailure(c echo.Context, err error) error {
	st := h.store.Snapshot()
	message := st.Error
	if message == "" {
		message = err.Error()
	}
	return fail(c, upstreamStatus(err), message, st)
}

func create[T any](h *StoreHandler, fn func(context.Context, T) (store.MutationOutcome, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in T
		if err := c.Bind(&in); err != nil {
			return badRequest(c)
		}
		return h.mutation(c, func(ctx context.Context) (store.MutationOutcome, error) {
			return fn(ctx, in)
		})
	}
}

func update[T any](h *StoreHandler, fn func(context.Context, string, T) (store.MutationOutcome, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		var patch T
		if err := c.Bind(&patch); err != nil {
			return badRequest(c)
		}
		return h.mutation(c, func(ctx context.Context) (store.MutationOutcome, error) {
			return fn(ctx, id, patch)
		})
	}
}

func remove(h *StoreHandler, fn func(context.Context, string) (store.MutationOutcome, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		return h.mutation(c, func(ctx context.Context) (store.MutationOutcome, error) {
			return fn(ctx, id)
		})
	}
}
