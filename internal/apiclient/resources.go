package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hewenyu/eripotter-console/internal/core/model"
)

const (
	healthPath   = "/health"
	servicesPath = "/discovery/services"
	registerPath = "/discovery/register"
	usersPath    = "/api/users/users"
	ordersPath   = "/api/orders/orders"
	productsPath = "/api/products/products"
)

func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

// GetHealth 查询网关健康状态
func (c *Client) GetHealth(ctx context.Context) (*model.HealthResponse, error) {
	return Request[*model.HealthResponse](ctx, c, healthPath, RequestOptions{})
}

// GetServices 查询服务发现中心登记的服务
func (c *Client) GetServices(ctx context.Context) ([]model.ServiceInfo, error) {
	return Request[[]model.ServiceInfo](ctx, c, servicesPath, RequestOptions{})
}

// RegisterService 向服务发现中心注册服务
func (c *Client) RegisterService(ctx context.Context, info model.ServiceRegistration) (*model.ServiceInfo, error) {
	return Request[*model.ServiceInfo](ctx, c, registerPath, RequestOptions{Method: http.MethodPost, Body: info})
}

// GetUsers 查询用户列表
func (c *Client) GetUsers(ctx context.Context) ([]model.User, error) {
	return Request[[]model.User](ctx, c, usersPath, RequestOptions{})
}

// GetUser 查询单个用户
func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	return Request[*model.User](ctx, c, itemPath(usersPath, id), RequestOptions{})
}

// CreateUser 创建用户
func (c *Client) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	return Request[*model.User](ctx, c, usersPath, RequestOptions{Method: http.MethodPost, Body: in})
}

// UpdateUser 部分更新用户
func (c *Client) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	return Request[*model.User](ctx, c, itemPath(usersPath, id), RequestOptions{Method: http.MethodPut, Body: patch})
}

// DeleteUser 删除用户
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, itemPath(usersPath, id), RequestOptions{Method: http.MethodDelete})
	return err
}

// GetOrders 查询订单列表
func (c *Client) GetOrders(ctx context.Context) ([]model.Order, error) {
	return Request[[]model.Order](ctx, c, ordersPath, RequestOptions{})
}

// GetOrder 查询单个订单
func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return Request[*model.Order](ctx, c, itemPath(ordersPath, id), RequestOptions{})
}

// CreateOrder 创建订单
func (c *Client) CreateOrder(ctx context.Context, in model.OrderInput) (*model.Order, error) {
	return Request[*model.Order](ctx, c, ordersPath, RequestOptions{Method: http.MethodPost, Body: in})
}

// UpdateOrder 部分更新订单
func (c *Client) UpdateOrder(ctx context.Context, id string, patch model.OrderPatch) (*model.Order, error) {
	return Request[*model.Order](ctx, c, itemPath(ordersPath, id), RequestOptions{Method: http.MethodPut, Body: patch})
}

// DeleteOrder 删除订单
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	_, err := c.do(ctx, itemPath(ordersPath, id), RequestOptions{Method: http.MethodDelete})
	return err
}

// GetProducts 查询商品列表
func (c *Client) GetProducts(ctx context.Context) ([]model.Product, error) {
	return Request[[]model.Product](ctx, c, productsPath, RequestOptions{})
}

// GetProduct 查询单个商品
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return Request[*model.Product](ctx, c, itemPath(productsPath, id), RequestOptions{})
}

// CreateProduct 创建商品
func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	return Request[*model.Product](ctx, c, productsPath, RequestOptions{Method: http.MethodPost, Body: in})
}

// UpdateProduct 部分更新商品
func (c *Client) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	return Request[*model.Product](ctx, c, itemPath(productsPath, id), RequestOptions{Method: http.MethodPut, Body: patch})
}

// DeleteProduct 删除商品
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, itemPath(productsPath, id), RequestOptions{Method: http.MethodDelete})
	return err
}
