package model

// User 用户记录
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// UserInput 创建用户时提交的字段
type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserPatch 更新用户时提交的部分字段，nil字段不会发送
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Order 订单记录，UserID与ProductID只是约定外键，客户端不做校验
type Order struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

// OrderInput 创建订单时提交的字段
type OrderInput struct {
	UserID     string  `json:"user_id"`
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

// OrderPatch 更新订单时提交的部分字段
type OrderPatch struct {
	UserID     *string  `json:"user_id,omitempty"`
	ProductID  *string  `json:"product_id,omitempty"`
	Quantity   *int     `json:"quantity,omitempty"`
	TotalPrice *float64 `json:"total_price,omitempty"`
	Status     *string  `json:"status,omitempty"`
}

// Product 商品记录
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"created_at"`
}

// ProductInput 创建商品时提交的字段
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ProductPatch 更新商品时提交的部分字段
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}
