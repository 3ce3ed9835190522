package model

import "time"

// Role 账号角色
type Role string

// RoleAdmin 公司注册时创建的管理员
const RoleAdmin Role = "admin"

// Company 本地登记的公司记录
type Company struct {
	CompanyID       string  `json:"company_id"`
	CompanyName     *string `json:"company_name"`
	Industry        string  `json:"industry"`
	CompanyCategory string  `json:"company_category"`
	AdminUsername   string  `json:"admin_username"`
	RegisteredAt    string  `json:"registeredAt"`
}

// AdminAccount 最近一次注册的管理员账号，密码不落盘
type AdminAccount struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	CompanyID    string `json:"company_id"`
	Role         Role   `json:"role"`
	RegisteredAt string `json:"registeredAt"`
}

// SignupCompany 注册请求中的公司部分
type SignupCompany struct {
	CompanyID       string  `json:"company_id"`
	CompanyName     *string `json:"company_name"`
	Industry        string  `json:"industry"`
	CompanyCategory string  `json:"company_category"`
}

// SignupAdmin 注册请求中的管理员部分
type SignupAdmin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest 公司自助注册请求
type SignupRequest struct {
	Company   SignupCompany `json:"company"`
	Admin     SignupAdmin   `json:"admin"`
	Timestamp string        `json:"timestamp"`
}

// Credentials 网关登录凭证
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 网关登录响应，token可能为空
type LoginResponse struct {
	Token string `json:"token,omitempty"`
}

// AccountLoginRequest 账号服务登录请求
type AccountLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountLoginResponse 账号服务登录响应
type AccountLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// CurrentUser 已登录用户的展示信息
type CurrentUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChatRequest 聊天机器人请求
type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID *int    `json:"session_id"`
	Context   *string `json:"context"`
}

// ChatResponse 聊天机器人响应
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID *int   `json:"session_id,omitempty"`
}

// ChatMessage 聊天窗口中的一条消息
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterForm 公司注册表单
type RegisterForm struct {
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name"`
	Industry        string `json:"industry"`
	CompanyCategory string `json:"company_category"`
	AdminUsername   string `json:"admin_username"`
	AdminEmail      string `json:"admin_email"`
	AdminPassword   string `json:"admin_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginForm 账号登录表单
type LoginForm struct {
	UserID     string `json:"user_id"`
	UserPW     string `json:"user_pw"`
	RememberMe bool   `json:"remember_me"`
}
