package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hewenyu/eripotter-console/internal/core/model"
)

const (
	loginPath        = "/api/login"
	signupPath       = "/api/signup"
	accountLoginPath = "/api/account/login"
	chatSendPath     = "/api/chatbot/send"
)

// accountLoginTimeout 仅账号登录调用设置客户端超时
var accountLoginTimeout = 10 * time.Second

// Login 以邮箱和密码登录网关
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error) {
	return Request[*model.LoginResponse](ctx, c, loginPath, RequestOptions{Method: http.MethodPost, Body: creds})
}

// Signup 提交公司自助注册，失败时尝试从响应体中读取服务端message
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) error {
	resp, err := c.execute(ctx, signupPath, RequestOptions{Method: http.MethodPost, Body: req})
	if err != nil {
		return err
	}

	if resp.IsSuccess() {
		return nil
	}

	apiErr := newAPIError(resp)
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

// AccountLogin 调用账号服务登录，固定10秒超时
func (c *Client) AccountLogin(ctx context.Context, req model.AccountLoginRequest) (*model.AccountLoginResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, accountLoginTimeout)
	defer cancel()

	return Request[*model.AccountLoginResponse](ctx, c, accountLoginPath, RequestOptions{Method: http.MethodPost, Body: req})
}

// SendChat 向聊天机器人发送一条消息
func (c *Client) SendChat(ctx context.Context, token string, req model.ChatRequest) (*model.ChatResponse, error) {
	return Request[*model.ChatResponse](ctx, c, chatSendPath, RequestOptions{
		Method:  http.MethodPost,
		Body:    req,
		Headers: map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)},
	})
}
