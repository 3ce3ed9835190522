// Package account 账号登录页面流程
package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/apiclient"
	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/kv"
	"github.com/hewenyu/eripotter-console/internal/validation"
)

// HomePath 登录成功或已登录时跳转的页面
const HomePath = "/about"

const (
	msgInvalidResponse = "로그인 응답이 올바르지 않습니다."
	msgServerStatus    = "서버 오류: %d"
	msgUnreachable     = "서버와 연결할 수 없습니다."
	msgRequestSetup    = "요청 처리 중 오류가 발생했습니다."
	msgUnknown         = "알 수 없는 오류가 발생했습니다."
)

// ErrInvalidResponse 登录响应中没有访问令牌
var ErrInvalidResponse = errors.New(msgInvalidResponse)

// Error 登录失败，Message为展示给用户的整体提示
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Authenticator 登录所需的远端操作
type Authenticator interface {
	AccountLogin(ctx context.Context, req model.AccountLoginRequest) (*model.AccountLoginResponse, error)
}

// LoginResult 登录成功后的跳转信息
type LoginResult struct {
	Redirect  string `json:"redirect"`
	TokenType string `json:"token_type,omitempty"`
}

// EntryState 打开登录页时的初始状态
type EntryState struct {
	// Redirect 已登录时为跳转目标，否则为空
	Redirect string `json:"redirect,omitempty"`
	// RememberedUser 记住的用户名，用于预填表单
	RememberedUser string `json:"remembered_user,omitempty"`
}

// Service 账号登录服务
type Service interface {
	// Login 校验表单并登录，成功后持久化令牌
	Login(ctx context.Context, form model.LoginForm) (*LoginResult, error)

	// Entry 返回登录页的初始状态
	Entry(ctx context.Context) (*EntryState, error)
}

type accountService struct {
	api     Authenticator
	storage kv.Storage
	logger  config.Logger
}

// NewService 创建账号登录服务
func NewService(api Authenticator, storage kv.Storage, logger config.Logger) Service {
	if logger == nil {
		logger = config.NewNopLogger()
	}
	return &accountService{
		api:     api,
		storage: storage,
		logger:  logger.With(zap.String("component", "account")),
	}
}

func (s *accountService) Login(ctx context.Context, form model.LoginForm) (*LoginResult, error) {
	if errs := validation.ValidateLogin(form); errs != nil {
		return nil, errs
	}

	resp, err := s.api.AccountLogin(ctx, model.AccountLoginRequest{
		Username: form.UserID,
		Password: form.UserPW,
	})
	if err != nil {
		s.logger.Warn("账号登录失败", zap.String("username", form.UserID), zap.Error(err))
		return nil, &Error{Message: loginErrorMessage(err), Err: err}
	}

	if resp == nil || resp.AccessToken == "" {
		return nil, &Error{Message: msgInvalidResponse, Err: ErrInvalidResponse}
	}

	if err := s.persist(ctx, form, resp.AccessToken); err != nil {
		return nil, &Error{Message: msgUnknown, Err: err}
	}

	s.logger.Info("账号登录成功", zap.String("username", form.UserID))
	return &LoginResult{Redirect: HomePath, TokenType: resp.TokenType}, nil
}

func (s *accountService) persist(ctx context.Context, form model.LoginForm, token string) error {
	if err := s.storage.Set(ctx, kv.KeyAuthToken, token); err != nil {
		return fmt.Errorf("保存登录令牌失败: %w", err)
	}
	if err := s.storage.Set(ctx, kv.KeyLoggedIn, "true"); err != nil {
		return fmt.Errorf("保存登录状态失败: %w", err)
	}

	if form.RememberMe {
		return s.storage.Set(ctx, kv.KeyRememberUser, form.UserID)
	}
	return s.storage.Remove(ctx, kv.KeyRememberUser)
}

func (s *accountService) Entry(ctx context.Context) (*EntryState, error) {
	state := &EntryState{}

	loggedIn, _, err := s.storage.Get(ctx, kv.KeyLoggedIn)
	if err != nil {
		return nil, err
	}
	if loggedIn == "true" {
		state.Redirect = HomePath
	}

	remembered, ok, err := s.storage.Get(ctx, kv.KeyRememberUser)
	if err != nil {
		return nil, err
	}
	if ok {
		state.RememberedUser = remembered
	}

	return state, nil
}

// loginErrorMessage 按失败阶段给出提示
func loginErrorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf(msgServerStatus, apiErr.StatusCode)
	}

	var transportErr *apiclient.TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Sent() {
			return msgUnreachable
		}
		return msgRequestSetup
	}

	return msgUnknown
}
