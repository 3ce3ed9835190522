package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/apiclient"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/kv"
	"github.com/hewenyu/eripotter-console/internal/metrics"
)

// displayNamePlaceholder 登录接口不返回用户名，统一显示占位名
const displayNamePlaceholder = "사용자"

// loginErrorMessage 远端拒绝时显示状态码，其他错误沿用错误信息
func loginErrorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("로그인 실패: %d", apiErr.StatusCode)
	}
	return errorMessage(err, ConcernAuth)
}

// Login 登录网关，成功后标记登录状态并持久化令牌
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin(ConcernAuth)

	err := s.login(ctx, email, password)

	s.end(ConcernAuth, func(st *State) {
		if err != nil {
			st.Error = loginErrorMessage(err)
			return
		}
		st.IsLoggedIn = true
		st.User = &model.CurrentUser{Name: displayNamePlaceholder, Email: email}
	})

	metrics.RecordStoreAction(string(ConcernAuth), err == nil)
	if err != nil {
		s.logger.Warn("登录失败", zap.String("email", email), zap.Error(err))
		return err
	}
	s.logger.Info("登录成功", zap.String("email", email))
	return nil
}

func (s *Store) login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	if resp != nil && resp.Token != "" {
		if err := s.storage.Set(ctx, kv.KeyAuthToken, resp.Token); err != nil {
			return fmt.Errorf("保存登录令牌失败: %w", err)
		}
	}
	if err := s.storage.Set(ctx, kv.KeyLoggedIn, "true"); err != nil {
		return fmt.Errorf("保存登录状态失败: %w", err)
	}
	return nil
}

// Logout 清除内存中的登录状态和持久化的令牌
func (s *Store) Logout(ctx context.Context) error {
	s.update(func(st *State) {
		st.IsLoggedIn = false
		st.User = nil
	})

	return errors.Join(
		s.storage.Remove(ctx, kv.KeyLoggedIn),
		s.storage.Remove(ctx, kv.KeyAuthToken),
	)
}
