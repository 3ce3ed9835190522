package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls []string
	err   error
}

func (f *fakeRefresher) FetchHealth(ctx context.Context) error {
	f.calls = append(f.calls, "health")
	return f.err
}

func (f *fakeRefresher) FetchServices(ctx context.Context) error {
	f.calls = append(f.calls, "services")
	return f.err
}

func (f *fakeRefresher) FetchUsers(ctx context.Context) error {
	f.calls = append(f.calls, "users")
	return f.err
}

func (f *fakeRefresher) FetchOrders(ctx context.Context) error {
	f.calls = append(f.calls, "orders")
	return f.err
}

func (f *fakeRefresher) FetchProducts(ctx context.Context) error {
	f.calls = append(f.calls, "products")
	return f.err
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) {
	f.calls = append(f.calls, "all")
}

func TestInterpret(t *testing.T) {
	cases := []struct {
		cmd     string
		action  Action
		message string
	}{
		{"시스템 상태 알려줘", ActionHealth, "시스템 상태를 확인합니다..."},
		{"헬스 체크", ActionHealth, "시스템 상태를 확인합니다..."},
		{"서비스 목록 보여줘", ActionServices, "등록된 서비스 목록을 확인합니다..."},
		{"유저 보여줘", ActionUsers, "사용자 목록을 확인합니다..."},
		{"주문 내역", ActionOrders, "주문 목록을 확인합니다..."},
		{"오더 확인", ActionOrders, "주문 목록을 확인합니다..."},
		{"제품 목록", ActionProducts, "상품 목록을 확인합니다..."},
		{"모든 데이터", ActionAll, "모든 데이터를 새로고침합니다..."},
		{"안녕", ActionNone, "\"안녕\" 명령을 인식했습니다."},
	}

	for _, tc := range cases {
		t.Run(tc.cmd, func(t *testing.T) {
			in := Interpret(tc.cmd)
			assert.Equal(t, tc.action, in.Action)
			assert.Equal(t, tc.message, in.Message)
			assert.Equal(t, tc.cmd, in.Command)
		})
	}
}

func TestInterpretFirstRuleWins(t *testing.T) {
	// 同时包含多个关键词时按规则顺序取第一条
	assert.Equal(t, ActionHealth, Interpret("전체 서비스 상태").Action)
	assert.Equal(t, ActionServices, Interpret("사용자 서비스").Action)
	assert.Equal(t, ActionUsers, Interpret("전체 사용자").Action)
}

func TestExecuteDispatchesToStore(t *testing.T) {
	cases := map[string]string{
		"상태":  "health",
		"서비스": "services",
		"사용자": "users",
		"주문":  "orders",
		"상품":  "products",
		"전체":  "all",
	}

	for cmd, want := range cases {
		t.Run(cmd, func(t *testing.T) {
			store := &fakeRefresher{}
			d := NewDispatcher(store, nil)

			_, err := d.Execute(context.Background(), cmd)
			require.NoError(t, err)
			assert.Equal(t, []string{want}, store.calls)
		})
	}
}

func TestExecuteUnknownCommandCallsNothing(t *testing.T) {
	store := &fakeRefresher{}
	d := NewDispatcher(store, nil)

	in, err := d.Execute(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, in.Action)
	assert.Empty(t, store.calls)
}

func TestExecuteReturnsFetchError(t *testing.T) {
	store := &fakeRefresher{err: errors.New("boom")}
	d := NewDispatcher(store, nil)

	in, err := d.Execute(context.Background(), "상태")
	assert.Error(t, err)
	assert.Equal(t, "시스템 상태를 확인합니다...", in.Message)
}
