package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hewenyu/eripotter-console/internal/apiclient"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/kv"
)

type fakeSender struct {
	mu     sync.Mutex
	tokens []string
	reqs   []model.ChatRequest
	resp   *model.ChatResponse
	err    error
	gate   chan struct{}
}

func (f *fakeSender) SendChat(ctx context.Context, token string, req model.ChatRequest) (*model.ChatResponse, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.reqs = append(f.reqs, req)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return f.resp, f.err
}

func intPtr(v int) *int { return &v }

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := NewSession(&fakeSender{}, kv.NewMemoryStorage(), nil)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Greeting, msgs[0].Text)
	assert.False(t, msgs[0].IsUser)
	assert.NotEmpty(t, msgs[0].ID)
	assert.Nil(t, s.RemoteSessionID())
}

func TestSendAppendsReplyAndAdoptsSessionID(t *testing.T) {
	api := &fakeSender{resp: &model.ChatResponse{Response: "진단 결과입니다", SessionID: intPtr(7)}}
	s := NewSession(api, kv.NewMemoryStorage(), nil)
	ctx := context.Background()

	reply, err := s.Send(ctx, "재무 상태를 알려줘")
	require.NoError(t, err)
	assert.Equal(t, "진단 결과입니다", reply.Text)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.True(t, msgs[1].IsUser)
	assert.Equal(t, "재무 상태를 알려줘", msgs[1].Text)
	assert.NotEqual(t, msgs[1].ID, msgs[2].ID)
	assert.Equal(t, 7, *s.RemoteSessionID())

	_, err = s.Send(ctx, "다음 질문")
	require.NoError(t, err)
	require.Len(t, api.reqs, 2)
	assert.Nil(t, api.reqs[0].SessionID, "首次请求没有会话编号")
	assert.Equal(t, 7, *api.reqs[1].SessionID, "后续请求带上服务端分配的编号")
}

func TestSendUsesStoredToken(t *testing.T) {
	api := &fakeSender{resp: &model.ChatResponse{Response: "ok"}}
	storage := kv.NewMemoryStorage()
	s := NewSession(api, storage, nil)
	ctx := context.Background()

	_, err := s.Send(ctx, "hi")
	require.NoError(t, err)

	require.NoError(t, storage.Set(ctx, kv.KeyAuthToken, "jwt"))
	_, err = s.Send(ctx, "hi again")
	require.NoError(t, err)

	assert.Equal(t, []string{"dummy-token", "jwt"}, api.tokens)
}

func TestSendBlankIsIgnored(t *testing.T) {
	api := &fakeSender{}
	s := NewSession(api, kv.NewMemoryStorage(), nil)

	_, err := s.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, s.Messages(), 1)
	assert.Empty(t, api.reqs)
}

func TestSendWhileBusyIsIgnored(t *testing.T) {
	api := &fakeSender{resp: &model.ChatResponse{Response: "ok"}, gate: make(chan struct{})}
	s := NewSession(api, kv.NewMemoryStorage(), nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, "first")
		done <- err
	}()
	require.Eventually(t, s.Sending, time.Second, 5*time.Millisecond)

	_, err := s.Send(ctx, "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(api.gate)
	require.NoError(t, <-done)
	assert.False(t, s.Sending())
	assert.Len(t, s.Messages(), 3, "在途期间的发送不追加消息")
}

func TestSendFailureAppendsApology(t *testing.T) {
	api := &fakeSender{err: errors.New("gateway down")}
	s := NewSession(api, kv.NewMemoryStorage(), nil)

	reply, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, Apology, reply.Text)
	assert.Len(t, s.Messages(), 3)
	assert.False(t, s.Sending())
}

func TestManager(t *testing.T) {
	m := NewManager(&fakeSender{}, kv.NewMemoryStorage(), nil)

	s := m.Open()
	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	m.Close(s.ID())
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendAgainstGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chatbot/send", r.URL.Path)
		assert.Equal(t, "Bearer dummy-token", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["message"])
		assert.Contains(t, body, "session_id")
		assert.Nil(t, body["context"])

		_, _ = w.Write([]byte(`{"response":"안녕하세요","session_id":3}`))
	}))
	defer server.Close()

	s := NewSession(apiclient.New(server.URL, nil), kv.NewMemoryStorage(), nil)
	reply, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", reply.Text)
	assert.Equal(t, 3, *s.RemoteSessionID())
}
