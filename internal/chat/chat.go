// Package chat AI诊断助手的聊天会话
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/kv"
)

const (
	// Greeting 会话开始时助手的问候语
	Greeting = "안녕하세요! 중소기업 진단 AI 어시스턴트입니다. 무엇을 도와드릴까요?"
	// Apology 请求失败时助手的回复
	Apology = "죄송합니다. 응답을 생성하는 중 오류가 발생했습니다. 다시 시도해주세요."

	// 本地没有登录令牌时使用的占位令牌
	placeholderToken = "dummy-token"
)

var (
	// ErrEmptyMessage 消息去掉空白后为空，不会发送
	ErrEmptyMessage = errors.New("메시지를 입력해주세요.")
	// ErrBusy 上一条消息仍在等待回复
	ErrBusy = errors.New("이전 메시지에 대한 응답을 기다리는 중입니다.")
	// ErrSessionNotFound 会话不存在
	ErrSessionNotFound = errors.New("chat session not found")
)

// Sender 聊天所需的远端操作
type Sender interface {
	SendChat(ctx context.Context, token string, req model.ChatRequest) (*model.ChatResponse, error)
}

// Session 一个聊天窗口，同一时间只允许一条消息在途
type Session struct {
	id      string
	api     Sender
	storage kv.Storage
	logger  config.Logger
	now     func() time.Time

	mu        sync.Mutex
	messages  []model.ChatMessage
	sessionID *int
	sending   bool
}

// NewSession 创建会话并写入问候语
func NewSession(api Sender, storage kv.Storage, logger config.Logger) *Session {
	if logger == nil {
		logger = config.NewNopLogger()
	}
	id := uuid.NewString()
	s := &Session{
		id:      id,
		api:     api,
		storage: storage,
		logger:  logger.With(zap.String("component", "chat"), zap.String("session", id)),
		now:     time.Now,
	}
	s.messages = []model.ChatMessage{s.message(Greeting, false)}
	return s
}

// ID 本地会话标识
func (s *Session) ID() string {
	return s.id
}

// RemoteSessionID 服务端分配的会话编号，尚未分配时为nil
func (s *Session) RemoteSessionID() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == nil {
		return nil
	}
	id := *s.sessionID
	return &id
}

// Sending 是否有消息在等待回复
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Messages 返回消息列表副本
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) message(text string, isUser bool) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: s.now(),
	}
}

// Send 发送一条消息并返回助手的回复。远端失败时回复固定的致歉消息，
// 空消息和在途期间的发送直接返回错误，不追加任何消息
func (s *Session) Send(ctx context.Context, text string) (*model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.sending = true
	s.messages = append(s.messages, s.message(text, true))
	req := model.ChatRequest{Message: text, SessionID: s.sessionID}
	s.mu.Unlock()

	resp, err := s.api.SendChat(ctx, s.token(ctx), req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false

	var reply model.ChatMessage
	if err != nil {
		s.logger.Warn("聊天请求失败", zap.Error(err))
		reply = s.message(Apology, false)
	} else {
		var answer string
		if resp != nil {
			answer = resp.Response
			// 服务端编号为0时保留原编号
			if resp.SessionID != nil && *resp.SessionID != 0 {
				id := *resp.SessionID
				s.sessionID = &id
			}
		}
		reply = s.message(answer, false)
	}
	s.messages = append(s.messages, reply)
	return &reply, nil
}

func (s *Session) token(ctx context.Context) string {
	if s.storage == nil {
		return placeholderToken
	}
	token, ok, err := s.storage.Get(ctx, kv.KeyAuthToken)
	if err != nil || !ok || token == "" {
		return placeholderToken
	}
	return token
}

// Manager 管理多个聊天会话
type Manager struct {
	api     Sender
	storage kv.Storage
	logger  config.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager 创建会话管理器
func NewManager(api Sender, storage kv.Storage, logger config.Logger) *Manager {
	return &Manager{
		api:      api,
		storage:  storage,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open 新建一个会话
func (m *Manager) Open() *Session {
	s := NewSession(m.api, m.storage, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get 获取会话
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close 删除会话
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
