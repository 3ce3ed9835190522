package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hewenyu/eripotter-console/internal/account"
	"github.com/hewenyu/eripotter-console/internal/chat"
	"github.com/hewenyu/eripotter-console/internal/command"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/registration"
	"github.com/hewenyu/eripotter-console/internal/validation"
)

// FlowHandler 处理登录、注册、聊天和命令栏等页面流程
type FlowHandler struct {
	account      account.Service
	registration registration.Service
	chats        *chat.Manager
	commands     *command.Dispatcher
}

// NewFlowHandler 创建页面流程处理器
func NewFlowHandler(acc account.Service, reg registration.Service, chats *chat.Manager, commands *command.Dispatcher) *FlowHandler {
	return &FlowHandler{
		account:      acc,
		registration: reg,
		chats:        chats,
		commands:     commands,
	}
}

// RegisterRoutes 注册API路由
func (h *FlowHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/account/entry", h.accountEntry)
	g.POST("/account/login", h.accountLogin)

	g.POST("/register", h.register)
	g.GET("/companies", h.listCompanies)

	g.POST("/chat/sessions", h.openChat)
	g.GET("/chat/sessions/:sessionId", h.getChat)
	g.POST("/chat/sessions/:sessionId/messages", h.sendChat)
	g.DELETE("/chat/sessions/:sessionId", h.closeChat)

	g.POST("/command", h.runCommand)
}

// accountEntry 返回登录页初始状态
func (h *FlowHandler) accountEntry(c echo.Context) error {
	state, err := h.account.Entry(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "读取登录状态失败: "+err.Error(), nil)
	}
	return ok(c, "查询成功", state)
}

// accountLogin 账号登录
func (h *FlowHandler) accountLogin(c echo.Context) error {
	var form model.LoginForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c)
	}

	result, err := h.account.Login(c.Request().Context(), form)
	if err != nil {
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			return invalidForm(c, fieldErrs)
		}

		var accErr *account.Error
		if errors.As(err, &accErr) {
			return fail(c, upstreamStatus(accErr.Err), accErr.Message, nil)
		}
		return fail(c, http.StatusInternalServerError, err.Error(), nil)
	}
	return ok(c, "登录成功", result)
}

// register 公司注册
func (h *FlowHandler) register(c echo.Context) error {
	var form model.RegisterForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c)
	}

	result, err := h.registration.Register(c.Request().Context(), form)
	if err != nil {
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			return invalidForm(c, fieldErrs)
		}

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			status := upstreamStatus(regErr.Err)
			if errors.Is(err, registration.ErrDuplicateCompany) || errors.Is(err, registration.ErrDuplicateUsername) {
				status = http.StatusConflict
			}
			return fail(c, status, regErr.Message, nil)
		}
		return fail(c, http.StatusInternalServerError, err.Error(), nil)
	}
	return c.JSON(http.StatusCreated, successResponse(http.StatusCreated, "注册成功", result))
}

// listCompanies 返回本地登记的公司
func (h *FlowHandler) listCompanies(c echo.Context) error {
	companies, err := h.registration.Companies(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "读取公司列表失败: "+err.Error(), nil)
	}
	return ok(c, "查询成功", map[string]interface{}{
		"companies": companies,
	})
}

type chatView struct {
	ID              string              `json:"id"`
	RemoteSessionID *int                `json:"session_id"`
	Sending         bool                `json:"sending"`
	Messages        []model.ChatMessage `json:"messages"`
}

func viewOf(s *chat.Session) chatView {
	return chatView{
		ID:              s.ID(),
		RemoteSessionID: s.RemoteSessionID(),
		Sending:         s.Sending(),
		Messages:        s.Messages(),
	}
}

// openChat 新建聊天会话
func (h *FlowHandler) openChat(c echo.Context) error {
	s := h.chats.Open()
	return c.JSON(http.StatusCreated, successResponse(http.StatusCreated, "会话已创建", viewOf(s)))
}

// getChat 查询聊天会话
func (h *FlowHandler) getChat(c echo.Context) error {
	s, err := h.chats.Get(c.Param("sessionId"))
	if err != nil {
		return fail(c, http.StatusNotFound, "会话不存在", nil)
	}
	return ok(c, "查询成功", viewOf(s))
}

// sendChat 发送聊天消息
func (h *FlowHandler) sendChat(c echo.Context) error {
	s, err := h.chats.Get(c.Param("sessionId"))
	if err != nil {
		return fail(c, http.StatusNotFound, "会话不存在", nil)
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	reply, err := s.Send(c.Request().Context(), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, chat.ErrBusy):
		return fail(c, http.StatusConflict, err.Error(), nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, err.Error(), nil)
	}
	return ok(c, "发送成功", reply)
}

// closeChat 关闭聊天会话
func (h *FlowHandler) closeChat(c echo.Context) error {
	h.chats.Close(c.Param("sessionId"))
	return ok(c, "会话已关闭", nil)
}

// runCommand 执行命令栏输入
func (h *FlowHandler) runCommand(c echo.Context) error {
	var req struct {
		Command string `json:"command"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	// 读取失败只记录在仓库中，命令本身总是被接受
	in, _ := h.commands.Execute(c.Request().Context(), req.Command)
	return ok(c, in.Message, in)
}
