// Package command 语音/文本命令栏的关键词解释器
package command

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/config"
)

// Action 命令对应的刷新动作
type Action string

const (
	ActionHealth   Action = "health"
	ActionServices Action = "services"
	ActionUsers    Action = "users"
	ActionOrders   Action = "orders"
	ActionProducts Action = "products"
	ActionAll      Action = "all"
	// ActionNone 未识别的命令，只回显
	ActionNone Action = "none"
)

// keywordRule 关键词规则，按顺序匹配第一条命中的规则
type keywordRule struct {
	keywords []string
	action   Action
	message  string
}

var rules = []keywordRule{
	{[]string{"상태", "헬스"}, ActionHealth, "시스템 상태를 확인합니다..."},
	{[]string{"서비스"}, ActionServices, "등록된 서비스 목록을 확인합니다..."},
	{[]string{"사용자", "유저"}, ActionUsers, "사용자 목록을 확인합니다..."},
	{[]string{"주문", "오더"}, ActionOrders, "주문 목록을 확인합니다..."},
	{[]string{"상품", "제품"}, ActionProducts, "상품 목록을 확인합니다..."},
	{[]string{"전체", "모든"}, ActionAll, "모든 데이터를 새로고침합니다..."},
}

// Interpretation 一条命令的解释结果
type Interpretation struct {
	Command string `json:"command"`
	Action  Action `json:"action"`
	Message string `json:"message"`
}

// Interpret 把命令文本映射为动作和提示信息，匹配不区分大小写
func Interpret(cmd string) Interpretation {
	lower := strings.ToLower(cmd)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Interpretation{Command: cmd, Action: r.action, Message: r.message}
			}
		}
	}
	return Interpretation{
		Command: cmd,
		Action:  ActionNone,
		Message: fmt.Sprintf("\"%s\" 명령을 인식했습니다.", cmd),
	}
}

// Refresher 命令可以触发的仓库读取操作
type Refresher interface {
	FetchHealth(ctx context.Context) error
	FetchServices(ctx context.Context) error
	FetchUsers(ctx context.Context) error
	FetchOrders(ctx context.Context) error
	FetchProducts(ctx context.Context) error
	RefreshAll(ctx context.Context)
}

// Dispatcher 解释命令并调用仓库
type Dispatcher struct {
	store  Refresher
	logger config.Logger
}

// NewDispatcher 创建命令分发器
func NewDispatcher(store Refresher, logger config.Logger) *Dispatcher {
	if logger == nil {
		logger = config.NewNopLogger()
	}
	return &Dispatcher{
		store:  store,
		logger: logger.With(zap.String("component", "command")),
	}
}

// Execute 执行命令。读取失败只体现在仓库的错误槽中，这里仍返回解释结果
func (d *Dispatcher) Execute(ctx context.Context, cmd string) (Interpretation, error) {
	in := Interpret(cmd)
	d.logger.Info("执行命令", zap.String("command", cmd), zap.String("action", string(in.Action)))

	var err error
	switch in.Action {
	case ActionHealth:
		err = d.store.FetchHealth(ctx)
	case ActionServices:
		err = d.store.FetchServices(ctx)
	case ActionUsers:
		err = d.store.FetchUsers(ctx)
	case ActionOrders:
		err = d.store.FetchOrders(ctx)
	case ActionProducts:
		err = d.store.FetchProducts(ctx)
	case ActionAll:
		d.store.RefreshAll(ctx)
	}
	return in, err
}
