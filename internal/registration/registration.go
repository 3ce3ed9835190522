// Package registration 公司自助注册流程
package registration

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/eripotter-console/internal/apiclient"
	"github.com/hewenyu/eripotter-console/internal/config"
	"github.com/hewenyu/eripotter-console/internal/core/model"
	"github.com/hewenyu/eripotter-console/internal/kv"
	"github.com/hewenyu/eripotter-console/internal/validation"
)

const (
	// 服务端没有返回message时的提示
	msgSignupFailed = "회사 등록에 실패했습니다."
	// 请求未完成时的提示
	msgSignupUnreachable = "회사 등록 중 오류가 발생했습니다. 백엔드 연결을 확인해주세요."
)

var (
	// ErrDuplicateCompany 本地已登记相同的公司ID
	ErrDuplicateCompany = errors.New("이미 존재하는 회사 ID입니다.")
	// ErrDuplicateUsername 本地最近注册的管理员使用了相同的用户名
	ErrDuplicateUsername = errors.New("이미 존재하는 사용자명입니다.")
)

// Error 注册失败，Message为展示给用户的整体提示
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

// Signer 注册所需的远端操作
type Signer interface {
	Signup(ctx context.Context, req model.SignupRequest) error
}

// Result 注册成功后保存的本地记录
type Result struct {
	Company model.Company      `json:"company"`
	Admin   model.AdminAccount `json:"admin"`
}

// Service 公司注册服务
type Service interface {
	// Register 校验表单、提交注册并登记本地记录
	Register(ctx context.Context, form model.RegisterForm) (*Result, error)

	// Companies 返回本地登记的公司列表
	Companies(ctx context.Context) ([]model.Company, error)
}

type registrationService struct {
	api     Signer
	storage kv.Storage
	logger  config.Logger
	now     func() time.Time
}

// NewService 创建公司注册服务
func NewService(api Signer, storage kv.Storage, logger config.Logger) Service {
	if logger == nil {
		logger = config.NewNopLogger()
	}
	return &registrationService{
		api:     api,
		storage: storage,
		logger:  logger.With(zap.String("component", "registration")),
		now:     time.Now,
	}
}

// isoTimestamp 毫秒精度的UTC时间字符串
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (s *registrationService) Register(ctx context.Context, form model.RegisterForm) (*Result, error) {
	if errs := validation.ValidateRegister(form); errs != nil {
		return nil, errs
	}

	var companyName *string
	if form.CompanyName != "" {
		name := form.CompanyName
		companyName = &name
	}

	req := model.SignupRequest{
		Company: model.SignupCompany{
			CompanyID:       form.CompanyID,
			CompanyName:     companyName,
			Industry:        form.Industry,
			CompanyCategory: form.CompanyCategory,
		},
		Admin: model.SignupAdmin{
			Username: form.AdminUsername,
			Email:    form.AdminEmail,
			Password: form.AdminPassword,
		},
		Timestamp: isoTimestamp(s.now()),
	}

	if err := s.api.Signup(ctx, req); err != nil {
		s.logger.Warn("公司注册请求失败", zap.String("company_id", form.CompanyID), zap.Error(err))
		return nil, &Error{Message: signupErrorMessage(err), Err: err}
	}

	companies, err := s.Companies(ctx)
	if err != nil {
		return nil, &Error{Message: msgSignupFailed, Err: err}
	}
	for _, c := range companies {
		if c.CompanyID == form.CompanyID {
			return nil, &Error{Message: ErrDuplicateCompany.Error(), Err: ErrDuplicateCompany}
		}
	}

	var existing model.AdminAccount
	found, err := kv.GetJSON(ctx, s.storage, kv.KeyUser, &existing)
	if err != nil {
		return nil, &Error{Message: msgSignupFailed, Err: err}
	}
	if found && existing.Username == form.AdminUsername {
		return nil, &Error{Message: ErrDuplicateUsername.Error(), Err: ErrDuplicateUsername}
	}

	registeredAt := isoTimestamp(s.now())
	result := &Result{
		Company: model.Company{
			CompanyID:       form.CompanyID,
			CompanyName:     companyName,
			Industry:        form.Industry,
			CompanyCategory: form.CompanyCategory,
			AdminUsername:   form.AdminUsername,
			RegisteredAt:    registeredAt,
		},
		Admin: model.AdminAccount{
			Username:     form.AdminUsername,
			Email:        form.AdminEmail,
			CompanyID:    form.CompanyID,
			Role:         model.RoleAdmin,
			RegisteredAt: registeredAt,
		},
	}

	companies = append(companies, result.Company)
	if err := kv.SetJSON(ctx, s.storage, kv.KeyCompanies, companies); err != nil {
		return nil, &Error{Message: msgSignupFailed, Err: err}
	}
	if err := kv.SetJSON(ctx, s.storage, kv.KeyUser, result.Admin); err != nil {
		return nil, &Error{Message: msgSignupFailed, Err: err}
	}

	s.logger.Info("公司注册成功",
		zap.String("company_id", form.CompanyID),
		zap.String("admin_username", form.AdminUsername))
	return result, nil
}

func (s *registrationService) Companies(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	if _, err := kv.GetJSON(ctx, s.storage, kv.KeyCompanies, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// signupErrorMessage 优先使用服务端返回的message
func signupErrorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgSignupFailed
	}
	return msgSignupUnreachable
}
