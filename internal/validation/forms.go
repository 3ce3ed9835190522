package validation

import (
	"github.com/hewenyu/eripotter-console/internal/core/model"
)

// 字段名与表单字段保持一致
const (
	FieldCompanyID       = "company_id"
	FieldCompanyName     = "company_name"
	FieldIndustry        = "industry"
	FieldCompanyCategory = "company_category"
	FieldAdminUsername   = "admin_username"
	FieldAdminEmail      = "admin_email"
	FieldAdminPassword   = "admin_password"
	FieldConfirmPassword = "confirm_password"

	FieldUserID = "user_id"
	FieldUserPW = "user_pw"
)

var (
	companyIDRules = fieldRules{
		field:    FieldCompanyID,
		required: "회사 ID를 입력해주세요.",
		rules: []rule{
			{tag: "min=3", message: "회사 ID는 최소 3자 이상이어야 합니다."},
			{tag: "company_id", message: "회사 ID는 영문, 숫자, 하이픈, 언더스코어만 사용 가능합니다."},
		},
	}
	companyNameRules = fieldRules{
		field: FieldCompanyName,
		rules: []rule{
			{tag: "min=2", message: "회사명은 최소 2자 이상이어야 합니다."},
		},
	}
	industryRules = fieldRules{
		field:    FieldIndustry,
		required: "산업분야를 입력해주세요.",
	}
	companyCategoryRules = fieldRules{
		field:    FieldCompanyCategory,
		required: "회사 카테고리를 선택해주세요.",
	}
	adminUsernameRules = fieldRules{
		field:    FieldAdminUsername,
		required: "관리자 사용자명을 입력해주세요.",
		rules: []rule{
			{tag: "min=4", message: "사용자명은 최소 4자 이상이어야 합니다."},
			{tag: "username", message: "사용자명은 영문, 숫자, 언더스코어만 사용 가능합니다."},
		},
	}
	adminEmailRules = fieldRules{
		field:    FieldAdminEmail,
		required: "관리자 이메일을 입력해주세요.",
		rules: []rule{
			{tag: "plain_email", message: "올바른 이메일 형식을 입력해주세요."},
		},
	}
	// 密码的长度和字符组成问题同时报告
	adminPasswordRules = fieldRules{
		field:    FieldAdminPassword,
		required: "관리자 비밀번호를 입력해주세요.",
		rules: []rule{
			{tag: "min=6", message: "비밀번호는 최소 6자 이상이어야 합니다."},
			{tag: "has_letter,has_digit", message: "비밀번호는 영문과 숫자를 포함해야 합니다."},
		},
		all: true,
	}
	confirmPasswordRules = fieldRules{
		field:    FieldConfirmPassword,
		required: "비밀번호 확인을 입력해주세요.",
	}

	userIDRules = fieldRules{
		field:    FieldUserID,
		required: "사용자명을 입력해주세요.",
		rules: []rule{
			{tag: "min=3", message: "사용자명은 최소 3자 이상이어야 합니다."},
		},
	}
	userPWRules = fieldRules{
		field:    FieldUserPW,
		required: "비밀번호를 입력해주세요.",
		rules: []rule{
			{tag: "min=6", message: "비밀번호는 최소 6자 이상이어야 합니다."},
		},
	}
)

// passwordMismatch 两次输入的密码不一致
const passwordMismatch = "비밀번호가 일치하지 않습니다."

// Register 校验公司注册表单，表单有效时返回nil
func (v *Validator) Register(f model.RegisterForm) FieldErrors {
	var errs FieldErrors
	errs = append(errs, v.check(f.CompanyID, companyIDRules)...)
	errs = append(errs, v.check(f.CompanyName, companyNameRules)...)
	errs = append(errs, v.check(f.Industry, industryRules)...)
	errs = append(errs, v.check(f.CompanyCategory, companyCategoryRules)...)
	errs = append(errs, v.check(f.AdminUsername, adminUsernameRules)...)
	errs = append(errs, v.check(f.AdminEmail, adminEmailRules)...)
	errs = append(errs, v.check(f.AdminPassword, adminPasswordRules)...)

	confirm := v.check(f.ConfirmPassword, confirmPasswordRules)
	if len(confirm) == 0 && f.ConfirmPassword != f.AdminPassword {
		confirm = []FieldError{{Field: FieldConfirmPassword, Message: passwordMismatch}}
	}
	errs = append(errs, confirm...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Login 校验登录表单，表单有效时返回nil
func (v *Validator) Login(f model.LoginForm) FieldErrors {
	var errs FieldErrors
	errs = append(errs, v.check(f.UserID, userIDRules)...)
	errs = append(errs, v.check(f.UserPW, userPWRules)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateRegister 使用默认校验器校验注册表单
func ValidateRegister(f model.RegisterForm) FieldErrors {
	return defaultValidator.Register(f)
}

// ValidateLogin 使用默认校验器校验登录表单
func ValidateLogin(f model.LoginForm) FieldErrors {
	return defaultValidator.Login(f)
}
