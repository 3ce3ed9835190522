// Package validation 表单的本地校验，校验失败的表单不会发出任何网络请求
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	companyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	usernamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterPattern    = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern     = regexp.MustCompile(`\d`)
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors 一次校验产生的全部字段错误，按字段顺序排列
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Has 字段是否存在错误
func (e FieldErrors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// For 返回字段的全部错误信息
func (e FieldErrors) For(field string) []string {
	var msgs []string
	for _, fe := range e {
		if fe.Field == field {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

// rule 一条校验规则，tag为validator的标签表达式
type rule struct {
	tag     string
	message string
}

// fieldRules 一个字段的规则。去掉空白后为空时，required非空则报告必填错误，
// 否则视为选填字段跳过；all为true时报告所有不满足的规则，否则在第一条失败处停止
type fieldRules struct {
	field    string
	required string
	rules    []rule
	all      bool
}

// Validator 基于go-playground/validator的表单校验器
type Validator struct {
	v *validator.Validate
}

// New 创建校验器并注册自定义标签
func New() *Validator {
	v := validator.New()

	patterns := map[string]*regexp.Regexp{
		"company_id":  companyIDPattern,
		"username":    usernamePattern,
		"plain_email": emailPattern,
		"has_letter":  letterPattern,
		"has_digit":   digitPattern,
	}
	for tag, re := range patterns {
		re := re
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}

	return &Validator{v: v}
}

func (v *Validator) check(value string, fr fieldRules) []FieldError {
	if strings.TrimSpace(value) == "" {
		if fr.required == "" {
			return nil
		}
		return []FieldError{{Field: fr.field, Message: fr.required}}
	}

	var errs []FieldError
	for _, r := range fr.rules {
		if err := v.v.Var(value, r.tag); err != nil {
			errs = append(errs, FieldError{Field: fr.field, Message: r.message})
			if !fr.all {
				break
			}
		}
	}
	return errs
}

var defaultValidator = New()
