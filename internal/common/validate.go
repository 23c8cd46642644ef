package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator 共享的校验器，字段名取 json tag
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// FieldError 单个字段的校验失败
type FieldError struct {
	Field    string `json:"field"`
	Tag      string `json:"tag"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
}

// ValidationError 表单校验失败，Fields 按结构体字段顺序排列
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Has 某个字段是否校验失败
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ValidateStruct 校验失败时返回 *ValidationError
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return WrapError(ErrCodeInvalidInput, "validation", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(errs))}
	for _, e := range errs {
		fe := FieldError{Field: e.Field(), Tag: e.Tag(), Expected: e.Param()}
		switch e.Tag() {
		case "required":
			fe.Message = fmt.Sprintf("Field '%s' is required", e.Field())
		case "email":
			fe.Message = fmt.Sprintf("Field '%s' must be a valid email address", e.Field())
		case "min":
			fe.Message = fmt.Sprintf("Field '%s' must be at least %s characters long", e.Field(), e.Param())
		case "oneof":
			fe.Message = fmt.Sprintf("Field '%s' must be one of [%s]", e.Field(), e.Param())
		default:
			fe.Message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		out.Fields = append(out.Fields, fe)
	}
	return out
}
