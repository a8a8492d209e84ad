package catalog

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var ErrValidation = errors.New("validation failed")

var (
	phoneRegex      = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	emailRegex      = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	alphaSpaceRegex = regexp.MustCompile(`^[\p{L}\s]+$`)
	upperSpaceRegex = regexp.MustCompile(`^[\p{Lu}\s]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 错误信息中使用列名而不是 Go 字段名
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("rdb"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	mustRegister(v, "phone", phoneRegex)
	mustRegister(v, "looseemail", emailRegex)
	mustRegister(v, "alphaspace", alphaSpaceRegex)
	mustRegister(v, "upperspace", upperSpaceRegex)

	v.RegisterStructValidation(validateHospitalStay, HospitalStay{})
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// 出院日期不能早于入院日期，两者均为 YYYY-MM-DD，可按字符串比较
func validateHospitalStay(sl validator.StructLevel) {
	stay := sl.Current().Interface().(HospitalStay)
	if stay.DischargeDate == nil || stay.AdmitDate == "" {
		return
	}
	if *stay.DischargeDate < stay.AdmitDate {
		sl.ReportError(stay.DischargeDate, "DischargeDate", "DischargeDate", "gtedate", "AdmitDate")
	}
}

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError 记录未通过校验，操作不会被执行
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// ValidateRecord 对记录执行全部字段规则和跨字段规则
func ValidateRecord(record Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate.Struct failed")
	}
	ve := &ValidationError{Entity: record.Entity()}
	for _, fe := range verrs {
		ve.add(fe.Field(), fe.Tag(), ruleMessage(fe.Tag(), fe.Param()))
	}
	return ve
}

// ValidateValue 用字段规则校验单个值，供表单逐项提示使用
func ValidateValue(field Field, value any) error {
	if field.Rule == "" {
		return nil
	}
	if err := validate.Var(value, field.Rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := &ValidationError{}
			ve.add(field.Name, verrs[0].Tag(), ruleMessage(verrs[0].Tag(), verrs[0].Param()))
			return ve
		}
		return errors.Wrap(err, "validate.Var failed")
	}
	return nil
}

func ruleMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "alpha", "alphaunicode":
		return "must contain only alphabetic characters"
	case "alphaspace":
		return "must contain only letters and spaces"
	case "upperspace":
		return "must contain only uppercase letters and spaces"
	case "phone":
		return "must be in the format XXX-XXX-XXXX"
	case "looseemail":
		return "must be a valid email address"
	case "number":
		return "must contain only digits"
	case "gt":
		return "must be greater than " + param
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "datetime":
		return "must match the format " + param
	case "gtedate":
		return "must be on or after " + param
	default:
		return "failed rule " + tag
	}
}
