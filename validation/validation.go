// Package validation registers the request binding rules shared by every handler.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	maxRating = decimal.NewFromInt(5)
	halfStep  = decimal.RequireFromString("0.5")
	// decimal(8,2)欄位可存的最大金額
	maxMoney = decimal.RequireFromString("999999.99")
)

// Register 將JSON欄位名稱與自訂規則掛到gin的驗證器
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return Configure(v)
}

func Configure(v *validator.Validate) error {
	// 使用JSON標籤名作為欄位名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"decimal": isDecimal,
		"money":   isMoney,
		"rating":  isRating,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func parse(fl validator.FieldLevel) (decimal.Decimal, bool) {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(field.String())
	return d, err == nil
}

func isDecimal(fl validator.FieldLevel) bool {
	_, ok := parse(fl)
	return ok
}

// 金額介於0到999999.99且最多兩位小數
func isMoney(fl validator.FieldLevel) bool {
	d, ok := parse(fl)
	return ok && !d.IsNegative() && !d.GreaterThan(maxMoney) && d.Equal(d.Round(2))
}

// 評分介於0.5到5之間，以0.5為單位
func isRating(fl validator.FieldLevel) bool {
	d, ok := parse(fl)
	if !ok || d.LessThan(halfStep) || d.GreaterThan(maxRating) {
		return false
	}
	return d.Mod(halfStep).IsZero()
}

// Describe 將驗證錯誤轉成回應訊息
func Describe(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request body"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "decimal":
		return fmt.Sprintf("%s must be a decimal value", fe.Field())
	case "money":
		return fmt.Sprintf("%s must be an amount between 0 and %s with at most two decimals", fe.Field(), maxMoney.StringFixed(2))
	case "rating":
		return fmt.Sprintf("%s must be between 0.5 and 5.0 in steps of 0.5", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
