package validation

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vinodismyname/sellerscope/internal/portfolio"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/pkg/pagination"
)

var (
	v    *validator.Validate
	once sync.Once
)

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Custom: supported report kind name
		_ = v.RegisterValidation("report_kind", func(fl validator.FieldLevel) bool {
			_, ok := reports.ParseKind(fl.Field().String())
			return ok
		})
		// Custom: report path extension must suit the sibling Kind field
		_ = v.RegisterValidation("report_ext", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			kind, ok := siblingKind(fl)
			if !ok {
				return true // kind itself is reported by report_kind
			}
			ext := strings.ToLower(filepath.Ext(s))
			for _, e := range kind.Extensions() {
				if ext == e {
					return true
				}
			}
			return false
		})
		// Custom: keep/kill action name
		_ = v.RegisterValidation("portfolio_action", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty means all actions
			}
			_, ok := portfolio.ParseAction(strings.ToUpper(s))
			return ok
		})
		// Custom: marketplace code
		_ = v.RegisterValidation("marketplace", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true
			}
			return reports.KnownMarketplace(s)
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
			}
			if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
				return false
			}
			if _, err := pagination.DecodeCursor(s); err != nil {
				return false
			}
			return true
		})
	})
	return v
}

func siblingKind(fl validator.FieldLevel) (reports.Kind, bool) {
	parent := fl.Parent()
	if !parent.IsValid() {
		return "", false
	}
	kf := parent.FieldByName("Kind")
	if !kf.IsValid() || kf.Kind().String() != "string" {
		return "", false
	}
	return reports.ParseKind(kf.String())
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "required_without":
				return fmt.Sprintf("VALIDATION: %s is required when %s is empty", field, strings.ToLower(fe.Param()))
			case "report_kind":
				return "VALIDATION: unknown report kind; use one of " + kindList()
			case "report_ext":
				return "UNSUPPORTED_FORMAT: file extension does not match the report kind"
			case "portfolio_action":
				return "VALIDATION: action must be one of INVEST, MAINTAIN, OPTIMIZE, HARVEST, EXIT"
			case "marketplace":
				return "VALIDATION: unknown marketplace code; examples: US, UK, DE"
			case "cursor":
				return "CURSOR_INVALID: failed to decode cursor; restart pagination"
			case "min", "max", "gte", "lte", "gt", "lt":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}

func kindList() string {
	names := make([]string, len(reports.Kinds))
	for i, k := range reports.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
