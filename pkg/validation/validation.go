package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "shortlink/pkg/domain-errors"
	s "shortlink/pkg/string"
)

var linkIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// reservedLinkIDs are first path segments owned by fixed routes. A short link
// with one of these ids would never reach the redirect page.
var reservedLinkIDs = map[string]struct{}{
	"api":     {},
	"health":  {},
	"metrics": {},
	"uploads": {},
}

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("linkid", func(fl validator.FieldLevel) bool {
		return linkIDPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("unreserved", func(fl validator.FieldLevel) bool {
		return !IsReservedLinkID(fl.Field().String())
	})
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return IsWebURL(fl.Field().String())
	})
	return v
}

// IsReservedLinkID reports whether id collides with a fixed route. The check
// ignores case.
func IsReservedLinkID(id string) bool {
	_, ok := reservedLinkIDs[strings.ToLower(strings.TrimSpace(id))]
	return ok
}

// IsWebURL reports whether raw parses as an absolute http or https URL with a host.
func IsWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate validates a struct using the default validator and returns a domain error
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url", "weburl":
		return fmt.Sprintf("%s must be a valid url", field)
	case "linkid":
		return fmt.Sprintf("%s may only contain letters, numbers and hyphens", field)
	case "unreserved":
		return fmt.Sprintf("%s is reserved", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
