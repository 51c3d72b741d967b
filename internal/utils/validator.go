package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"orggov-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	validate       *validator.Validate
	alphaNumDashRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("alphanumdash", func(fl validator.FieldLevel) bool {
		return alphaNumDashRe.MatchString(fl.Field().String())
	})
}

// ValidateStruct checks s against its validate tags and returns a
// validation error listing every failed field.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return domain.ValidationError("%s", FormatValidationErrors(err))
	}
	return nil
}

func FormatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, e.Field()+" is required")
		case "email":
			msgs = append(msgs, e.Field()+" must be a valid email address")
		case "min":
			msgs = append(msgs, e.Field()+" must be at least "+e.Param()+" characters")
		case "max":
			msgs = append(msgs, e.Field()+" must be at most "+e.Param()+" characters")
		case "oneof":
			msgs = append(msgs, e.Field()+" must be one of: "+e.Param())
		case "gt":
			msgs = append(msgs, e.Field()+" must be greater than "+e.Param())
		case "nefield":
			msgs = append(msgs, e.Field()+" must differ from "+e.Param())
		case "alphanumdash":
			msgs = append(msgs, e.Field()+" may only contain letters, digits and dashes")
		default:
			msgs = append(msgs, e.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// EmailInDomain reports whether email belongs to domain. An empty domain
// accepts every address.
func EmailInDomain(email, domainName string) bool {
	if domainName == "" {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.EqualFold(email[at+1:], strings.TrimPrefix(domainName, "@"))
}
