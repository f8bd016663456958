package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"hostel-leave-api/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// instance returns the shared validator with json field names and custom tags registered
func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// phone: at least 10 digits, ignoring separators
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			digits := 0
			for _, r := range fl.Field().String() {
				if unicode.IsDigit(r) {
					digits++
				}
			}
			return digits >= 10
		})

		_ = validate.RegisterValidation("leavetype", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseLeaveType(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Messages maps "field" or "field.tag" to a human message
type Messages map[string]string

// Struct validates v and returns a field -> message map (nil when valid).
// Lookup order for a failure is "field.tag", then "field", then a generic message.
func Struct(v interface{}, messages Messages) map[string]string {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		if _, seen := fields[field]; seen {
			continue
		}
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			fields[field] = msg
			continue
		}
		if msg, ok := messages[field]; ok {
			fields[field] = msg
			continue
		}
		fields[field] = defaultMessage(field, fe.Tag(), fe.Param())
	}
	return fields
}

// Error returns a *domain.ValidationError, or nil if fields is empty
func Error(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

func defaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	default:
		return field + " is invalid"
	}
}
