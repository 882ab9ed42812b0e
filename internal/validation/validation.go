package validation

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// Errors collects every field that failed validation.
type Errors []FieldError

func (v Errors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		if err.Param != "" {
			parts[i] = err.Field + " failed on " + err.Tag + "=" + err.Param
		} else {
			parts[i] = err.Field + " failed on " + err.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct validates s against its `validate` tags. Field names in the
// returned Errors are the json names.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(Errors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, FieldError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// ValidateSettings checks a settings record, including the rule that an
// enabled daily reminder carries a time.
func ValidateSettings(s models.NotificationSettings) error {
	var failures Errors
	if err := ValidateStruct(s); err != nil {
		fe, ok := err.(Errors)
		if !ok {
			return err
		}
		failures = append(failures, fe...)
	}
	if s.DailyReminder && s.ReminderTime == nil {
		failures = append(failures, FieldError{Field: "reminderTime", Tag: "required_if", Param: "dailyReminder true"})
	}
	if len(failures) > 0 {
		return failures
	}
	return nil
}

// ValidateTimeFormat reports whether s is a 24-hour HH:MM time.
func ValidateTimeFormat(s string) bool {
	if len(s) != len(constants.TimeFormat) {
		return false
	}
	_, err := time.Parse(constants.TimeFormat, s)
	return err == nil
}

func isHHMM(fl validator.FieldLevel) bool {
	return ValidateTimeFormat(fl.Field().String())
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if comma := strings.Index(name, ","); comma != -1 {
				name = name[:comma]
			}
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("hhmm", isHHMM)
	})
	return validate
}
