package validation

import (
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format accepted for drive dates
const DateLayout = "2006-01-02"

// Custom binding tags
const (
	TagISODate    = "isodate"
	TagNotBlank   = "notblank"
	TagSingleLine = "singleline"
)

// Register adds the custom rules to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagISODate, isoDate); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagSingleLine, singleLine); err != nil {
		return err
	}
	return v.RegisterValidation(TagNotBlank, notBlank)
}

// RegisterWithGin adds the custom rules to gin's default validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// singleLine rejects line breaks and other control characters. Drive names end
// up in mail headers.
func singleLine(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
}
