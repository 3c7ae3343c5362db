package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"nutricare-server/internal/scheduling"
)

// RegisterValidators adds the custom tags to gin's validator:
//
//	clock   "HH:MM"
//	isodate "YYYY-MM-DD"
//	crn     nutritionist registry number
//	strongpassword see ValidPassword
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	rules := map[string]validator.Func{
		"clock": func(fl validator.FieldLevel) bool {
			_, ok := scheduling.ParseClock(fl.Field().String())
			return ok
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		},
		"crn": func(fl validator.FieldLevel) bool {
			return ValidCRN(fl.Field().String())
		},
		"strongpassword": func(fl validator.FieldLevel) bool {
			return ValidPassword(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fieldMessage(e))
	}
	return strings.Join(messages, ", ")
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, e.Param())
	case "clock":
		return field + " must use the HH:MM format"
	case "isodate":
		return field + " must use the YYYY-MM-DD format"
	case "crn":
		return "invalid CRN"
	case "strongpassword":
		return "password must have at least 6 characters with upper and lower case letters and a digit or symbol"
	default:
		return fmt.Sprintf("%s failed on %s", field, e.Tag())
	}
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
// The body is cached so a handler may bind it more than once.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		reply(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters like BindAndValidate.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		reply(c, err)
		return false
	}
	return true
}

func reply(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return
	}
	BadRequest(c, "Invalid request payload: "+err.Error())
}
