package serverutils

import (
	"fmt"
	"strings"

	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/pkg/expo"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("expo_token", func(fl validator.FieldLevel) bool {
		return expo.IsPushToken(fl.Field().String())
	})
	return v
}

// ValidateRequest runs struct tags and folds failures into one Validation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Wrap(apperror.KindValidation, "Invalid request", err)
	}

	messages := make([]string, 0, len(validationErrors))
	fields := make(map[string]interface{}, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fieldMessage(fe))
		fields[fe.Field()] = fe.Tag()
	}

	return apperror.Validation(strings.Join(messages, "; ")).WithDetails(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "expo_token":
		return "Invalid Expo push token format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
