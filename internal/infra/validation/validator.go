package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentbook/internal/app/middleware"
	"rentbook/internal/domain/shared/apperr"
)

// Validator runs struct tag checks on commands and queries before they
// reach a handler. Messages without tags pass through untouched.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(ctx context.Context, message any) error {
	err := v.validate.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperr.Validation(describe(message, fieldErrs))
	}
	return apperr.Wrap(apperr.KindInternal, "validation failed", err)
}

func describe(message any, fieldErrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	prefix := "invalid request"
	if keyed, ok := message.(interface{ Key() string }); ok {
		prefix = keyed.Key()
	}
	return prefix + ": " + strings.Join(parts, ", ")
}

var _ middleware.Validator = (*Validator)(nil)
