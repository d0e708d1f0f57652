package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/okian/quizrewards/internal/domain/model"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			_, err := model.ParseKind(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("tournament", func(fl validator.FieldLevel) bool {
			_, err := model.ParseTournamentKind(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// validateRequest checks req against its struct tags. The returned map is keyed
// by lower-cased field name.
func validateRequest(req any) (map[string]string, error) {
	err := getValidator().Struct(req)
	if err == nil {
		return nil, nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	fields := make(map[string]string, len(ve))
	for _, e := range ve {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			fields[field] = "This field is required"
		case "datetime":
			fields[field] = "Must be a date formatted YYYY-MM-DD"
		case "kind":
			fields[field] = "Must be one of gold, gem, candy, usdc"
		case "tournament":
			fields[field] = "Must be one of streak, pvp"
		case "number":
			fields[field] = "Must be a number"
		case "max", "lte":
			fields[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min", "gte":
			fields[field] = fmt.Sprintf("Must be at least %s", e.Param())
		default:
			fields[field] = "Invalid value"
		}
	}
	return fields, ErrBadRequest
}
