package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request models to
// gin's validator engine. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		custom := map[string]validator.Func{
			"enterprise": func(fl validator.FieldLevel) bool {
				_, perr := models.ParseEnterprise(fl.Field().String())
				return perr == nil
			},
			"isodate": func(fl validator.FieldLevel) bool {
				_, perr := models.ParseDay(fl.Field().String())
				return perr == nil
			},
			"documenttype": func(fl validator.FieldLevel) bool {
				return models.DocumentType(fl.Field().String()).IsValid()
			},
		}
		for tag, fn := range custom {
			if rerr := v.RegisterValidation(tag, fn); rerr != nil {
				err = fmt.Errorf("failed to register %q validator: %w", tag, rerr)
				return
			}
		}
	})
	return err
}

// validationDetails renders binding errors as "field: rule" pairs.
func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", lowerFirst(fe.Field()), rule))
	}
	return strings.Join(parts, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
