package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "giveaway-engine/internal/common/errors"
)

const (
	// Границы длины полей гива (в символах)
	MinNameLength        = 2
	MaxNameLength        = 30
	MinDescriptionLength = 2
	MaxDescriptionLength = 256
)

// Теги-алиасы для моделей, чтобы границы жили в одном месте.
const (
	TagGiveawayName        = "giveaway_name"
	TagGiveawayDescription = "giveaway_description"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func validate() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(jsonFieldName)
		instance.RegisterAlias(TagGiveawayName, fmt.Sprintf("min=%d,max=%d", MinNameLength, MaxNameLength))
		instance.RegisterAlias(TagGiveawayDescription, fmt.Sprintf("min=%d,max=%d", MinDescriptionLength, MaxDescriptionLength))
	})
	return instance
}

// Struct проверяет структуру по тегам `validate` и возвращает ошибку
// валидации для первого невалидного поля.
func Struct(v interface{}) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), reason(fe))
	}
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Validation failed")
}

func reason(fe validator.FieldError) string {
	// ActualTag раскрывает алиасы до min/max
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("cannot exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("cannot exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
