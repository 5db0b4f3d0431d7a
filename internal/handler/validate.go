package handler

import (
	"errors"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/dharmapatha/portal/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("consultation_topic", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.ConsultationTopics, fl.Field().String())
	})
	v.RegisterValidation("guide_category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	v.RegisterValidation("assessment_type", func(fl validator.FieldLevel) bool {
		return model.AssessmentType(fl.Field().String()).Valid()
	})
	return v
}

// failedFields returns the struct field names that failed validation.
func failedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
