package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/cohort/internal/domain/model"
)

const notBlankTag = "notblank"

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(candidateStructValidation, model.CandidateProfile{})
	return v
}

// candidateStructValidation requires at least one interest and one slot, a
// known gender preference and non-blank identifiers.
func candidateStructValidation(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(model.CandidateProfile)
	if !ok {
		return
	}
	if len(c.Interests) == 0 {
		sl.ReportError(c.Interests, "interests", "Interests", "required", "")
	}
	if len(c.Availability) == 0 {
		sl.ReportError(c.Availability, "availability", "Availability", "required", "")
	}
	if c.GenderPreference < model.NoPreference || c.GenderPreference > model.MixedRequired {
		sl.ReportError(c.GenderPreference, "gender_preference", "GenderPreference", "oneof", "")
	}
	if c.Gender != "" && strings.TrimSpace(c.Gender) == "" {
		sl.ReportError(c.Gender, "gender", "Gender", notBlankTag, "")
	}
	if c.ID != "" && strings.TrimSpace(c.ID) == "" {
		sl.ReportError(c.ID, "id", "ID", notBlankTag, "")
	}
}

// ValidateCandidate checks that a profile can take part in a matching run.
// The returned error wraps ErrInvalidCandidate.
func ValidateCandidate(c model.CandidateProfile) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+":"+fe.Tag())
		}
		return fmt.Errorf("%w %q: %s", ErrInvalidCandidate, c.ID, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w %q: %v", ErrInvalidCandidate, c.ID, err)
}
