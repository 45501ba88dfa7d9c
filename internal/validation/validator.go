// Package validation checks edit intents with go-playground/validator and
// converts failures into VALIDATION domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
)

// MissingFieldsMessage is shown when any required field is absent.
const MissingFieldsMessage = "Please fill in all required fields"

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the catalog's enum validators registered:
//
//	variant   brush | dip
//	location  inner | outer
//	parttype  glaze | combo
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "variant", func(fl validator.FieldLevel) bool {
		return domain.Variant(fl.Field().String()).Valid()
	})
	mustRegister(v, "location", func(fl validator.FieldLevel) bool {
		return domain.Location(fl.Field().String()).Valid()
	})
	mustRegister(v, "parttype", func(fl validator.FieldLevel) bool {
		return domain.PartType(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors. Details map the
// JSON path of each failing field to a friendly message.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	missing := false
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = v.friendlyMessage(e)
		if e.Tag() == "required" {
			missing = true
		}
	}

	if missing {
		return domainerrors.ValidationWithDetails(MissingFieldsMessage, fieldErrors)
	}

	// Single-line summary so the blocking message names the field.
	keys := make([]string, 0, len(fieldErrors))
	for k := range fieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	first := keys[0]
	return domainerrors.ValidationWithDetails(first+" "+fieldErrors[first], fieldErrors)
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "variant":
		return "must be brush or dip"
	case "location":
		return "must be inner or outer"
	case "parttype":
		return "must be glaze or combo"
	default:
		return "is invalid"
	}
}
