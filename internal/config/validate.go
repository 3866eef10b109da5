package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is wrapped by every ValidationError.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ValidationError reports one offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

var validate = validator.New()

// Validate checks field ranges and cross references: names are unique,
// wires and script events name known components. Every problem found is
// returned, joined.
func (a *Aircraft) Validate() error {
	var errs []error

	if err := validate.Struct(a); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, &ValidationError{
				Field:   fe.Namespace(),
				Message: describe(fe),
			})
		}
	}

	known := make(map[string]bool)
	for _, name := range a.Names() {
		if known[name] {
			errs = append(errs, &ValidationError{Field: name, Message: "duplicate component name"})
		}
		known[name] = true
	}

	electrical := make(map[string]bool)
	for _, name := range a.ElectricalNames() {
		electrical[name] = true
	}
	for i, w := range a.Wires {
		field := fmt.Sprintf("Aircraft.Wires[%d]", i)
		if w.From != "" && !electrical[w.From] {
			errs = append(errs, &ValidationError{Field: field + ".From", Message: fmt.Sprintf("unknown component %q", w.From)})
		}
		if w.To != "" && !electrical[w.To] {
			errs = append(errs, &ValidationError{Field: field + ".To", Message: fmt.Sprintf("unknown component %q", w.To)})
		}
	}

	for i, ev := range a.Script {
		if ev.Target != "" && !known[ev.Target] {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("Aircraft.Script[%d].Target", i),
				Message: fmt.Sprintf("unknown component %q", ev.Target),
			})
		}
	}

	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gtefield", "ltefield", "ltfield":
		return fmt.Sprintf("must satisfy %s %s", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("must be %s %s, got %v", fe.Tag(), fe.Param(), fe.Value())
	}
}
