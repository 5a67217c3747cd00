package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/platform"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern  = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	stepIDPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	versionPattern = regexp.MustCompile(`^(?:latest|lts|v?[0-9][0-9A-Za-z.+_-]*)$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("step_id", func(fl validator.FieldLevel) bool {
			return stepIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			return model.Kind(fl.Field().String()).IsValid()
		})

		_ = v.RegisterValidation("version_constraint", func(fl validator.FieldLevel) bool {
			return versionPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return rigerrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(cfg.Steps))
	for i, step := range cfg.Steps {
		if first, exists := seen[step.ID]; exists {
			return rigerrors.NewValidationError(fieldForStep(i, "id"),
				fmt.Sprintf("duplicate step id %q (first used by steps[%d])", step.ID, first), nil)
		}
		seen[step.ID] = i

		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the fields each kind requires.
func validateStep(index int, step Step) error {
	required := func(field, value string) error {
		if strings.TrimSpace(value) == "" {
			return rigerrors.NewValidationError(fieldForStep(index, field),
				fmt.Sprintf("%s is required for %s steps", field, step.Kind), nil)
		}
		return nil
	}

	var err error
	switch step.ResourceKind() {
	case model.KindPackage:
		err = errors.Join(required("manager", step.Manager), required("package", step.Package))
	case model.KindBinary:
		err = required("binary", step.Binary)
		if err == nil && step.Install == nil {
			err = required("install.command", "")
		}
		if err == nil {
			if vErr := validatorInstance().Struct(step.Install); vErr != nil {
				err = rigerrors.NewValidationError(fieldForStep(index, "install.command"), "install.command is required for binary steps", vErr)
			}
		}
	case model.KindExtension:
		err = required("extension", step.Extension)
	case model.KindConfigBlock:
		err = errors.Join(required("file", step.File), required("marker", step.Marker))
		if err == nil && strings.Contains(step.Marker, "\n") {
			err = rigerrors.NewValidationError(fieldForStep(index, "marker"), "marker must be a single line", nil)
		}
	}
	if err != nil {
		return firstError(err)
	}

	if step.Kind != string(model.KindPackage) && step.Manager != "" {
		return rigerrors.NewValidationError(fieldForStep(index, "manager"),
			fmt.Sprintf("manager only applies to package steps, not %s", step.Kind), nil)
	}

	if step.When != "" {
		if _, err := platform.Compile(step.When, platform.Info{}); err != nil {
			return rigerrors.NewValidationError(fieldForStep(index, "when"), err.Error(), err)
		}
	}
	return nil
}

// firstError unwraps errors.Join so callers see a single ValidationError.
func firstError(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return rigerrors.NewValidationError(field, msg, err)
	}

	return rigerrors.NewValidationError("config", err.Error(), err)
}

// yamlishFieldName turns "Config.Steps[2].StepTimeout" into "steps[2].step_timeout".
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = snake(part)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && isLowerOrDigit(s[i-1]) {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isLowerOrDigit(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func fieldForStep(index int, field string) string {
	return fmt.Sprintf("steps[%d].%s", index, field)
}
