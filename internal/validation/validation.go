// Package validation binds path parameters into request payloads and
// validates them with go-playground/validator, turning failures into 400
// responses with one FieldError per offending parameter.
package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/deppfellow/crashmap/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that cannot be expressed as a struct tag.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their route parameter name (minLatitude, not MinLatitude).
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("param"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	// ParseFloat accepts "NaN", which compares false against min and max.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

var pathBinder = &echo.DefaultBinder{}

// BindAndValidate binds the route parameters of c into payload and validates
// it. Only the path is read; query strings and bodies are ignored. Both
// parse failures and rule violations come back as a 400 *errs.HTTPError.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := unescapePathParams(c); err != nil {
		return err
	}

	if err := pathBinder.BindPathParams(c, payload); err != nil {
		return bindError(c, err)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// unescapePathParams decodes parameters echo routed on the raw path, which
// happens when a client escapes characters such as '&' or '/'.
func unescapePathParams(c echo.Context) error {
	if c.Request().URL.RawPath == "" {
		return nil
	}

	names := c.ParamNames()
	values := c.ParamValues()
	unescaped := make([]string, len(values))
	for i, value := range values {
		decoded, err := url.PathUnescape(value)
		if err != nil {
			field := ""
			if i < len(names) {
				field = names[i]
			}
			return errs.NewBadRequestError("Validation failed", true, nil, []errs.FieldError{{
				Field: field,
				Error: "is not a valid path segment",
			}}, nil)
		}
		unescaped[i] = decoded
	}
	c.SetParamValues(unescaped...)
	return nil
}

// bindError maps an echo binding failure onto the parameter that caused it.
func bindError(c echo.Context, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		msg := "must be a valid number"
		if numErr.Func == "ParseInt" || numErr.Func == "ParseUint" {
			msg = "must be a valid integer"
		}
		if errors.Is(numErr.Err, strconv.ErrRange) {
			msg = "is out of range"
		}

		field := ""
		names := c.ParamNames()
		for i, value := range c.ParamValues() {
			if value == numErr.Num && i < len(names) {
				field = names[i]
				break
			}
		}
		return errs.NewBadRequestError("Validation failed", true, nil, []errs.FieldError{{
			Field: field,
			Error: msg,
		}}, nil)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return errs.NewBadRequestError(fmt.Sprint(httpErr.Message), false, nil, nil, nil)
	}
	return errs.NewBadRequestError(err.Error(), false, nil, nil, nil)
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, e := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Error: err.Error()}}
	}

	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: e.Field(),
			Error: fieldMessage(e),
		})
	}

	return "Validation failed", fieldErrors
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "finite":
		return "must be a finite number"

	case "min", "gte":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max", "lte":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "ltefield":
		return fmt.Sprintf("must not be greater than %s", lowerFirst(err.Param()))

	case "gtefield":
		return fmt.Sprintf("must not be less than %s", lowerFirst(err.Param()))

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "printascii", "excludesall":
		return "contains characters that are not allowed"

	default:
		if err.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", err.Field(), err.Tag(), err.Param())
		}
		return fmt.Sprintf("%s: %s", err.Field(), err.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
