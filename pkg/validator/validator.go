// Package validator checks resolved command options with go-playground
// validator and reports failures as *apperr.AppError suggestions.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/milan604/vergen/pkg/apperr"

	gvalidator "github.com/go-playground/validator/v10"
)

// TagErrorBuilder describes how to convert a validator.FieldError into a message
type TagErrorBuilder struct {
	Code    *apperr.ErrorCode
	Builder func(fe gvalidator.FieldError) string
}

// Validator is the wrapper around go-playground validator with extra features.
type Validator struct {
	v                *gvalidator.Validate
	tagErrorBuilders map[string]TagErrorBuilder
}

// New creates a Validator that reports fields by their mapstructure (config
// key) name and knows the "regexp" tag.
func New() *Validator {
	v := gvalidator.New(gvalidator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	vi := &Validator{
		v:                v,
		tagErrorBuilders: make(map[string]TagErrorBuilder),
	}
	// Only fails on a malformed tag name, which "regexp" is not.
	_ = vi.RegisterValidation("regexp", validRegexp)

	vi.RegisterTagError("oneof", apperr.ErrorCodeInvalidConfig, func(fe gvalidator.FieldError) string {
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	})
	vi.RegisterTagError("required_if", apperr.ErrorCodeInvalidConfig, func(fe gvalidator.FieldError) string {
		return "is required by the selected options"
	})
	vi.RegisterTagError("regexp", apperr.ErrorCodeInvalidConfig, func(fe gvalidator.FieldError) string {
		return fmt.Sprintf("%q is not a valid regular expression", fe.Value())
	})
	return vi
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml", "json"} {
		if name := getTagName(f, tag); name != "" {
			return name
		}
	}
	return f.Name
}

// helper to get tag name
func getTagName(f reflect.StructField, tagName string) string {
	tagValue := f.Tag.Get(tagName)
	if tagValue == "-" {
		return ""
	}
	return strings.SplitN(tagValue, ",", 2)[0]
}

func validRegexp(fl gvalidator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := regexp.Compile(s)
	return err == nil
}

// RegisterValidation registers a custom validator (name) to the engine.
func (vi *Validator) RegisterValidation(tag string, fn gvalidator.Func) error {
	return vi.v.RegisterValidation(tag, fn)
}

// RegisterTagError allows mapping tag -> ErrorCode + message builder.
func (vi *Validator) RegisterTagError(tag string, code *apperr.ErrorCode, builder func(gvalidator.FieldError) string) {
	vi.tagErrorBuilders[tag] = TagErrorBuilder{Code: code, Builder: builder}
}

// Struct validates s and returns nil or an *apperr.AppError.
func (vi *Validator) Struct(s any) error {
	if err := vi.v.Struct(s); err != nil {
		return vi.ParseError(err)
	}
	return nil
}

// ParseError converts a validator error into *apperr.AppError. The code is the
// one registered for the first failing tag, ErrorCodeValidationFail otherwise.
func (vi *Validator) ParseError(err error) *apperr.AppError {
	if err == nil {
		return nil
	}

	var ves gvalidator.ValidationErrors
	if !errors.As(err, &ves) {
		var ae *apperr.AppError
		if errors.As(err, &ae) {
			return ae
		}
		return apperr.Newf(apperr.ErrorCodeInvalidConfig, "Invalid configuration: %v", err).Wrap(err)
	}

	code := apperr.ErrorCodeValidationFail
	if b, ok := vi.tagErrorBuilders[ves[0].Tag()]; ok && b.Code != nil {
		code = b.Code
	}
	appErr := apperr.New(code)
	for _, fe := range ves {
		appErr.AddSuggestion(fieldPath(fe), vi.buildMessageForField(fe))
	}
	return appErr
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe gvalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// buildMessageForField uses registered tag builders or defaults
func (vi *Validator) buildMessageForField(fe gvalidator.FieldError) string {
	if b, ok := vi.tagErrorBuilders[fe.Tag()]; ok && b.Builder != nil {
		return b.Builder(fe)
	}
	// default message
	if fe.Param() != "" {
		return fmt.Sprintf("field %s failed on '%s' validation (param=%s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("field %s failed on '%s' validation", fe.Field(), fe.Tag())
}
