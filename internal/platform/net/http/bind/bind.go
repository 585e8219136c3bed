// Package bind decodes and validates request input into project errors
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// githubLogin is alphanumerics with single inner hyphens, 39 characters at most
var githubLogin = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)

// ValidatorSvc pairs the validator with its english translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

// Get returns the shared validator, messages use json field names
var Get = sync.OnceValue(func() *ValidatorSvc {
	loc := en.New()
	tr, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = entrans.RegisterDefaultTranslations(v, tr)
	_ = v.RegisterValidation("ghlogin", func(fl validator.FieldLevel) bool {
		return githubLogin.MatchString(fl.Field().String())
	})

	for tag, text := range map[string]string{
		"min":     "{0} must be at least {1}",
		"max":     "{0} must be at most {1}",
		"ghlogin": "{0} must be a valid GitHub login",
	} {
		_ = v.RegisterTranslation(tag, tr,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return &ValidatorSvc{Validator: v, Translator: tr}
})

// JSONOptions tune ParseJSON, the zero value is strict with a 1MB cap
type JSONOptions struct {
	MaxBytes       int64
	AllowUnknown   bool
	AllowEmptyBody bool
}

// ParseJSON decodes a single JSON value into T and validates it
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var o JSONOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = 1 << 20
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Warn().Err(err).Msg("closing request body")
		}
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, o.MaxBytes))
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	switch err := dec.Decode(&dst); {
	case errors.Is(err, io.EOF) && o.AllowEmptyBody:
		return dst, nil
	case errors.Is(err, io.EOF):
		return dst, perr.JSONErrf("empty body")
	case err != nil:
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}
	if err := Get().Validator.Struct(dst); err != nil {
		return dst, validationErr(err)
	}
	return dst, nil
}

// Value validates one value, usually a path parameter, against tag
func Value(field string, v any, tag string) error {
	if err := Get().Validator.Var(v, tag); err != nil {
		return perr.WithField(validationErr(err), field)
	}
	return nil
}

func validationErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		logger.Get().Error().Err(err).Msg("validator misuse")
		return perr.JSONErrf("validation error")
	}
	fe := verrs[0]
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", fe.Translate(Get().Translator)), fe.Field())
}
