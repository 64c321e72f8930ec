// Package forms parses and validates the HTML forms posted to the directory.
package forms

import (
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"portal-united/directory/internal/constants"
)

// NonField keys errors that belong to the whole form.
const NonField = "__all__"

// Errors maps a form field name to its first error message.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Get(field string) string { return e[field] }

func (e Errors) Valid() bool { return len(e) == 0 }

var (
	validate = newValidator()

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their form name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("denomination", func(fl validator.FieldLevel) bool {
		return constants.IsDenomination(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return constants.MembershipRole(fl.Field().String()).Valid()
	})
	// max counts runes; bcrypt limits bytes
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})
	return v
}

// check runs struct validation and converts failures into field errors.
func check(form interface{}) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(NonField, err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "This field is required."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "maxbytes":
		return "Ensure this value has at most " + fe.Param() + " bytes."
	case "email":
		return "Enter a valid email address."
	case "url", "http_url":
		return "Enter a valid URL."
	case "eqfield":
		return "The two password fields didn't match."
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)."
	case "username":
		return "Enter a valid username. Use letters, digits and @/./+/-/_ only."
	case "slug":
		return "Enter a valid slug of lowercase letters, numbers and hyphens."
	case "denomination", "role", "oneof":
		return "Select a valid choice."
	default:
		return "Enter a valid value."
	}
}

func value(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

// ids parses a multi-value field of numeric ids, skipping garbage.
func ids(r *http.Request, name string) []uint {
	var out []uint
	for _, raw := range r.PostForm[name] {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		out = append(out, uint(id))
	}
	return out
}
