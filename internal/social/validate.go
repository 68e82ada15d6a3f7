package social

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

const (
	msgInvalidEmail    = "Invalid email format"
	msgInvalidPassword = "Password must be at least 8 characters long, alphanumeric, and must not contain spaces"
	msgValidation      = "Validation Error"
)

// FieldIssue describes one failed validation rule.
type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return len(pw) >= 8 && passwordPattern.MatchString(pw)
	})
	return v
}

// validationError turns validator output into an ErrInvalidInput. A failing
// email or password rule gets its dedicated message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid(msgValidation, err.Error())
	}
	issues := make([]FieldIssue, 0, len(verrs))
	msg := msgValidation
	for _, fe := range verrs {
		issues = append(issues, FieldIssue{Field: fe.Field(), Rule: fe.Tag()})
		switch {
		case fe.Tag() == "emailaddr":
			msg = msgInvalidEmail
		case fe.Tag() == "password" && msg == msgValidation:
			msg = msgInvalidPassword
		}
	}
	return invalid(msg, issues)
}
