package handler

import (
	"errors"
	"regexp"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/service"
)

const (
	msgInvalidEmail     = "Please enter a valid email address."
	msgInvalidBody      = "Invalid request body."
	msgPasswordRequired = "Password is required."
)

var (
	digitRe   = regexp.MustCompile(`\d`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	lettersRe = regexp.MustCompile(`^[A-Za-z]+$`)
)

type signupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r *signupRequest) normalize() {
	r.Email = service.NormalizeEmail(r.Email)
	r.Username = service.NormalizeUsername(r.Username)
}

// Validate reports every violated rule of every field, in field order.
func (r signupRequest) Validate() error {
	var fields []model.FieldError

	fields = appendViolations(fields, "email", r.Email,
		validation.Required.Error(msgInvalidEmail),
		is.Email.Error(msgInvalidEmail),
	)
	fields = appendViolations(fields, "username", r.Username,
		validation.Required.Error("Username is required."),
		check(func(s string) bool { return utf8.RuneCountInString(s) >= 3 }, "Username must be at least 3 characters."),
	)
	fields = appendViolations(fields, "password", r.Password,
		check(func(s string) bool { return utf8.RuneCountInString(s) >= 8 }, "Password must be at least 8 characters long."),
		check(digitRe.MatchString, "Password must contain a number."),
		check(lowerRe.MatchString, "Password must contain a lowercase letter."),
		check(upperRe.MatchString, "Password must contain an uppercase letter."),
		check(specialRe.MatchString, "Password must contain a special character."),
	)
	fields = appendViolations(fields, "firstName", r.FirstName,
		validation.Required.Error("First name is required."),
		check(lettersRe.MatchString, "First name should only contain letters."),
	)
	fields = appendViolations(fields, "lastName", r.LastName,
		validation.Required.Error("Last name is required."),
		check(lettersRe.MatchString, "Last name should only contain letters."),
	)

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

func (r signupRequest) params() model.RegisterParams {
	return model.RegisterParams{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) normalize() {
	r.Email = service.NormalizeEmail(r.Email)
}

func (r loginRequest) Validate() error {
	var fields []model.FieldError

	fields = appendViolations(fields, "email", r.Email,
		validation.Required.Error(msgInvalidEmail),
		is.Email.Error(msgInvalidEmail),
	)
	fields = appendViolations(fields, "password", r.Password,
		validation.Required.Error(msgPasswordRequired),
	)

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

// appendViolations runs each rule on its own so one field can report several
// messages; ozzo stops at the first failing rule otherwise.
func appendViolations(fields []model.FieldError, name, value string, rules ...validation.Rule) []model.FieldError {
	for _, rule := range rules {
		if err := validation.Validate(value, rule); err != nil {
			fields = append(fields, model.FieldError{Field: name, Message: err.Error()})
		}
	}
	return fields
}

// check builds a rule that, unlike ozzo's built-ins, also fails on empty strings.
func check(ok func(string) bool, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if !ok(s) {
			return errors.New(message)
		}
		return nil
	})
}

func invalidBody() error {
	return &model.ValidationError{Fields: []model.FieldError{{Field: "body", Message: msgInvalidBody}}}
}
