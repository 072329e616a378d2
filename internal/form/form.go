// Package form parses and validates the HTML forms posted to warbler.
package form

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to the message shown next to it.
type Errors map[string]string

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the HTML field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Image fields take absolute http(s) URLs or site-relative paths.
	_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
			return true
		}
		return v.Var(s, "http_url") == nil
	})

	// maxbytes bounds the encoded length, which is what bcrypt limits.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return v
}

// Validate checks f against its struct tags and returns nil when it is valid.
func Validate(f any) Errors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Field cannot be longer than %s bytes.", fe.Param())
	case "imageurl":
		return "Invalid URL."
	default:
		return "Invalid value."
	}
}

// SignupForm is posted to /signup.
type SignupForm struct {
	Username string `form:"username" validate:"required,max=20"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,min=6,maxbytes=72"`
	ImageURL string `form:"image_url" validate:"omitempty,imageurl"`
}

func ParseSignup(r *http.Request) SignupForm {
	return SignupForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		ImageURL: strings.TrimSpace(r.FormValue("image_url")),
	}
}

// LoginForm is posted to /login.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required,min=6"`
}

func ParseLogin(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
}

// MessageForm is posted to /messages/new.
type MessageForm struct {
	Text string `form:"text" validate:"required,max=140"`
}

func ParseMessage(r *http.Request) MessageForm {
	return MessageForm{Text: strings.TrimSpace(r.FormValue("text"))}
}

// ProfileForm is posted to /users/profile. Password is the current password.
type ProfileForm struct {
	Username       string `form:"username" validate:"required,max=20"`
	Email          string `form:"email" validate:"required,email,max=254"`
	ImageURL       string `form:"image_url" validate:"omitempty,imageurl"`
	HeaderImageURL string `form:"header_image_url" validate:"omitempty,imageurl"`
	Bio            string `form:"bio" validate:"max=500"`
	Location       string `form:"location" validate:"max=100"`
	Password       string `form:"password" validate:"required"`
}

func ParseProfile(r *http.Request) ProfileForm {
	return ProfileForm{
		Username:       strings.TrimSpace(r.FormValue("username")),
		Email:          strings.TrimSpace(r.FormValue("email")),
		ImageURL:       strings.TrimSpace(r.FormValue("image_url")),
		HeaderImageURL: strings.TrimSpace(r.FormValue("header_image_url")),
		Bio:            strings.TrimSpace(r.FormValue("bio")),
		Location:       strings.TrimSpace(r.FormValue("location")),
		Password:       r.FormValue("password"),
	}
}
