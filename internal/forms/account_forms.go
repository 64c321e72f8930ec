package forms

import "net/http"

// RegisterForm is the sign-up form. Only person accounts can be registered.
type RegisterForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	FirstName string `form:"first_name" validate:"required,max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Password1 string `form:"password1" validate:"required,min=8,maxbytes=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func ParseRegister(r *http.Request) RegisterForm {
	return RegisterForm{
		Username:  value(r, "username"),
		Email:     value(r, "email"),
		FirstName: value(r, "first_name"),
		LastName:  value(r, "last_name"),
		// passwords are not trimmed
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

func (f RegisterForm) Validate() Errors {
	return check(f)
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" validate:"-"`
}

func ParseLogin(r *http.Request) LoginForm {
	return LoginForm{
		Username: value(r, "username"),
		Password: r.PostFormValue("password"),
		Next:     value(r, "next"),
	}
}

func (f LoginForm) Validate() Errors {
	return check(f)
}
