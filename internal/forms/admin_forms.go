package forms

import (
	"net/http"

	"github.com/gosimple/slug"
)

// TagForm creates a tag from the admin panel. An empty slug is prepopulated from the name.
type TagForm struct {
	Name string `form:"name" validate:"required,max=50"`
	Slug string `form:"slug" validate:"omitempty,max=50,slug"`
}

func ParseTag(r *http.Request) TagForm {
	f := TagForm{
		Name: value(r, "name"),
		Slug: value(r, "slug"),
	}
	if f.Slug == "" && f.Name != "" {
		f.Slug = slug.Make(f.Name)
	}
	return f
}

func (f TagForm) Validate() Errors {
	return check(f)
}

// RoleForm is posted by the change-role button on the manage and admin pages.
type RoleForm struct {
	Role string `form:"role" validate:"required,role"`
}

func ParseRole(r *http.Request) RoleForm {
	return RoleForm{Role: value(r, "role")}
}

func (f RoleForm) Validate() Errors {
	return check(f)
}
