package forms

import (
	"net/http"

	models "portal-united/directory/internal/models/gorm"
)

type ProfileForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"max=100"`
	City      string `form:"city" validate:"max=100"`
	Bio       string `form:"bio" validate:"max=500"`
	PhotoURL  string `form:"photo_url" validate:"omitempty,http_url,max=500"`
}

func ParseProfile(r *http.Request) ProfileForm {
	return ProfileForm{
		FirstName: value(r, "first_name"),
		LastName:  value(r, "last_name"),
		City:      value(r, "city"),
		Bio:       value(r, "bio"),
		PhotoURL:  value(r, "photo_url"),
	}
}

func ProfileFormFrom(p *models.PersonProfile) ProfileForm {
	return ProfileForm{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		City:      p.City,
		Bio:       p.Bio,
		PhotoURL:  p.PhotoURL,
	}
}

func (f ProfileForm) Validate() Errors {
	return check(f)
}

func (f ProfileForm) Apply(p *models.PersonProfile) {
	p.FirstName = f.FirstName
	p.LastName = f.LastName
	p.City = f.City
	p.Bio = f.Bio
	p.PhotoURL = f.PhotoURL
}
