package forms

import (
	"net/http"
	"time"

	"portal-united/directory/internal/constants"
	models "portal-united/directory/internal/models/gorm"
)

const dateLayout = "2006-01-02"

// CommunityForm backs both the create and the edit page. The edit page
// additionally carries FullDescription, Address and FoundedDate.
type CommunityForm struct {
	Name              string `form:"name" validate:"required,max=200"`
	Description       string `form:"description" validate:"required,max=500"`
	City              string `form:"city" validate:"required,max=100"`
	Parish            string `form:"parish" validate:"max=200"`
	Denomination      string `form:"denomination" validate:"omitempty,denomination"`
	DenominationOther string `form:"denomination_other" validate:"required_if=Denomination other,max=100"`
	PhotoURL          string `form:"photo_url" validate:"omitempty,http_url,max=500"`
	LogoURL           string `form:"logo_url" validate:"omitempty,http_url,max=500"`
	ContactEmail      string `form:"contact_email" validate:"omitempty,email,max=254"`
	ContactPhone      string `form:"contact_phone" validate:"max=20"`
	Website           string `form:"website" validate:"omitempty,http_url,max=500"`
	TagIDs            []uint `form:"tags" validate:"-"`

	FullDescription string `form:"full_description" validate:"-"`
	Address         string `form:"address" validate:"max=300"`
	FoundedDate     string `form:"founded_date" validate:"omitempty,datetime=2006-01-02"`

	// Full is set for the edit page.
	Full bool `form:"-" validate:"-"`
}

// ParseCommunity reads the posted community form; full selects the edit variant.
func ParseCommunity(r *http.Request, full bool) CommunityForm {
	f := CommunityForm{
		Name:              value(r, "name"),
		Description:       value(r, "description"),
		City:              value(r, "city"),
		Parish:            value(r, "parish"),
		Denomination:      value(r, "denomination"),
		DenominationOther: value(r, "denomination_other"),
		PhotoURL:          value(r, "photo_url"),
		LogoURL:           value(r, "logo_url"),
		ContactEmail:      value(r, "contact_email"),
		ContactPhone:      value(r, "contact_phone"),
		Website:           value(r, "website"),
		TagIDs:            ids(r, "tags"),
		Full:              full,
	}
	if full {
		f.FullDescription = value(r, "full_description")
		f.Address = value(r, "address")
		f.FoundedDate = value(r, "founded_date")
	}
	return f
}

// CommunityFormFrom prefills the edit form from a stored community.
func CommunityFormFrom(c *models.CommunityProfile) CommunityForm {
	f := CommunityForm{
		Name:              c.Name,
		Description:       c.Description,
		City:              c.City,
		Parish:            c.Parish,
		Denomination:      c.Denomination,
		DenominationOther: c.DenominationOther,
		PhotoURL:          c.PhotoURL,
		LogoURL:           c.LogoURL,
		ContactEmail:      c.ContactEmail,
		ContactPhone:      c.ContactPhone,
		Website:           c.Website,
		FullDescription:   c.FullDescription,
		Address:           c.Address,
		Full:              true,
	}
	if c.FoundedDate != nil {
		f.FoundedDate = c.FoundedDate.Format(dateLayout)
	}
	for _, t := range c.Tags {
		f.TagIDs = append(f.TagIDs, t.ID)
	}
	return f
}

func (f CommunityForm) Validate() Errors {
	return check(f)
}

// HasTag is used by templates to pre-check tag boxes.
func (f CommunityForm) HasTag(id uint) bool {
	for _, t := range f.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Apply copies validated values onto c. Tags are handled by the caller.
func (f CommunityForm) Apply(c *models.CommunityProfile) {
	c.Name = f.Name
	c.Description = f.Description
	c.City = f.City
	c.Parish = f.Parish
	c.Denomination = f.Denomination
	c.DenominationOther = f.DenominationOther
	if f.Denomination != constants.DenominationOther {
		c.DenominationOther = ""
	}
	c.PhotoURL = f.PhotoURL
	c.LogoURL = f.LogoURL
	c.ContactEmail = f.ContactEmail
	c.ContactPhone = f.ContactPhone
	c.Website = f.Website

	if !f.Full {
		return
	}
	c.FullDescription = f.FullDescription
	c.Address = f.Address
	c.FoundedDate = nil
	if f.FoundedDate != "" {
		if d, err := time.Parse(dateLayout, f.FoundedDate); err == nil {
			c.FoundedDate = &d
		}
	}
}
