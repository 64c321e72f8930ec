package auth


// UserClaims describes the authenticated caller.
type UserClaims interface {
	UserID() uint
	Username() string
	IsSuperuser() bool
	IsStaff() bool
	Source() string
}

// SessionClaims are built from the user behind a browser session.
type SessionClaims struct {
	ID        uint
	Name      string
	Superuser bool
	Staff     bool
}

func (c *SessionClaims) UserID() uint      { return c.ID }
func (c *SessionClaims) Username() string  { return c.Name }
func (c *SessionClaims) IsSuperuser() bool { return c.Superuser }
func (c *SessionClaims) IsStaff() bool     { return c.Staff }
func (c *SessionClaims) Source() string    { return "SESSION" }
