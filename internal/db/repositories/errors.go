package repositories

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCommunityNotFound  = errors.New("community not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrTagNotFound        = errors.New("tag not found")
)

// Page selects a 1-based page of Size rows.
type Page struct {
	Number int
	Size   int
}

func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// limit is -1 (no limit) when Size is unset.
func (p Page) limit() int {
	if p.Size <= 0 {
		return -1
	}
	return p.Size
}
