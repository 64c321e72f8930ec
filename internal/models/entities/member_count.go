package entities

// CommunityMemberCount is one row of the active member aggregate.
type CommunityMemberCount struct {
	CommunityID uint  `db:"community_id"`
	MemberCount int64 `db:"member_count"`
}

// DenominationCount is one row of the directory breakdown shown on the home page.
type DenominationCount struct {
	Denomination string `db:"denomination"`
	Total        int64  `db:"total"`
}
