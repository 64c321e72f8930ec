package constants

const (
	// CountActiveMembersByCommunity uses ? placeholders; callers Rebind for their driver.
	CountActiveMembersByCommunity = `
	SELECT community_id, COUNT(*) AS member_count
	FROM memberships
	WHERE is_active = ? AND community_id IN (?)
	GROUP BY community_id
	`

	CountActiveMembersTotal = `
	SELECT COUNT(*) FROM memberships WHERE is_active = ?
	`

	CountCommunitiesByDenomination = `
	SELECT denomination, COUNT(*) AS total
	FROM community_profiles
	WHERE is_active = ?
	GROUP BY denomination
	ORDER BY total DESC
	`
)
