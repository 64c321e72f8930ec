package constants

type (
	UserType    string
	CachePrefix string
	FlashLevel  string
)

const (
	// UserTypePerson is the only type new accounts receive.
	UserTypePerson UserType = "person"
	// UserTypeCommunity is kept for rows created before communities stopped being accounts.
	UserTypeCommunity UserType = "community"

	CachePrefixSession    CachePrefix = "session:"
	CachePrefixUsedInvite CachePrefix = "used_invite:"
	CachePrefixTags       CachePrefix = "TAGS_ALL"

	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

// CommunitiesPerPage is the directory list page size.
const CommunitiesPerPage = 12

// AdminPerPage is the admin changelist page size.
const AdminPerPage = 25

// Choice is a value/label pair rendered as a select option.
type Choice struct {
	Value string
	Label string
}

const DenominationOther = "other"

// Denominations are the allowed community_profiles.denomination values.
var Denominations = []Choice{
	{Value: "catholic", Label: "Catholic"},
	{Value: "protestant", Label: "Protestant"},
	{Value: "orthodox", Label: "Orthodox"},
	{Value: "evangelical", Label: "Evangelical"},
	{Value: "pentecostal", Label: "Pentecostal"},
	{Value: "baptist", Label: "Baptist"},
	{Value: "methodist", Label: "Methodist"},
	{Value: "charismatic", Label: "Charismatic"},
	{Value: DenominationOther, Label: "Other"},
}

// DenominationLabel returns the display label for a stored denomination value.
func DenominationLabel(value string) string {
	for _, c := range Denominations {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// IsDenomination reports whether value is a known denomination.
func IsDenomination(value string) bool {
	for _, c := range Denominations {
		if c.Value == value {
			return true
		}
	}
	return false
}
