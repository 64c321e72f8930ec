package constants

// Flash messages shown after redirects.
const (
	MsgLoginRequired       = "Please log in to continue."
	MsgCommunityNotFound   = "Community not found."
	MsgPermissionDenied    = "You do not have permission to manage this community."
	MsgAlreadyMember       = "You are already a member of this community."
	MsgJoined              = "You have joined the community."
	MsgNotMember           = "You are not a member of this community."
	MsgLeft                = "You have left the community."
	MsgOwnerCannotLeave    = "The owner cannot leave the community. Transfer ownership first."
	MsgAdminCannotLeave    = "An administrator cannot leave the community. Hand the role over first."
	MsgCommunityCreated    = "Your community has been created. You are its owner."
	MsgCommunityUpdated    = "The community profile has been updated."
	MsgRoleChanged         = "The role has been changed."
	MsgInvalidRole         = "Invalid role."
	MsgCannotChangeOwnRole = "You cannot change your own role."
	MsgRoleNotAllowed      = "You cannot grant this role."
	MsgCannotEditTarget    = "You cannot change the role of this member."
	MsgMemberRemoved       = "The member has been removed."
	MsgCannotRemoveSelf    = "You cannot remove yourself. Use leave instead."
	MsgCannotRemoveOwner   = "The owner cannot be removed."
	MsgLeaderRemoveLimit   = "A leader can only remove regular members."
	MsgMembershipNotFound  = "Membership not found."
	MsgProfileUpdated      = "Your profile has been updated."
	MsgInvalidCredentials  = "Invalid username or password."
	MsgAccountInactive     = "This account is inactive."
	MsgRegistered          = "Welcome! Your account has been created."
	MsgLoggedOut           = "You have been logged out."
	MsgInviteInvalid       = "This invitation link is invalid or has expired."
	MsgInviteCreated       = "Invitation link created. It can be used once before it expires."
	MsgTooManyRequests     = "Too many attempts. Please wait a moment."
	MsgInternalError       = "Something went wrong. Please try again."

	MsgCommunityActivated   = "The community is now active."
	MsgCommunityDeactivated = "The community is now hidden from the directory."
	MsgCommunityVerified    = "The community is now verified."
	MsgCommunityUnverified  = "The community is no longer verified."
	MsgMembershipDeleted    = "The membership has been deleted."
	MsgTagCreated           = "The tag has been created."
)
