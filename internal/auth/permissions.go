package auth

// Special permission codes.
const (
	// PermWildcard grants every permission.
	PermWildcard = "*:*:*"
	// PermAdminAll marks a legacy administrator.
	PermAdminAll = "admin:all"
)

// Permission codes checked by the API. Codes follow resource:action.
const (
	PermUserRead   = "user:read"
	PermUserWrite  = "user:write"
	PermUserDelete = "user:delete"

	PermRoleRead   = "role:read"
	PermRoleWrite  = "role:write"
	PermRoleDelete = "role:delete"

	PermPermissionRead   = "permission:read"
	PermPermissionWrite  = "permission:write"
	PermPermissionDelete = "permission:delete"

	PermMenuRead   = "menu:read"
	PermMenuWrite  = "menu:write"
	PermMenuDelete = "menu:delete"

	// PermMonitorRead allows viewing system monitoring pages.
	PermMonitorRead = "monitor:read"
	// PermDashboardRead allows viewing the dashboard.
	PermDashboardRead = "dashboard:read"

	PermStudentRead   = "student:read"
	PermStudentWrite  = "student:write"
	PermStudentDelete = "student:delete"

	PermRoomRead   = "room:read"
	PermRoomWrite  = "room:write"
	PermRoomDelete = "room:delete"

	PermTripRead   = "trip:read"
	PermTripWrite  = "trip:write"
	PermTripDelete = "trip:delete"

	PermStaffRead   = "staff:read"
	PermStaffWrite  = "staff:write"
	PermStaffDelete = "staff:delete"

	PermBoatRead   = "boat:read"
	PermBoatWrite  = "boat:write"
	PermBoatDelete = "boat:delete"
)
