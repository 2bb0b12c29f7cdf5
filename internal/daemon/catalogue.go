package daemon

import (
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
)

type permissionSeed struct {
	name, code, resource, action, description string
}

type roleSeed struct {
	name, nameCN, description string
	system                    bool
	codes                     []string
}

type userSeed struct {
	username, password, name, email, legacyRole string
	roles                                       []string
}

type menuSeed struct {
	name, path, component, icon string
	order                       int
	permission                  string
	children                    []menuSeed
}

// crud returns read, write and delete permissions of resource.
func crud(resource, title string) []permissionSeed {
	return []permissionSeed{
		{title + " Read", resource + ":read", resource, models.ActionRead, "View " + resource + " records"},
		{title + " Write", resource + ":write", resource, models.ActionWrite, "Create and edit " + resource + " records"},
		{title + " Delete", resource + ":delete", resource, models.ActionDelete, "Delete " + resource + " records"},
	}
}

func permissionCatalogue() []permissionSeed {
	var out []permissionSeed

	for _, r := range []struct{ resource, title string }{
		{"user", "User"},
		{"role", "Role"},
		{"permission", "Permission"},
		{"menu", "Menu"},
		{"student", "Student"},
		{"room", "Room"},
		{"trip", "Trip"},
		{"staff", "Staff"},
		{"boat", "Boat"},
	} {
		out = append(out, crud(r.resource, r.title)...)
	}

	return append(out,
		permissionSeed{"Monitor Read", auth.PermMonitorRead, "monitor", models.ActionRead, "View system monitor"},
		permissionSeed{"Dashboard Read", auth.PermDashboardRead, "dashboard", models.ActionRead, "View dashboard"},
		permissionSeed{"All Permissions", auth.PermWildcard, "*", models.ActionAll, "All permissions"},
	)
}

var businessReads = []string{ //nolint:gochecknoglobals
	auth.PermStudentRead, auth.PermRoomRead, auth.PermTripRead, auth.PermStaffRead, auth.PermBoatRead,
}

func roleCatalogue() []roleSeed {
	var adminCodes, readCodes []string

	for _, p := range permissionCatalogue() {
		switch {
		case p.code == auth.PermWildcard, p.code == auth.PermDashboardRead:
		case p.action == models.ActionRead:
			adminCodes = append(adminCodes, p.code)
			readCodes = append(readCodes, p.code)
		default:
			adminCodes = append(adminCodes, p.code)
		}
	}

	managerCodes := []string{
		auth.PermStudentRead, auth.PermStudentWrite,
		auth.PermRoomRead, auth.PermRoomWrite,
		auth.PermTripRead, auth.PermTripWrite,
		auth.PermStaffRead, auth.PermStaffWrite,
		auth.PermBoatRead, auth.PermBoatWrite,
		auth.PermMonitorRead,
	}

	return []roleSeed{
		{"super_admin", "Super Administrator", "Super administrator with all permissions", true, []string{auth.PermWildcard}},
		{"admin", "Administrator", "Administrator with most permissions", true, adminCodes},
		{"manager", "Manager", "Manager with read and write permissions", false, managerCodes},
		{"staff", "Staff", "Staff with read-only permissions", false, businessReads},
		{"readonly", "Read Only", "Read-only access to every module", false, append(readCodes, auth.PermDashboardRead)},
	}
}

func userCatalogue() []userSeed {
	return []userSeed{
		{"superadmin", "superadmin123", "Super Administrator", "superadmin@diveerp.com", models.LegacyRoleAdmin, []string{"super_admin"}},
		{"admin", "admin123", "Administrator", "admin@diveerp.com", models.LegacyRoleAdmin, []string{"admin"}},
		{"manager1", "manager123", "Manager One", "manager1@diveerp.com", models.LegacyRoleStaff, []string{"manager"}},
		{"staff1", "staff123", "Staff One", "staff1@diveerp.com", models.LegacyRoleStaff, []string{"staff"}},
	}
}

func menuCatalogue() []menuSeed {
	return []menuSeed{
		{name: "Home", path: "/welcome", component: "views/welcome/index.vue", icon: "ep:home-filled", order: 0},
		{name: "Student Management", path: "/students", component: "views/students/index.vue", icon: "ep:user", order: 1, permission: auth.PermStudentRead},
		{name: "Room Management", path: "/rooms", component: "views/rooms/index.vue", icon: "ep:house", order: 2, permission: auth.PermRoomRead},
		{name: "Trip Management", path: "/trips", component: "views/trips/index.vue", icon: "ep:ship", order: 3, permission: auth.PermTripRead},
		{name: "Staff Management", path: "/staff", component: "views/staff/index.vue", icon: "ep:user-filled", order: 4, permission: auth.PermStaffRead},
		{name: "Boat Management", path: "/boat", component: "views/boats/index.vue", icon: "ep:ship", order: 5, permission: auth.PermBoatRead},
		{name: "Dashboard", path: "/dashboard", component: "views/dashboard/index.vue", icon: "ep:data-line", order: 6},
		{
			name: "System Management", path: "/system", icon: "ep:setting", order: 100, permission: auth.PermUserRead,
			children: []menuSeed{
				{name: "User Management", path: "/system/users", component: "views/system/users/index.vue", icon: "ep:user", order: 101, permission: auth.PermUserRead},
				{name: "Role Management", path: "/system/roles", component: "views/system/roles/index.vue", icon: "ep:avatar", order: 102, permission: auth.PermRoleRead},
				{name: "Permission Management", path: "/system/permissions", component: "views/system/permissions/index.vue", icon: "ep:lock", order: 103, permission: auth.PermPermissionRead},
				{name: "Menu Management", path: "/system/menus", component: "views/system/menus/index.vue", icon: "ep:menu", order: 104, permission: auth.PermMenuRead},
			},
		},
		{
			name: "System Monitor", path: "/monitor", icon: "ep:monitor", order: 200, permission: auth.PermMonitorRead,
			children: []menuSeed{
				{name: "System Overview", path: "/monitor/overview", component: "views/monitor/overview/index.vue", icon: "ep:data-line", order: 201, permission: auth.PermMonitorRead},
				{name: "Online Users", path: "/monitor/online-users", component: "views/monitor/online-users/index.vue", icon: "ep:user", order: 202, permission: auth.PermMonitorRead},
				{name: "Login Logs", path: "/monitor/login-logs", component: "views/monitor/login-logs/index.vue", icon: "ep:document", order: 203, permission: auth.PermMonitorRead},
				{name: "Operation Logs", path: "/monitor/operation-logs", component: "views/monitor/operation-logs/index.vue", icon: "ep:document", order: 204, permission: auth.PermMonitorRead},
				{name: "System Logs", path: "/monitor/system-logs", component: "views/monitor/system-logs/index.vue", icon: "ep:document", order: 205, permission: auth.PermMonitorRead},
			},
		},
	}
}
